package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dinodia/dinodia-core/internal/auth"
)

// defaultTokenTTLMinutes applies when security.jwt.access_token_ttl is unset.
const defaultTokenTTLMinutes = 60

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email string `json:"email"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	User        *auth.User `json:"user"`
}

// handleLogin exchanges a known email address for a bearer token.
//
// Identity is email-only: the upstream deployment fronts this API with
// a magic-link flow, so by the time a login request arrives the address
// is already verified.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if !auth.IsValidEmail(req.Email) {
		writeBadRequest(w, "a valid email is required")
		return
	}

	user, err := s.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeUnauthorized(w, "unknown email")
			return
		}
		writeInternalError(w, "failed to look up user")
		return
	}

	ttl := s.secCfg.JWT.AccessTokenTTL
	if ttl == 0 {
		ttl = defaultTokenTTLMinutes
	}

	token, err := auth.GenerateAccessToken(user, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("failed to generate access token", "error", err)
		writeInternalError(w, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   ttl * 60,
		User:        user,
	})
}

// userByEmail resolves an email to a user account, creating the
// account on first sight. Inviting someone who has never logged in is
// the normal case for new tenants.
func (s *Server) userByEmail(ctx context.Context, email string) (*auth.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return nil, err
	}

	created := &auth.User{Email: email}
	if err := s.users.Create(ctx, created); err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			// Lost a create race; the row exists now.
			return s.users.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return created, nil
}

// handleMe returns the authenticated user's profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), callerID(r))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		writeInternalError(w, "failed to look up user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
