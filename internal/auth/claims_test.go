package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndParseToken(t *testing.T) {
	user := &User{ID: 42, Email: "owner@example.com"}

	signed, err := GenerateAccessToken(user, testSecret, 60)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ParseToken(signed, testSecret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if id != 42 {
		t.Errorf("UserID = %d, want 42", id)
	}
	if claims.Email != "owner@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Error("token should not be expired")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	signed, err := GenerateAccessToken(&User{ID: 1, Email: "a@example.com"}, testSecret, 60)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := ParseToken(signed, "another-secret-another-secret-xx"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("ParseToken with wrong secret: error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	now := time.Now()
	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
		Email: "a@example.com",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ParseToken(signed, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("ParseToken of expired token: error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_RejectsUnsignedAlg(t *testing.T) {
	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
		Email:            "a@example.com",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ParseToken(signed, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("ParseToken of alg=none token: error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("not.a.token", testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("ParseToken of garbage: error = %v, want ErrTokenInvalid", err)
	}
}

func TestUserID_BadSubject(t *testing.T) {
	claims := &CustomClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	if _, err := claims.UserID(); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("UserID with bad subject: error = %v, want ErrTokenInvalid", err)
	}
}
