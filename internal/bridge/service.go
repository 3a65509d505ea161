package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/dinodia/dinodia-core/internal/access"
	"github.com/dinodia/dinodia-core/internal/audit"
	"github.com/dinodia/dinodia-core/internal/device"
	"github.com/dinodia/dinodia-core/internal/hub"
	"github.com/dinodia/dinodia-core/internal/infrastructure/logging"
)

// ErrInvalidRequest indicates a malformed inbound envelope. Adapters
// map it to the protocol's bad-request convention.
var ErrInvalidRequest = errors.New("invalid request")

// Caller identifies who issued a command: a logged-in user, or the
// configured voice identity.
type Caller struct {
	userID int64
	grant  *access.Grant
}

// UserCaller is a caller authenticated as a user account.
func UserCaller(userID int64) Caller {
	return Caller{userID: userID}
}

// VoiceCaller is the household's fixed voice identity. It carries a
// synthetic grant instead of a user id.
func VoiceCaller() Caller {
	g := access.VoiceGrant()
	return Caller{grant: &g}
}

// UserID returns the calling user's id, or nil for voice callers.
func (c Caller) UserID() *int64 {
	if c.grant != nil {
		return nil
	}
	id := c.userID
	return &id
}

// ControlRequest is one command against one entity.
type ControlRequest struct {
	HouseholdID int64
	Caller      Caller
	EntityID    string
	Domain      string // derived from the entity id when empty
	Service     string
	Data        map[string]any
	Source      string // audit source: api, toggle, alexa, google
}

// ControlResult reports a command's outcome with the hub's status and
// raw error text preserved for diagnostics.
type ControlResult struct {
	OK       bool   `json:"ok"`
	Status   int    `json:"status,omitempty"`
	Error    string `json:"error,omitempty"`
	EntityID string `json:"entity_id"`
	Domain   string `json:"domain"`
	Service  string `json:"service"`
}

// HubCaller is the slice of the hub client the bridge needs for
// service invocation.
type HubCaller interface {
	CallService(ctx context.Context, householdID int64, domain, service string, payload map[string]any) (*hub.ServiceResult, error)
}

// DeviceLister produces the full enriched device list for a household.
type DeviceLister interface {
	Devices(ctx context.Context, householdID int64) ([]device.Device, error)
}

// GrantResolver resolves a user's standing in a household.
type GrantResolver interface {
	ResolveRole(ctx context.Context, householdID, userID int64) (access.Grant, error)
}

// Service is the shared command core behind every adapter.
type Service struct {
	resolver GrantResolver
	devices  DeviceLister
	hub      HubCaller
	audit    audit.Repository
	events   *audit.Publisher
	logger   *logging.Logger
}

// NewService wires the command core. The events publisher may be nil.
func NewService(resolver GrantResolver, devices DeviceLister, hubCaller HubCaller,
	auditRepo audit.Repository, events *audit.Publisher, logger *logging.Logger) *Service {
	return &Service{
		resolver: resolver,
		devices:  devices,
		hub:      hubCaller,
		audit:    auditRepo,
		events:   events,
		logger:   logger.With("component", "bridge"),
	}
}

func (s *Service) resolveGrant(ctx context.Context, householdID int64, caller Caller) (access.Grant, error) {
	if caller.grant != nil {
		return *caller.grant, nil
	}
	return s.resolver.ResolveRole(ctx, householdID, caller.userID)
}

// VisibleDevices returns the caller's filtered device view of a
// household, in hub state order.
func (s *Service) VisibleDevices(ctx context.Context, householdID int64, caller Caller) ([]device.Device, error) {
	grant, err := s.resolveGrant(ctx, householdID, caller)
	if err != nil {
		return nil, err
	}
	if grant.Role == access.RoleNone {
		return []device.Device{}, nil
	}

	devices, err := s.devices.Devices(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return access.FilterDevices(devices, grant), nil
}

// ExecuteControl authorizes and performs one command.
//
// The target must be in the caller's visible set; an entity outside it
// fails with access.ErrForbidden whether it exists or not. The hub's
// verdict is passed through verbatim, annotated with the entity id and
// domain used, and every attempt lands in the audit trail.
func (s *Service) ExecuteControl(ctx context.Context, req ControlRequest) (*ControlResult, error) {
	if req.EntityID == "" || req.Service == "" {
		return nil, fmt.Errorf("%w: entity_id and service are required", ErrInvalidRequest)
	}

	target, err := s.authorizeTarget(ctx, req)
	if err != nil {
		if errors.Is(err, access.ErrForbidden) {
			s.record(ctx, req, audit.OutcomeDenied, nil, err)
		}
		return nil, err
	}

	domain := req.Domain
	if domain == "" {
		domain = target.Domain
	}

	payload := make(map[string]any, len(req.Data)+1)
	for k, v := range req.Data {
		payload[k] = v
	}
	payload["entity_id"] = req.EntityID

	result := &ControlResult{EntityID: req.EntityID, Domain: domain, Service: req.Service}

	hubResult, err := s.hub.CallService(ctx, req.HouseholdID, domain, req.Service, payload)
	if hubResult != nil {
		result.Status = hubResult.Status
	}
	if err != nil {
		result.Error = err.Error()
		s.record(ctx, req, audit.OutcomeError, statusOf(hubResult), err)
		s.logger.Warn("service call failed",
			"household_id", req.HouseholdID, "entity_id", req.EntityID,
			"domain", domain, "service", req.Service, "error", err)
		return result, nil
	}

	result.OK = true
	s.record(ctx, req, audit.OutcomeOK, statusOf(hubResult), nil)
	return result, nil
}

// Toggle flips an entity between on and off by reading its current
// state and issuing the explicit opposite service.
//
// The read and the write are two hub calls with no transaction between
// them. A state change in that window can invert the intent; the hub
// offers no compare-and-swap, so the race is accepted.
func (s *Service) Toggle(ctx context.Context, householdID int64, caller Caller, entityID, domain string) (*ControlResult, error) {
	if entityID == "" {
		return nil, fmt.Errorf("%w: entity_id is required", ErrInvalidRequest)
	}

	req := ControlRequest{
		HouseholdID: householdID,
		Caller:      caller,
		EntityID:    entityID,
		Domain:      domain,
		Source:      audit.SourceToggle,
	}

	target, err := s.authorizeTarget(ctx, req)
	if err != nil {
		if errors.Is(err, access.ErrForbidden) {
			req.Service = "toggle"
			s.record(ctx, req, audit.OutcomeDenied, nil, err)
		}
		return nil, err
	}

	if target.State == "on" {
		req.Service = "turn_off"
	} else {
		req.Service = "turn_on"
	}
	return s.ExecuteControl(ctx, req)
}

// authorizeTarget resolves the caller's grant and locates the target
// entity in their visible set.
func (s *Service) authorizeTarget(ctx context.Context, req ControlRequest) (*device.Device, error) {
	grant, err := s.resolveGrant(ctx, req.HouseholdID, req.Caller)
	if err != nil {
		return nil, err
	}
	if grant.Role == access.RoleNone {
		return nil, fmt.Errorf("%w: no standing in household %d", access.ErrForbidden, req.HouseholdID)
	}

	devices, err := s.devices.Devices(ctx, req.HouseholdID)
	if err != nil {
		return nil, err
	}

	for _, d := range devices {
		if d.EntityID != req.EntityID {
			continue
		}
		if !access.Allowed(d, grant) {
			break
		}
		return &d, nil
	}
	// Unknown and invisible entities are indistinguishable on purpose.
	return nil, fmt.Errorf("%w: entity %s", access.ErrForbidden, req.EntityID)
}

func (s *Service) record(ctx context.Context, req ControlRequest, outcome string, status *int, cmdErr error) {
	rec := &audit.CommandRecord{
		HouseholdID: req.HouseholdID,
		UserID:      req.Caller.UserID(),
		EntityID:    req.EntityID,
		Domain:      req.Domain,
		Service:     req.Service,
		Source:      req.Source,
		Outcome:     outcome,
		Status:      status,
	}
	if rec.Domain == "" {
		rec.Domain = device.DomainOf(req.EntityID)
	}
	if cmdErr != nil {
		rec.Error = cmdErr.Error()
	}

	if err := s.audit.Record(ctx, rec); err != nil {
		s.logger.Error("failed to record command", "entity_id", req.EntityID, "error", err)
		return
	}
	if err := s.events.PublishCommand(rec); err != nil {
		s.logger.Warn("failed to publish command event", "entity_id", req.EntityID, "error", err)
	}
}

func statusOf(result *hub.ServiceResult) *int {
	if result == nil {
		return nil
	}
	return &result.Status
}
