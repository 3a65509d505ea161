package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dinodia/dinodia-core/internal/audit"
	"github.com/dinodia/dinodia-core/internal/device"
	"github.com/dinodia/dinodia-core/internal/infrastructure/logging"
)

// GoogleAdapter answers Google Smart Home fulfillment requests for the
// configured voice household. Supported intents are
// action.devices.SYNC and action.devices.EXECUTE with the OnOff trait.
type GoogleAdapter struct {
	service      *Service
	householdID  int64
	agentUserID  string
	manufacturer string
	logger       *logging.Logger
}

// NewGoogleAdapter creates the Google adapter bound to one household.
func NewGoogleAdapter(service *Service, householdID int64, agentUserID, manufacturer string, logger *logging.Logger) *GoogleAdapter {
	return &GoogleAdapter{
		service:      service,
		householdID:  householdID,
		agentUserID:  agentUserID,
		manufacturer: manufacturer,
		logger:       logger.With("component", "google"),
	}
}

type googleRequest struct {
	RequestID string `json:"requestId"`
	Inputs    []struct {
		Intent  string `json:"intent"`
		Payload *struct {
			Commands []googleCommand `json:"commands"`
		} `json:"payload"`
	} `json:"inputs"`
}

type googleCommand struct {
	Devices []struct {
		ID         string         `json:"id"`
		CustomData map[string]any `json:"customData"`
	} `json:"devices"`
	Execution []struct {
		Command string         `json:"command"`
		Params  map[string]any `json:"params"`
	} `json:"execution"`
}

// GoogleResponse is the outbound fulfillment envelope.
type GoogleResponse struct {
	RequestID string `json:"requestId"`
	Payload   any    `json:"payload"`
}

type googleDevice struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Traits          []string       `json:"traits"`
	Name            map[string]any `json:"name"`
	RoomHint        string         `json:"roomHint"`
	WillReportState bool           `json:"willReportState"`
	Attributes      map[string]any `json:"attributes"`
	DeviceInfo      map[string]any `json:"deviceInfo"`
	CustomData      map[string]any `json:"customData"`
}

type googleCommandResult struct {
	IDs    []string       `json:"ids"`
	Status string         `json:"status"`
	States map[string]any `json:"states,omitempty"`
}

// HandleFulfillment processes one fulfillment body.
//
// Unknown intents answer with errorCode notSupported, internal
// failures with internalError, both at HTTP 200. Only a body missing
// requestId or inputs returns ErrInvalidRequest for a 400.
func (g *GoogleAdapter) HandleFulfillment(ctx context.Context, body []byte) (*GoogleResponse, error) {
	var req googleRequest
	if err := json.Unmarshal(body, &req); err != nil || req.RequestID == "" || len(req.Inputs) == 0 {
		return nil, fmt.Errorf("%w: not a Google fulfillment envelope", ErrInvalidRequest)
	}

	input := req.Inputs[0]
	switch input.Intent {
	case "action.devices.SYNC":
		return g.sync(ctx, req.RequestID), nil
	case "action.devices.EXECUTE":
		var commands []googleCommand
		if input.Payload != nil {
			commands = input.Payload.Commands
		}
		return g.execute(ctx, req.RequestID, commands), nil
	default:
		g.logger.Warn("unhandled intent", "intent", input.Intent)
		return &GoogleResponse{
			RequestID: req.RequestID,
			Payload:   map[string]string{"errorCode": "notSupported"},
		}, nil
	}
}

func (g *GoogleAdapter) sync(ctx context.Context, requestID string) *GoogleResponse {
	devices, err := g.service.VisibleDevices(ctx, g.householdID, VoiceCaller())
	if err != nil {
		g.logger.Error("sync failed", "household_id", g.householdID, "error", err)
		return &GoogleResponse{
			RequestID: requestID,
			Payload:   map[string]string{"errorCode": "internalError"},
		}
	}

	payloadDevices := make([]googleDevice, 0, len(devices))
	for _, d := range devices {
		payloadDevices = append(payloadDevices, googleDevice{
			ID:         d.EntityID,
			Type:       device.GoogleDeviceType(d.Labels),
			Traits:     []string{"action.devices.traits.OnOff"},
			Name:       map[string]any{"name": d.FriendlyName},
			RoomHint:   d.AreaName,
			Attributes: map[string]any{},
			DeviceInfo: map[string]any{
				"manufacturer": g.manufacturer,
				"model":        d.Domain,
				"hwVersion":    "1",
				"swVersion":    "1",
			},
			CustomData: map[string]any{"domain": d.Domain},
		})
	}

	return &GoogleResponse{
		RequestID: requestID,
		Payload: map[string]any{
			"agentUserId": g.agentUserID,
			"devices":     payloadDevices,
		},
	}
}

// execute runs every device command in the batch. Devices are
// dispatched concurrently and joined by index, so one device's failure
// or slow hub call never touches another's result: a batch of N
// devices always yields N independent entries.
func (g *GoogleAdapter) execute(ctx context.Context, requestID string, commands []googleCommand) *GoogleResponse {
	type task struct {
		entityID string
		domain   string
		service  string
		on       bool
		known    bool // command recognised
	}

	var tasks []task
	for _, cmd := range commands {
		if len(cmd.Execution) == 0 {
			continue
		}
		exec := cmd.Execution[0]
		known := exec.Command == "action.devices.commands.OnOff"
		on, _ := exec.Params["on"].(bool)

		for _, dev := range cmd.Devices {
			t := task{entityID: dev.ID, known: known, on: on}
			if domain, ok := dev.CustomData["domain"].(string); ok && domain != "" {
				t.domain = domain
			} else {
				t.domain = "light"
			}
			if on {
				t.service = "turn_on"
			} else {
				t.service = "turn_off"
			}
			tasks = append(tasks, t)
		}
	}

	results := make([]googleCommandResult, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		if !t.known {
			results[i] = googleCommandResult{IDs: []string{t.entityID}, Status: "ERROR"}
			continue
		}

		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()

			result, err := g.service.ExecuteControl(ctx, ControlRequest{
				HouseholdID: g.householdID,
				Caller:      VoiceCaller(),
				EntityID:    t.entityID,
				Domain:      t.domain,
				Service:     t.service,
				Source:      audit.SourceGoogle,
			})
			if err != nil || !result.OK {
				g.logger.Warn("execute failed", "entity_id", t.entityID, "error", err)
				results[i] = googleCommandResult{IDs: []string{t.entityID}, Status: "ERROR"}
				return
			}
			results[i] = googleCommandResult{
				IDs:    []string{t.entityID},
				Status: "SUCCESS",
				States: map[string]any{"on": t.on, "online": true},
			}
		}(i, t)
	}
	wg.Wait()

	return &GoogleResponse{
		RequestID: requestID,
		Payload:   map[string]any{"commands": results},
	}
}
