package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dinodia/dinodia-core/internal/audit"
	"github.com/dinodia/dinodia-core/internal/device"
	"github.com/dinodia/dinodia-core/internal/infrastructure/logging"
)

const alexaPayloadVersion = "3"

// AlexaAdapter answers Alexa Smart Home Skill directives for the
// configured voice household. Two directive families are supported:
// Alexa.Discovery#Discover and Alexa.PowerController#TurnOn/TurnOff.
type AlexaAdapter struct {
	service      *Service
	householdID  int64
	manufacturer string
	logger       *logging.Logger
}

// NewAlexaAdapter creates the Alexa adapter bound to one household.
func NewAlexaAdapter(service *Service, householdID int64, manufacturer string, logger *logging.Logger) *AlexaAdapter {
	return &AlexaAdapter{
		service:      service,
		householdID:  householdID,
		manufacturer: manufacturer,
		logger:       logger.With("component", "alexa"),
	}
}

type alexaDirective struct {
	Directive *struct {
		Header struct {
			Namespace        string `json:"namespace"`
			Name             string `json:"name"`
			MessageID        string `json:"messageId"`
			CorrelationToken string `json:"correlationToken"`
		} `json:"header"`
		Endpoint struct {
			EndpointID string            `json:"endpointId"`
			Cookie     map[string]string `json:"cookie"`
		} `json:"endpoint"`
	} `json:"directive"`
}

type alexaHeader struct {
	Namespace        string `json:"namespace"`
	Name             string `json:"name"`
	MessageID        string `json:"messageId"`
	CorrelationToken string `json:"correlationToken,omitempty"`
	PayloadVersion   string `json:"payloadVersion"`
}

type alexaEvent struct {
	Header   alexaHeader `json:"header"`
	Endpoint any         `json:"endpoint,omitempty"`
	Payload  any         `json:"payload"`
}

// AlexaResponse is the outbound event/context envelope.
type AlexaResponse struct {
	Context any        `json:"context,omitempty"`
	Event   alexaEvent `json:"event"`
}

type alexaEndpoint struct {
	EndpointID        string            `json:"endpointId"`
	ManufacturerName  string            `json:"manufacturerName"`
	FriendlyName      string            `json:"friendlyName"`
	Description       string            `json:"description"`
	DisplayCategories []string          `json:"displayCategories"`
	Cookie            map[string]string `json:"cookie"`
	Capabilities      []alexaCapability `json:"capabilities"`
}

type alexaCapability struct {
	Type       string `json:"type"`
	Interface  string `json:"interface"`
	Version    string `json:"version"`
	Properties *struct {
		Supported           []map[string]string `json:"supported"`
		ProactivelyReported bool                `json:"proactivelyReported"`
		Retrievable         bool                `json:"retrievable"`
	} `json:"properties,omitempty"`
}

// HandleDirective processes one Alexa directive body.
//
// Recoverable failures are reported as an ErrorResponse event, still
// over HTTP 200; only a body that is not an Alexa envelope at all
// returns ErrInvalidRequest, which the HTTP layer maps to 400.
func (a *AlexaAdapter) HandleDirective(ctx context.Context, body []byte) (*AlexaResponse, error) {
	var req alexaDirective
	if err := json.Unmarshal(body, &req); err != nil || req.Directive == nil {
		return nil, fmt.Errorf("%w: not an Alexa directive envelope", ErrInvalidRequest)
	}

	header := req.Directive.Header
	messageID := header.MessageID
	if messageID == "" {
		messageID = "message-id"
	}

	switch {
	case header.Namespace == "Alexa.Discovery" && header.Name == "Discover":
		return a.discover(ctx, messageID), nil
	case header.Namespace == "Alexa.PowerController" && (header.Name == "TurnOn" || header.Name == "TurnOff"):
		return a.powerControl(ctx, &req, messageID), nil
	default:
		a.logger.Warn("unhandled directive", "namespace", header.Namespace, "name", header.Name)
		return a.errorResponse(messageID, "INVALID_DIRECTIVE",
			fmt.Sprintf("Unsupported directive: %s.%s", header.Namespace, header.Name)), nil
	}
}

func (a *AlexaAdapter) discover(ctx context.Context, messageID string) *AlexaResponse {
	devices, err := a.service.VisibleDevices(ctx, a.householdID, VoiceCaller())
	if err != nil {
		a.logger.Error("discovery failed", "household_id", a.householdID, "error", err)
		return a.errorResponse(messageID, "INTERNAL_ERROR", "Could not load devices")
	}

	endpoints := make([]alexaEndpoint, 0, len(devices))
	for _, d := range devices {
		endpoints = append(endpoints, alexaEndpoint{
			EndpointID:        d.EntityID,
			ManufacturerName:  a.manufacturer,
			FriendlyName:      d.FriendlyName,
			Description:       endpointDescription(d),
			DisplayCategories: []string{device.AlexaDisplayCategory(d.Labels)},
			Cookie: map[string]string{
				"domain":   d.Domain,
				"areaName": d.AreaName,
				"labels":   strings.Join(d.Labels, ","),
			},
			Capabilities: powerControllerCapabilities(),
		})
	}

	return &AlexaResponse{
		Event: alexaEvent{
			Header: alexaHeader{
				Namespace:      "Alexa.Discovery",
				Name:           "Discover.Response",
				MessageID:      messageID,
				PayloadVersion: alexaPayloadVersion,
			},
			Payload: map[string]any{"endpoints": endpoints},
		},
	}
}

// endpointDescription prefers the classified category name over the raw
// entity domain.
func endpointDescription(d device.Device) string {
	if d.Category != nil {
		return d.Category.DisplayName() + " via Dinodia Smart Cloud"
	}
	return d.Domain + " via Dinodia Smart Cloud"
}

func (a *AlexaAdapter) powerControl(ctx context.Context, req *alexaDirective, messageID string) *AlexaResponse {
	endpointID := req.Directive.Endpoint.EndpointID
	if endpointID == "" {
		return a.errorResponse(messageID, "INVALID_DIRECTIVE", "Missing endpointId")
	}

	turnOn := req.Directive.Header.Name == "TurnOn"
	service := "turn_off"
	if turnOn {
		service = "turn_on"
	}

	// The domain was stashed in the cookie at discovery time. Older
	// endpoints may predate that, so fall back to light.
	domain := req.Directive.Endpoint.Cookie["domain"]
	if domain == "" {
		domain = "light"
	}

	result, err := a.service.ExecuteControl(ctx, ControlRequest{
		HouseholdID: a.householdID,
		Caller:      VoiceCaller(),
		EntityID:    endpointID,
		Domain:      domain,
		Service:     service,
		Source:      audit.SourceAlexa,
	})
	if err != nil || !result.OK {
		a.logger.Warn("power control failed", "endpoint_id", endpointID, "error", err)
		return a.errorResponse(messageID, "INTERNAL_ERROR", "Could not reach the device")
	}

	powerState := "OFF"
	if turnOn {
		powerState = "ON"
	}

	return &AlexaResponse{
		Context: map[string]any{
			"properties": []map[string]any{{
				"namespace":                 "Alexa.PowerController",
				"name":                      "powerState",
				"value":                     powerState,
				"timeOfSample":              time.Now().UTC().Format(time.RFC3339),
				"uncertaintyInMilliseconds": 500,
			}},
		},
		Event: alexaEvent{
			Header: alexaHeader{
				Namespace:        "Alexa",
				Name:             "Response",
				MessageID:        messageID,
				CorrelationToken: req.Directive.Header.CorrelationToken,
				PayloadVersion:   alexaPayloadVersion,
			},
			Endpoint: map[string]string{"endpointId": endpointID},
			Payload:  map[string]any{},
		},
	}
}

func (a *AlexaAdapter) errorResponse(messageID, errType, message string) *AlexaResponse {
	return &AlexaResponse{
		Event: alexaEvent{
			Header: alexaHeader{
				Namespace:      "Alexa",
				Name:           "ErrorResponse",
				MessageID:      messageID,
				PayloadVersion: alexaPayloadVersion,
			},
			Payload: map[string]string{"type": errType, "message": message},
		},
	}
}

func powerControllerCapabilities() []alexaCapability {
	power := alexaCapability{
		Type:      "AlexaInterface",
		Interface: "Alexa.PowerController",
		Version:   alexaPayloadVersion,
	}
	power.Properties = &struct {
		Supported           []map[string]string `json:"supported"`
		ProactivelyReported bool                `json:"proactivelyReported"`
		Retrievable         bool                `json:"retrievable"`
	}{
		Supported: []map[string]string{{"name": "powerState"}},
	}

	return []alexaCapability{
		{Type: "AlexaInterface", Interface: "Alexa", Version: alexaPayloadVersion},
		power,
	}
}
