package bridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinodia/dinodia-core/internal/hub"
	"github.com/dinodia/dinodia-core/internal/infrastructure/logging"
)

func newAlexaAdapter(hubFake *fakeHub) (*AlexaAdapter, *memAudit) {
	svc, auditRepo := newTestService(hubFake)
	return NewAlexaAdapter(svc, 1, "Dinodia Smart Living", logging.Default()), auditRepo
}

func directive(namespace, name string, extra map[string]any) []byte {
	d := map[string]any{
		"header": map[string]any{
			"namespace": namespace,
			"name":      name,
			"messageId": "msg-1",
		},
	}
	for k, v := range extra {
		d[k] = v
	}
	body, _ := json.Marshal(map[string]any{"directive": d})
	return body
}

func TestAlexaDiscover(t *testing.T) {
	adapter, _ := newAlexaAdapter(&fakeHub{})

	resp, err := adapter.HandleDirective(context.Background(), directive("Alexa.Discovery", "Discover", nil))
	require.NoError(t, err)

	assert.Equal(t, "Alexa.Discovery", resp.Event.Header.Namespace)
	assert.Equal(t, "Discover.Response", resp.Event.Header.Name)
	assert.Equal(t, "msg-1", resp.Event.Header.MessageID)

	payload, ok := resp.Event.Payload.(map[string]any)
	require.True(t, ok)
	endpoints, ok := payload["endpoints"].([]alexaEndpoint)
	require.True(t, ok)

	// Only labeled devices are voice-visible: the motion sensor is out.
	require.Len(t, endpoints, 2)

	kitchen := endpoints[0]
	assert.Equal(t, "light.kitchen", kitchen.EndpointID)
	assert.Equal(t, "Kitchen Light", kitchen.FriendlyName)
	assert.Equal(t, []string{"LIGHT"}, kitchen.DisplayCategories)
	assert.Equal(t, "light", kitchen.Cookie["domain"])
	assert.Equal(t, "Kitchen", kitchen.Cookie["areaName"])
	require.Len(t, kitchen.Capabilities, 2)
	assert.Equal(t, "Alexa.PowerController", kitchen.Capabilities[1].Interface)
}

func TestAlexaTurnOn(t *testing.T) {
	hubFake := &fakeHub{}
	adapter, auditRepo := newAlexaAdapter(hubFake)

	body := directive("Alexa.PowerController", "TurnOn", map[string]any{
		"endpoint": map[string]any{
			"endpointId": "light.kitchen",
			"cookie":     map[string]string{"domain": "light"},
		},
	})
	resp, err := adapter.HandleDirective(context.Background(), body)
	require.NoError(t, err)

	assert.Equal(t, "Alexa", resp.Event.Header.Namespace)
	assert.Equal(t, "Response", resp.Event.Header.Name)
	require.Len(t, hubFake.calls, 1)
	assert.Equal(t, "turn_on", hubFake.calls[0].service)
	assert.Equal(t, []string{"ok"}, auditRepo.outcomes())
}

func TestAlexaTurnOn_DomainDefaultsToLight(t *testing.T) {
	hubFake := &fakeHub{}
	adapter, _ := newAlexaAdapter(hubFake)

	body := directive("Alexa.PowerController", "TurnOn", map[string]any{
		"endpoint": map[string]any{"endpointId": "light.kitchen"},
	})
	_, err := adapter.HandleDirective(context.Background(), body)
	require.NoError(t, err)

	require.Len(t, hubFake.calls, 1)
	assert.Equal(t, "light", hubFake.calls[0].domain)
}

func TestAlexaTurnOff(t *testing.T) {
	hubFake := &fakeHub{}
	adapter, _ := newAlexaAdapter(hubFake)

	body := directive("Alexa.PowerController", "TurnOff", map[string]any{
		"endpoint": map[string]any{
			"endpointId": "light.bedroom",
			"cookie":     map[string]string{"domain": "light"},
		},
	})
	resp, err := adapter.HandleDirective(context.Background(), body)
	require.NoError(t, err)
	assert.Equal(t, "Response", resp.Event.Header.Name)
	require.Len(t, hubFake.calls, 1)
	assert.Equal(t, "turn_off", hubFake.calls[0].service)
}

func TestAlexaUnsupportedDirective(t *testing.T) {
	adapter, _ := newAlexaAdapter(&fakeHub{})

	resp, err := adapter.HandleDirective(context.Background(),
		directive("Alexa.ThermostatController", "SetTargetTemperature", nil))
	require.NoError(t, err, "unsupported directives answer with an error event, not an HTTP error")

	assert.Equal(t, "ErrorResponse", resp.Event.Header.Name)
	payload, ok := resp.Event.Payload.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "INVALID_DIRECTIVE", payload["type"])
}

func TestAlexaHubFailureIsInternalError(t *testing.T) {
	hubFake := &fakeHub{results: map[string]hubAnswer{
		"light.kitchen": {result: &hub.ServiceResult{Status: 502}, err: hub.ErrUnreachable},
	}}
	adapter, _ := newAlexaAdapter(hubFake)

	body := directive("Alexa.PowerController", "TurnOn", map[string]any{
		"endpoint": map[string]any{"endpointId": "light.kitchen"},
	})
	resp, err := adapter.HandleDirective(context.Background(), body)
	require.NoError(t, err)

	assert.Equal(t, "ErrorResponse", resp.Event.Header.Name)
	payload := resp.Event.Payload.(map[string]string)
	assert.Equal(t, "INTERNAL_ERROR", payload["type"])
}

func TestAlexaMalformedEnvelope(t *testing.T) {
	adapter, _ := newAlexaAdapter(&fakeHub{})

	for _, body := range [][]byte{
		[]byte("not json"),
		[]byte(`{"no_directive": true}`),
	} {
		_, err := adapter.HandleDirective(context.Background(), body)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
}
