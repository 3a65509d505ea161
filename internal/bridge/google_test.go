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

func newGoogleAdapter(hubFake *fakeHub) (*GoogleAdapter, *memAudit) {
	svc, auditRepo := newTestService(hubFake)
	return NewGoogleAdapter(svc, 1, "dinodia-voice-user", "Dinodia Smart Living", logging.Default()), auditRepo
}

func fulfillment(intent string, payload map[string]any) []byte {
	input := map[string]any{"intent": intent}
	if payload != nil {
		input["payload"] = payload
	}
	body, _ := json.Marshal(map[string]any{
		"requestId": "req-1",
		"inputs":    []any{input},
	})
	return body
}

func onOffCommands(entityIDs ...string) map[string]any {
	devices := make([]any, len(entityIDs))
	for i, id := range entityIDs {
		devices[i] = map[string]any{"id": id, "customData": map[string]any{"domain": "light"}}
	}
	return map[string]any{
		"commands": []any{map[string]any{
			"devices": devices,
			"execution": []any{map[string]any{
				"command": "action.devices.commands.OnOff",
				"params":  map[string]any{"on": true},
			}},
		}},
	}
}

func TestGoogleSync(t *testing.T) {
	adapter, _ := newGoogleAdapter(&fakeHub{})

	resp, err := adapter.HandleFulfillment(context.Background(), fulfillment("action.devices.SYNC", nil))
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.RequestID)

	payload, ok := resp.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dinodia-voice-user", payload["agentUserId"])

	devices, ok := payload["devices"].([]googleDevice)
	require.True(t, ok)
	require.Len(t, devices, 2, "only labeled devices sync")

	kitchen := devices[0]
	assert.Equal(t, "light.kitchen", kitchen.ID)
	assert.Equal(t, "action.devices.types.LIGHT", kitchen.Type)
	assert.Equal(t, []string{"action.devices.traits.OnOff"}, kitchen.Traits)
	assert.Equal(t, "Kitchen", kitchen.RoomHint)
	assert.Equal(t, "light", kitchen.CustomData["domain"])
}

func TestGoogleExecute_AllSucceed(t *testing.T) {
	hubFake := &fakeHub{}
	adapter, _ := newGoogleAdapter(hubFake)

	resp, err := adapter.HandleFulfillment(context.Background(),
		fulfillment("action.devices.EXECUTE", onOffCommands("light.kitchen", "light.bedroom")))
	require.NoError(t, err)

	results := commandResults(t, resp)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "SUCCESS", r.Status)
		assert.Equal(t, true, r.States["on"])
	}
	assert.Equal(t, 2, hubFake.callCount())
}

func TestGoogleExecute_PartialFailureIsIndependent(t *testing.T) {
	hubFake := &fakeHub{results: map[string]hubAnswer{
		"light.kitchen": {result: &hub.ServiceResult{Status: 500, Body: "boom"}, err: hub.ErrProtocol},
	}}
	adapter, _ := newGoogleAdapter(hubFake)

	resp, err := adapter.HandleFulfillment(context.Background(),
		fulfillment("action.devices.EXECUTE", onOffCommands("light.kitchen", "light.bedroom")))
	require.NoError(t, err)

	results := commandResults(t, resp)
	require.Len(t, results, 2, "one failure must not swallow the other device's entry")

	byEntity := map[string]string{}
	for _, r := range results {
		require.Len(t, r.IDs, 1)
		byEntity[r.IDs[0]] = r.Status
	}
	assert.Equal(t, "ERROR", byEntity["light.kitchen"])
	assert.Equal(t, "SUCCESS", byEntity["light.bedroom"])
	assert.Equal(t, 2, hubFake.callCount(), "both devices must still be attempted")
}

func TestGoogleExecute_InvisibleDeviceErrors(t *testing.T) {
	hubFake := &fakeHub{}
	adapter, _ := newGoogleAdapter(hubFake)

	// The unlabeled motion sensor is invisible to voice.
	resp, err := adapter.HandleFulfillment(context.Background(),
		fulfillment("action.devices.EXECUTE", onOffCommands("sensor.hall_motion")))
	require.NoError(t, err)

	results := commandResults(t, resp)
	require.Len(t, results, 1)
	assert.Equal(t, "ERROR", results[0].Status)
	assert.Zero(t, hubFake.callCount())
}

func TestGoogleExecute_UnknownCommand(t *testing.T) {
	adapter, _ := newGoogleAdapter(&fakeHub{})

	payload := map[string]any{
		"commands": []any{map[string]any{
			"devices": []any{map[string]any{"id": "light.kitchen"}},
			"execution": []any{map[string]any{
				"command": "action.devices.commands.BrightnessAbsolute",
				"params":  map[string]any{"brightness": 50},
			}},
		}},
	}
	resp, err := adapter.HandleFulfillment(context.Background(),
		fulfillment("action.devices.EXECUTE", payload))
	require.NoError(t, err)

	results := commandResults(t, resp)
	require.Len(t, results, 1)
	assert.Equal(t, "ERROR", results[0].Status)
}

func TestGoogleUnknownIntent(t *testing.T) {
	adapter, _ := newGoogleAdapter(&fakeHub{})

	resp, err := adapter.HandleFulfillment(context.Background(),
		fulfillment("action.devices.DISCONNECT", nil))
	require.NoError(t, err)

	payload, ok := resp.Payload.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "notSupported", payload["errorCode"])
}

func TestGoogleMalformedEnvelope(t *testing.T) {
	adapter, _ := newGoogleAdapter(&fakeHub{})

	for _, body := range [][]byte{
		[]byte("not json"),
		[]byte(`{"inputs": []}`),
		[]byte(`{"requestId": "r"}`),
	} {
		_, err := adapter.HandleFulfillment(context.Background(), body)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
}

func commandResults(t *testing.T, resp *GoogleResponse) []googleCommandResult {
	t.Helper()
	payload, ok := resp.Payload.(map[string]any)
	require.True(t, ok)
	results, ok := payload["commands"].([]googleCommandResult)
	require.True(t, ok)
	return results
}
