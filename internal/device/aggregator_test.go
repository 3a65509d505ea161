package device

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dinodia/dinodia-core/internal/hub"
	"github.com/dinodia/dinodia-core/internal/infrastructure/logging"
)

// fakeSource returns canned states and template output.
type fakeSource struct {
	states      []hub.EntityState
	statesErr   error
	template    json.RawMessage
	templateErr error
}

func (f *fakeSource) States(_ context.Context, _ int64) ([]hub.EntityState, error) {
	return f.states, f.statesErr
}

func (f *fakeSource) RenderTemplate(_ context.Context, _ int64, _ string) (json.RawMessage, error) {
	return f.template, f.templateErr
}

func testStates() []hub.EntityState {
	return []hub.EntityState{
		{
			EntityID:   "light.kitchen",
			State:      "on",
			Attributes: map[string]any{"friendly_name": "Kitchen Light", "icon": "mdi:lightbulb"},
		},
		{
			EntityID:   "switch.boiler",
			State:      "off",
			Attributes: map[string]any{},
		},
	}
}

func TestAggregatorDevices(t *testing.T) {
	source := &fakeSource{
		states: testStates(),
		template: json.RawMessage(`[
			{"entity_id": "light.kitchen", "area_name": "Kitchen", "labels": ["Light", "Rented"]},
			{"entity_id": "switch.boiler", "area_name": null, "labels": []}
		]`),
	}
	agg := NewAggregator(source, logging.Default())

	devices, err := agg.Devices(context.Background(), 1)
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}

	kitchen := devices[0]
	if kitchen.EntityID != "light.kitchen" || kitchen.Domain != "light" {
		t.Errorf("unexpected first device: %+v", kitchen)
	}
	if kitchen.FriendlyName != "Kitchen Light" {
		t.Errorf("FriendlyName = %q", kitchen.FriendlyName)
	}
	if kitchen.AreaName != "Kitchen" {
		t.Errorf("AreaName = %q, want Kitchen", kitchen.AreaName)
	}
	if len(kitchen.Labels) != 2 || kitchen.Labels[0] != "Light" {
		t.Errorf("Labels = %v", kitchen.Labels)
	}
	if kitchen.Category == nil || *kitchen.Category != CategoryLight {
		t.Errorf("Category = %v, want LIGHT", kitchen.Category)
	}

	boiler := devices[1]
	if boiler.FriendlyName != "switch.boiler" {
		t.Errorf("FriendlyName should fall back to entity id, got %q", boiler.FriendlyName)
	}
	if boiler.AreaName != "" {
		t.Errorf("null area should map to empty AreaName, got %q", boiler.AreaName)
	}
	if boiler.Labels == nil {
		t.Error("Labels must never be nil")
	}
	if boiler.Category != nil {
		t.Errorf("unlabelled device Category = %v, want nil", boiler.Category)
	}
}

func TestDeviceCategorySerialized(t *testing.T) {
	source := &fakeSource{
		states: testStates(),
		template: json.RawMessage(`[
			{"entity_id": "light.kitchen", "area_name": "Kitchen", "labels": ["Light"]}
		]`),
	}
	agg := NewAggregator(source, logging.Default())

	devices, err := agg.Devices(context.Background(), 1)
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}

	raw, err := json.Marshal(devices[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["category"] != "LIGHT" {
		t.Errorf("category = %v, want LIGHT", got["category"])
	}

	raw, err = json.Marshal(devices[1])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got = map[string]any{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v, ok := got["category"]; !ok || v != nil {
		t.Errorf("unlabelled device category = %v (present=%v), want explicit null", v, ok)
	}
}

func TestAggregatorDevices_TemplateFailureDegrades(t *testing.T) {
	source := &fakeSource{
		states:      testStates(),
		templateErr: hub.ErrTemplate,
	}
	agg := NewAggregator(source, logging.Default())

	devices, err := agg.Devices(context.Background(), 1)
	if err != nil {
		t.Fatalf("Devices should degrade, not fail: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	for _, d := range devices {
		if d.AreaName != "" || len(d.Labels) != 0 {
			t.Errorf("degraded device should have no metadata: %+v", d)
		}
	}
}

func TestAggregatorDevices_StatesFailureIsFatal(t *testing.T) {
	source := &fakeSource{statesErr: hub.ErrUnreachable}
	agg := NewAggregator(source, logging.Default())

	_, err := agg.Devices(context.Background(), 1)
	if !errors.Is(err, hub.ErrUnreachable) {
		t.Fatalf("Devices error = %v, want ErrUnreachable", err)
	}
}

func TestAreasAndLabels(t *testing.T) {
	devices := []Device{
		{EntityID: "light.a", AreaName: "Kitchen", Labels: []string{"Light"}},
		{EntityID: "light.b", AreaName: "Bedroom", Labels: []string{"Light", "Rented"}},
		{EntityID: "switch.c", AreaName: "", Labels: nil},
	}

	areas, labels := AreasAndLabels(devices)

	wantAreas := []string{"Bedroom", "Kitchen"}
	if len(areas) != len(wantAreas) {
		t.Fatalf("areas = %v, want %v", areas, wantAreas)
	}
	for i := range wantAreas {
		if areas[i] != wantAreas[i] {
			t.Errorf("areas[%d] = %q, want %q", i, areas[i], wantAreas[i])
		}
	}

	wantLabels := []string{"Light", "Rented"}
	if len(labels) != len(wantLabels) {
		t.Fatalf("labels = %v, want %v", labels, wantLabels)
	}
	for i := range wantLabels {
		if labels[i] != wantLabels[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], wantLabels[i])
		}
	}
}
