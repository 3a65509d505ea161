package device

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dinodia/dinodia-core/internal/hub"
	"github.com/dinodia/dinodia-core/internal/infrastructure/logging"
)

// metadataTemplate is rendered by the hub's template engine and returns
// a JSON array of {entity_id, area_name, labels}. The area_name() and
// labels() helpers resolve metadata applied at entity, parent device,
// or area level, which /api/states alone cannot see.
const metadataTemplate = `{% set ns = namespace(result=[]) %}
{% for s in states %}
  {% set item = {
    "entity_id": s.entity_id,
    "area_name": area_name(s.entity_id),
    "labels": (labels(s.entity_id) | map('label_name') | list)
  } %}
  {% set ns.result = ns.result + [item] %}
{% endfor %}
{{ ns.result | tojson }}`

// StateSource is the slice of the hub client the aggregator needs.
type StateSource interface {
	States(ctx context.Context, householdID int64) ([]hub.EntityState, error)
	RenderTemplate(ctx context.Context, householdID int64, template string) (json.RawMessage, error)
}

// Aggregator joins raw hub entity states with area/label metadata into
// Device values.
type Aggregator struct {
	source StateSource
	logger *logging.Logger
}

// NewAggregator creates a device aggregator reading from the given hub
// client.
func NewAggregator(source StateSource, logger *logging.Logger) *Aggregator {
	return &Aggregator{
		source: source,
		logger: logger.With("component", "device"),
	}
}

type entityMeta struct {
	EntityID string   `json:"entity_id"`
	AreaName string   `json:"area_name"`
	Labels   []string `json:"labels"`
}

// Devices returns the household's full device list in hub state order.
//
// A states failure is fatal. A metadata template failure is not: the
// hub may have templates disabled or an older engine, so the listing
// degrades to devices without areas or labels and a warning is logged.
func (a *Aggregator) Devices(ctx context.Context, householdID int64) ([]Device, error) {
	states, err := a.source.States(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("loading hub states: %w", err)
	}

	metaByEntity := a.loadMetadata(ctx, householdID)

	devices := make([]Device, 0, len(states))
	for _, s := range states {
		d := Device{
			EntityID:     s.EntityID,
			Domain:       DomainOf(s.EntityID),
			FriendlyName: s.FriendlyName(),
			State:        s.State,
			Icon:         s.Icon(),
			Labels:       []string{},
		}
		if meta, ok := metaByEntity[s.EntityID]; ok {
			d.AreaName = meta.AreaName
			if meta.Labels != nil {
				d.Labels = meta.Labels
			}
		}
		if cat, ok := Classify(d.Labels); ok {
			d.Category = &cat
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// loadMetadata renders the metadata template and indexes the result by
// entity id. Failures degrade to an empty index.
func (a *Aggregator) loadMetadata(ctx context.Context, householdID int64) map[string]entityMeta {
	raw, err := a.source.RenderTemplate(ctx, householdID, metadataTemplate)
	if err != nil {
		a.logger.Warn("could not load area/label metadata, serving devices without it",
			"household_id", householdID, "error", err)
		return nil
	}

	var metas []entityMeta
	if err := json.Unmarshal(raw, &metas); err != nil {
		a.logger.Warn("metadata template returned unexpected shape",
			"household_id", householdID, "error", err)
		return nil
	}

	byEntity := make(map[string]entityMeta, len(metas))
	for _, m := range metas {
		byEntity[m.EntityID] = m
	}
	return byEntity
}

// AreasAndLabels collects the distinct area names and labels present in
// a device list, sorted case-insensitively. Used by the member access
// editor to offer valid filter values.
func AreasAndLabels(devices []Device) (areas, labels []string) {
	areaSet := make(map[string]bool)
	labelSet := make(map[string]bool)
	for _, d := range devices {
		if d.AreaName != "" {
			areaSet[d.AreaName] = true
		}
		for _, l := range d.Labels {
			labelSet[l] = true
		}
	}

	areas = make([]string, 0, len(areaSet))
	for a := range areaSet {
		areas = append(areas, a)
	}
	labels = make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sortFold(areas)
	sortFold(labels)
	return areas, labels
}

func sortFold(values []string) {
	sort.Slice(values, func(i, j int) bool {
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})
}
