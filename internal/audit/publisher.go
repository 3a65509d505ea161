package audit

import (
	"encoding/json"
	"fmt"
)

// commandTopic carries one JSON event per attempted command.
const commandTopic = "dinodia/event/command"

// EventSink is the slice of the MQTT client the publisher needs.
type EventSink interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Publisher mirrors command records onto the MQTT event bus so
// external consumers (dashboards, automations) can react to commands
// without polling the audit API. Optional: a nil Publisher is valid
// and publishes nothing.
type Publisher struct {
	sink EventSink
}

// NewPublisher creates a command event publisher over an MQTT client.
func NewPublisher(sink EventSink) *Publisher {
	return &Publisher{sink: sink}
}

// PublishCommand emits the record as a QoS 1 JSON event. Events are
// not retained: the audit table is the durable record, the bus is
// only a live feed.
func (p *Publisher) PublishCommand(record *CommandRecord) error {
	if p == nil || p.sink == nil {
		return nil
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling command event: %w", err)
	}
	if err := p.sink.Publish(commandTopic, payload, 1, false); err != nil {
		return fmt.Errorf("publishing command event: %w", err)
	}
	return nil
}
