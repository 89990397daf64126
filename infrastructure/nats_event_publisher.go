package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"incoin/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const sourceService = "incoin"

// MessagePublisher sends raw bytes to a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventEnvelope wraps every event put on the stream
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	GuildID       int64           `json:"guild_id,string"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher forwards economy events from the in-process bus to NATS
type NATSEventPublisher struct {
	client        MessagePublisher
	subjectMapper *EventSubjectMapper
	now           func() time.Time
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(client MessagePublisher, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	return &NATSEventPublisher{
		client:        client,
		subjectMapper: subjectMapper,
		now:           time.Now,
	}
}

// Attach subscribes the publisher to every event type on bus
func (p *NATSEventPublisher) Attach(bus *events.Bus) {
	bus.SubscribeAll(p.Handle)
}

// Handle is an events.Handler; failures are logged since the bus has no
// error channel
func (p *NATSEventPublisher) Handle(ctx context.Context, event events.Event) {
	if err := p.Publish(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"guild_id":  event.Guild(),
			"error":     err,
		}).Error("Failed to publish event to NATS")
	}
}

// Publish serializes event into an envelope and publishes it
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	envelope, err := p.envelope(event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := p.subjectMapper.MapEventToSubject(event)
	if err := p.client.Publish(ctx, subject, data); err != nil {
		// No stream bound to the subject, nobody is listening
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")
	return nil
}

func (p *NATSEventPublisher) envelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		GuildID:       event.Guild(),
		Timestamp:     p.now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}, nil
}

// EnsureEconomyStream ensures the stream capturing every economy subject exists
func EnsureEconomyStream(client *NATSClient, mapper *EventSubjectMapper) error {
	return client.EnsureStream(EconomyStreamName, mapper.GetAllSubjects())
}
