package infrastructure

import (
	"fmt"
	"strconv"
	"strings"

	"incoin/events"
)

const (
	// SubjectPrefix is the root of every economy event subject
	SubjectPrefix = "incoin"

	// EconomyStreamName is the JetStream stream holding economy events
	EconomyStreamName = "incoin_events"
)

// EventSubjectMapper handles mapping between economy events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject returns incoin.<guild>.<event_type>
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return fmt.Sprintf("%s.%d.%s", SubjectPrefix, event.Guild(), event.Type())
}

// MapSubjectToEvent splits a subject back into guild and event type
func (m *EventSubjectMapper) MapSubjectToEvent(subject string) (int64, events.EventType, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 3 || parts[0] != SubjectPrefix {
		return 0, "", fmt.Errorf("not an economy event subject: %s", subject)
	}
	guildID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid guild in subject %s: %w", subject, err)
	}
	return guildID, events.EventType(parts[2]), nil
}

// GetAllSubjects returns the subject filters the economy stream captures
func (m *EventSubjectMapper) GetAllSubjects() []string {
	subjects := make([]string, 0, len(events.AllEventTypes))
	for _, t := range events.AllEventTypes {
		subjects = append(subjects, fmt.Sprintf("%s.*.%s", SubjectPrefix, t))
	}
	return subjects
}
