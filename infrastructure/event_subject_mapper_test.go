package infrastructure

import (
	"testing"

	"incoin/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	subject := mapper.MapEventToSubject(events.CompanyCreatedEvent{GuildID: 987654321, CompanyID: "c1"})
	assert.Equal(t, "incoin.987654321.company_created", subject)

	guildID, eventType, err := mapper.MapSubjectToEvent(subject)
	require.NoError(t, err)
	assert.Equal(t, int64(987654321), guildID)
	assert.Equal(t, events.EventTypeCompanyCreated, eventType)

	for _, bad := range []string{"incoin.x.company_created", "other.1.balance_changed", "incoin.1"} {
		_, _, err := mapper.MapSubjectToEvent(bad)
		assert.Error(t, err, bad)
	}

	subjects := mapper.GetAllSubjects()
	assert.Len(t, subjects, len(events.AllEventTypes))
	assert.Contains(t, subjects, "incoin.*.stock_price_updated")
}
