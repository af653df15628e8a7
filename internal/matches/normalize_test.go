package matches

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oc-ticketing/internal/models"
)

func decodeRaw(t *testing.T, body string) models.RawMatch {
	t.Helper()
	var raw models.RawMatch
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestFormatDateTime(t *testing.T) {
	tests := []struct {
		name, date, clock, want string
	}{
		{"iso date with zone", "2025-12-09T05:00:00.000Z", "20:00:00", "20:00 09/12/2025"},
		{"plain date", "2025-11-05", "20:00", "20:00 05/11/2025"},
		{"empty date", "", "20:00", ""},
		{"empty time", "2025-01-01", "", ""},
		{"space separated date", "2025-03-02 00:00:00", "16:30:15", "16:30 02/03/2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDateTime(tt.date, tt.clock))
		})
	}
}

func TestNormalize_DefaultsMissingFields(t *testing.T) {
	raw := decodeRaw(t, `{"id":7,"home":"Once Caldas","away":"Millonarios FC","date":"2025-11-12","time":"18:30","competition":"Liga BetPlay","capacity":20000}`)

	m := Normalize(raw)

	assert.Equal(t, int64(0), m.TicketsSold)
	assert.Equal(t, int64(0), m.Revenue)
	assert.Equal(t, models.MatchActive, m.Status)
	assert.Equal(t, "18:30 12/11/2025", m.FormattedDateTime)
	assert.Equal(t, "Once Caldas vs Millonarios FC", m.Label())
}

func TestNormalize_SoldCounterPrecedence(t *testing.T) {
	both := decodeRaw(t, `{"id":1,"tickets_sold":150,"ticketsSold":99}`)
	assert.Equal(t, int64(150), Normalize(both).TicketsSold, "snake_case wins")

	camel := decodeRaw(t, `{"id":1,"ticketsSold":99}`)
	assert.Equal(t, int64(99), Normalize(camel).TicketsSold)

	zero := decodeRaw(t, `{"id":1,"tickets_sold":0,"ticketsSold":99}`)
	assert.Equal(t, int64(0), Normalize(zero).TicketsSold, "an explicit zero is still explicit")
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	raw := decodeRaw(t, `{"id":3,"revenue":4500000,"status":"inactive","tickets_sold":100}`)

	m := Normalize(raw)

	assert.Equal(t, int64(4500000), m.Revenue)
	assert.Equal(t, models.MatchInactive, m.Status)
}

func TestNormalize_IsPure(t *testing.T) {
	raw := decodeRaw(t, `{"id":3,"date":"2025-12-09T05:00:00.000Z","time":"20:00:00","ticketsSold":5}`)
	assert.Equal(t, Normalize(raw), Normalize(raw))
}

func TestNormalizeAll(t *testing.T) {
	out := NormalizeAll([]models.RawMatch{{ID: 1}, {ID: 2}})
	require.Len(t, out, 2)
	assert.Equal(t, int64(2), out[1].ID)
	assert.NotNil(t, NormalizeAll(nil))
}

func TestValidate(t *testing.T) {
	ok := decodeRaw(t, `{"id":1,"tickets_sold":10,"revenue":100,"status":"active","capacity":20}`)
	assert.NoError(t, Validate(ok))

	missing := decodeRaw(t, `{"id":2,"capacity":20}`)
	err := Validate(missing)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"tickets_sold", "revenue", "status"}, schemaErr.Defaulted)

	bad := decodeRaw(t, `{"id":3,"tickets_sold":-1,"revenue":-5,"status":"postponed","capacity":-2}`)
	require.True(t, errors.As(Validate(bad), &schemaErr))
	assert.Equal(t, []string{"status", "tickets_sold", "revenue", "capacity"}, schemaErr.Invalid)
	assert.Contains(t, schemaErr.Error(), "match 3")
}
