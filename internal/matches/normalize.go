package matches

import (
	"fmt"
	"strings"

	"oc-ticketing/internal/models"
)

// FormatDateTime renders a backend date/time pair as "HH:mm DD/MM/YYYY".
// The date may carry a time and zone suffix ("2025-12-09T05:00:00.000Z");
// only its calendar part is used. Either value missing yields "".
func FormatDateTime(date, clock string) string {
	if date == "" || clock == "" {
		return ""
	}

	hm := strings.Split(clock, ":")
	if len(hm) > 2 {
		hm = hm[:2]
	}

	calendar := date
	if i := strings.IndexAny(calendar, "T "); i >= 0 {
		calendar = calendar[:i]
	}
	parts := strings.Split(calendar, "-")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return strings.Join(hm, ":") + " " + strings.Join(parts, "/")
}

// Normalize maps a backend record onto the canonical view model. The sold
// counter prefers the snake_case field, then camelCase, then zero; revenue
// defaults to zero and status to active.
func Normalize(raw models.RawMatch) models.Match {
	m := models.Match{
		ID:                raw.ID,
		Home:              raw.Home,
		Away:              raw.Away,
		Date:              raw.Date,
		Time:              raw.Time,
		FormattedDateTime: FormatDateTime(raw.Date, raw.Time),
		Competition:       raw.Competition,
		Capacity:          raw.Capacity,
		Status:            models.MatchActive,
	}

	switch {
	case raw.TicketsSold != nil:
		m.TicketsSold = *raw.TicketsSold
	case raw.TicketsSoldCaml != nil:
		m.TicketsSold = *raw.TicketsSoldCaml
	}
	if raw.Revenue != nil {
		m.Revenue = *raw.Revenue
	}
	if raw.Status != nil {
		m.Status = *raw.Status
	}
	return m
}

func NormalizeAll(raws []models.RawMatch) []models.Match {
	out := make([]models.Match, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

// SchemaError lists how a record departs from the pinned schema: fields that
// Normalize had to default and values that cannot be right.
type SchemaError struct {
	MatchID   int64
	Defaulted []string
	Invalid   []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Defaulted) > 0 {
		parts = append(parts, "defaulted "+strings.Join(e.Defaulted, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("match %d: %s", e.MatchID, strings.Join(parts, "; "))
}

// Validate checks a record against the canonical schema (snake_case sold
// counter, explicit revenue and status, non-negative counters). It returns nil
// for a conforming record.
func Validate(raw models.RawMatch) error {
	e := &SchemaError{MatchID: raw.ID}

	if raw.TicketsSold == nil && raw.TicketsSoldCaml == nil {
		e.Defaulted = append(e.Defaulted, "tickets_sold")
	}
	if raw.Revenue == nil {
		e.Defaulted = append(e.Defaulted, "revenue")
	}
	if raw.Status == nil {
		e.Defaulted = append(e.Defaulted, "status")
	} else if !raw.Status.Valid() {
		e.Invalid = append(e.Invalid, "status")
	}

	counters := []struct {
		name  string
		value *int64
	}{
		{"tickets_sold", raw.TicketsSold},
		{"ticketsSold", raw.TicketsSoldCaml},
		{"revenue", raw.Revenue},
	}
	for _, c := range counters {
		if c.value != nil && *c.value < 0 {
			e.Invalid = append(e.Invalid, c.name)
		}
	}
	if raw.Capacity < 0 {
		e.Invalid = append(e.Invalid, "capacity")
	}

	if len(e.Defaulted) == 0 && len(e.Invalid) == 0 {
		return nil
	}
	return e
}
