package matches

import (
	"math"
	"sort"
	"strings"

	"oc-ticketing/internal/models"
)

// Available is the number of seats still on sale.
func Available(m models.Match) int64 {
	if left := m.Capacity - m.TicketsSold; left > 0 {
		return left
	}
	return 0
}

// AvailabilityPercent is (capacity - sold) / capacity as a rounded percentage.
func AvailabilityPercent(m models.Match) int {
	if m.Capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(m.Capacity-m.TicketsSold) / float64(m.Capacity) * 100))
}

func kickoffKey(m models.Match) string {
	date := m.Date
	if i := strings.IndexAny(date, "T "); i >= 0 {
		date = date[:i]
	}
	clock := m.Time
	if len(clock) == 5 {
		clock += ":00"
	}
	return date + " " + clock
}

// Upcoming returns the first n matches ordered by kickoff. The input is left untouched.
func Upcoming(list []models.Match, n int) []models.Match {
	sorted := make([]models.Match, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return kickoffKey(sorted[i]) < kickoffKey(sorted[j])
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
