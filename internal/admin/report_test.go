package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"oc-ticketing/internal/models"
)

func TestBuildStats(t *testing.T) {
	list := []models.Match{
		{ID: 1, TicketsSold: 15000, Revenue: 675_000_000},
		{ID: 2, TicketsSold: 18000, Revenue: 810_000_000},
		{ID: 3, TicketsSold: 5001, Revenue: 0},
	}
	s := BuildStats(list)

	assert.Equal(t, 3, s.Matches)
	assert.Equal(t, int64(1_485_000_000), s.TotalRevenue)
	assert.Equal(t, int64(38001), s.TotalTickets)
	assert.Equal(t, int64(12667), s.AverageAttendance)
	assert.Equal(t, "$1485,0M", s.RevenueText)
	assert.Equal(t, "38.001", s.TicketsText)

	assert.Equal(t, int64(0), BuildStats(nil).AverageAttendance)
}

func TestBuildReport(t *testing.T) {
	rows := BuildReport([]models.Match{
		{ID: 1, Home: "Once Caldas", Away: "Junior", Capacity: 20000, TicketsSold: 12345, Revenue: 555_525_000},
		{ID: 2, Home: "Once Caldas", Away: "Millonarios FC", TicketsSold: 0, Revenue: 0},
	})

	assert.Equal(t, 61.7, rows[0].Occupancy)
	assert.Equal(t, "$555,53M", rows[0].Revenue)
	assert.Equal(t, int64(45000), rows[0].AveragePrice)
	assert.Equal(t, "$45.000", rows[0].PriceText)
	assert.Equal(t, int64(7655), rows[0].Available)

	assert.Equal(t, 0.0, rows[1].Occupancy)
	assert.Equal(t, int64(0), rows[1].AveragePrice)
	assert.Equal(t, "Once Caldas vs Millonarios FC", rows[1].Label)
}
