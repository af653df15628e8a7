package admin

import (
	"oc-ticketing/internal/matches"
	"oc-ticketing/internal/models"
	"oc-ticketing/internal/money"
)

// stadiumCapacity stands in for matches the backend reports without one.
const stadiumCapacity = 20000

type Stats struct {
	Matches           int    `json:"matches"`
	TotalRevenue      int64  `json:"totalRevenue"`
	TotalTickets      int64  `json:"totalTickets"`
	AverageAttendance int64  `json:"averageAttendance"`
	RevenueText       string `json:"revenueText"`
	TicketsText       string `json:"ticketsText"`
	AttendanceText    string `json:"attendanceText"`
}

type ReportRow struct {
	MatchID      int64   `json:"matchId"`
	Label        string  `json:"match"`
	Date         string  `json:"date"`
	TicketsSold  int64   `json:"ticketsSold"`
	Available    int64   `json:"available"`
	Occupancy    float64 `json:"occupancy"`
	Revenue      string  `json:"revenue"`
	AveragePrice int64   `json:"averagePrice"`
	PriceText    string  `json:"averagePriceText"`
}

func BuildStats(list []models.Match) Stats {
	var s Stats
	s.Matches = len(list)
	for _, m := range list {
		s.TotalRevenue += m.Revenue
		s.TotalTickets += m.TicketsSold
	}
	s.AverageAttendance = money.Ratio(s.TotalTickets, int64(len(list)))
	s.RevenueText = money.Millions(s.TotalRevenue, 1)
	s.TicketsText = money.Thousands(s.TotalTickets)
	s.AttendanceText = money.Thousands(s.AverageAttendance)
	return s
}

func BuildReport(list []models.Match) []ReportRow {
	rows := make([]ReportRow, 0, len(list))
	for _, m := range list {
		capacity := m.Capacity
		if capacity <= 0 {
			capacity = stadiumCapacity
		}
		avg := money.Ratio(m.Revenue, m.TicketsSold)
		rows = append(rows, ReportRow{
			MatchID:      m.ID,
			Label:        m.Label(),
			Date:         m.Date,
			TicketsSold:  m.TicketsSold,
			Available:    matches.Available(m),
			Occupancy:    money.Percent(m.TicketsSold, capacity, 1),
			Revenue:      money.Millions(m.Revenue, 2),
			AveragePrice: avg,
			PriceText:    money.Pesos(avg),
		})
	}
	return rows
}

func (p *Panel) Stats() Stats {
	return BuildStats(p.Matches())
}

func (p *Panel) Report() []ReportRow {
	return BuildReport(p.Matches())
}
