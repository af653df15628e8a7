package models

import "time"

// SimulationResult is a fabricated, display-only outcome. It never reaches the backend.
type SimulationResult struct {
	MatchID     int64     `json:"matchId"`
	Label       string    `json:"match"`
	HomeGoals   int       `json:"homeGoals"`
	AwayGoals   int       `json:"awayGoals"`
	Attendance  int       `json:"attendance"`
	SimulatedAt time.Time `json:"simulatedAt"`
}
