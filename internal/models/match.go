package models

// HomeClub is the fixed home side of every fixture at the stadium.
const HomeClub = "Once Caldas"

type MatchStatus string

const (
	MatchActive   MatchStatus = "active"
	MatchInactive MatchStatus = "inactive"
)

func (s MatchStatus) Valid() bool {
	return s == MatchActive || s == MatchInactive
}

// RawMatch is a match record as the backend sends it. The backend has served
// both spellings of the sold counter, and older rows omit revenue and status,
// so every optional field is a pointer.
type RawMatch struct {
	ID              int64        `json:"id"`
	Home            string       `json:"home"`
	Away            string       `json:"away"`
	Date            string       `json:"date"`
	Time            string       `json:"time"`
	Competition     string       `json:"competition"`
	Capacity        int64        `json:"capacity"`
	TicketsSold     *int64       `json:"tickets_sold,omitempty"`
	TicketsSoldCaml *int64       `json:"ticketsSold,omitempty"`
	Revenue         *int64       `json:"revenue,omitempty"`
	Status          *MatchStatus `json:"status,omitempty"`
}

// Match is the canonical view model every page works with.
type Match struct {
	ID                int64       `json:"id"`
	Home              string      `json:"home"`
	Away              string      `json:"away"`
	Date              string      `json:"date"`
	Time              string      `json:"time"`
	FormattedDateTime string      `json:"formattedDateTime"`
	Competition       string      `json:"competition"`
	Capacity          int64       `json:"capacity"`
	TicketsSold       int64       `json:"ticketsSold"`
	Revenue           int64       `json:"revenue"`
	Status            MatchStatus `json:"status"`
}

// Label renders the fixture as "home vs away".
func (m Match) Label() string {
	return m.Home + " vs " + m.Away
}

// MatchInput is the body of POST /api/matches.
type MatchInput struct {
	Away        string `json:"away"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Competition string `json:"competition"`
}

// MatchUpdate is the body of PATCH /api/matches/{id}. Identity and derived
// fields are never sent.
type MatchUpdate struct {
	Away        string      `json:"away"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Competition string      `json:"competition"`
	Status      MatchStatus `json:"status"`
}
