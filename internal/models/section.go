package models

// Section is a seating stand for one specific match.
type Section struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Capacity  int64  `json:"capacity"`
	Available int64  `json:"available"`
	Price     int64  `json:"price"`
	Color     string `json:"color"`
}
