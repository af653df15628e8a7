package models

// Team is an entry of the public team directory used by the admin forms.
type Team struct {
	Name       string `json:"name"`
	Badge      string `json:"badge"`
	Stadium    string `json:"stadium"`
	FormedYear int    `json:"formedYear"`
}
