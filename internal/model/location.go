package model

// Sublocation is a named subdivision of a Location (a drawer, a shelf).
type Sublocation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Location is a physical place that can contain items. Icon and ColorTag are
// presentation hints the server stores but never interprets. ParentID, when
// set, references another Location (room -> cabinet); a root location has no
// parent.
type Location struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Icon         string        `json:"icon,omitempty"`
	ColorTag     string        `json:"color_tag,omitempty"`
	ParentID     *string       `json:"parent_id"`
	Sublocations []Sublocation `json:"sublocations"`
}
