package model

import "time"

// SearchEntry is one remembered search: the query text and the filter
// selector that was active when it ran.
type SearchEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Filter    string    `json:"filter"`
	Timestamp time.Time `json:"timestamp"`
}
