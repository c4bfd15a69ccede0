package model

import "time"

// Category is the fixed set of item categories.
type Category string

const (
	CategoryClothing    Category = "clothing"
	CategoryKitchen     Category = "kitchen"
	CategoryBooks       Category = "books"
	CategoryTools       Category = "tools"
	CategoryElectronics Category = "electronics"
	CategoryStationery  Category = "stationery"
	CategoryDecoration  Category = "decoration"
	CategoryOther       Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryClothing,
	CategoryKitchen,
	CategoryBooks,
	CategoryTools,
	CategoryElectronics,
	CategoryStationery,
	CategoryDecoration,
	CategoryOther,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Item is a tracked physical object.
type Item struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Category         Category  `json:"category"`
	LocationID       *string   `json:"location_id"`
	Sublocation      string    `json:"sublocation,omitempty"`
	SpecificLocation string    `json:"specific_location,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Tags             []string  `json:"tags"`
	PhotoRef         string    `json:"photo_ref,omitempty"`
	Favorite         bool      `json:"favorite"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
