package models

// PlaceholderLink is used when a headline carries no resolvable link.
const PlaceholderLink = "#"

// Opportunity is a promotional headline. Two opportunities with the same
// Link are the same entity.
type Opportunity struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}
