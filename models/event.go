package models

type Category string

const (
	CategoryTechnical Category = "technical"
	CategoryNonTech   Category = "nontech"
	CategoryWorkshop  Category = "workshop"
)

type Event struct {
	Name            string   `json:"event_name" yaml:"name"`
	Category        Category `json:"category" yaml:"category"`
	MaxParticipants *int     `json:"max_participants,omitempty" yaml:"max_participants,omitempty"`
}

// WorkshopSeats is the capacity view shown on the registration form.
// Remaining is nil for workshops without a configured maximum.
type WorkshopSeats struct {
	Name      string `json:"name"`
	Max       *int   `json:"max_participants,omitempty"`
	Taken     int    `json:"taken"`
	Remaining *int   `json:"remaining,omitempty"`
}
