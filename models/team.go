package models

import "time"

type PaymentStatus string

const (
	StatusUnpaid   PaymentStatus = "UNPAID"
	StatusWaiting  PaymentStatus = "WAITING"
	StatusApproved PaymentStatus = "APPROVED"
)

type Team struct {
	TeamID           string        `json:"team_id"`
	TeamName         string        `json:"team_name,omitempty"`
	LeaderEmail      string        `json:"leader_email"`
	RegistrationType string        `json:"registration_type"`
	MemberCount      int           `json:"member_count"`
	AmountPaid       int           `json:"amount_paid"`
	TransactionID    string        `json:"transaction_id,omitempty"`
	ReceiptURL       string        `json:"receipt_url,omitempty"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// NewTeam is the write model for one registration. Workshop choices live on
// the members so a choice always stays with the slot it was made in.
type NewTeam struct {
	TeamID           string
	TeamName         string
	LeaderEmail      string
	RegistrationType string
	AmountPaid       int
	Members          []Member
	Events           []string
	CreatedAt        time.Time
}

// TeamSummary is one dashboard row.
type TeamSummary struct {
	Team
	Events    []string `json:"team_events"`
	Workshops []string `json:"workshops"`
	Summary   string   `json:"events"`
	Members   []Member `json:"members"`
}

type Dashboard struct {
	Teams    []TeamSummary `json:"teams"`
	Approved int           `json:"total_paid"`
	Pending  int           `json:"pending_count"`
}

// Approval carries everything the confirmation message needs.
type Approval struct {
	Team      Team
	Members   []Member
	Events    []string
	Workshops []string
}
