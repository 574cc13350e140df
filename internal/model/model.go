// Package model defines the core domain types for the ticket registration
// system.
package model

import "time"

// PoolKey identifies one of the two seat-capacity buckets.
type PoolKey string

const (
	PoolEarlyBird PoolKey = "early_bird"
	PoolGeneral   PoolKey = "general"
)

// Status of a registration. Created as pending; an admin moves it to
// confirmed or rejected.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// Pass is a purchasable ticket tier.
type Pass struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Price        int       `json:"price"`
	TotalSeats   int       `json:"total_seats"` // 0 = untracked
	MaxPeople    int       `json:"max_people"`
	IsEarlyBird  bool      `json:"is_early_bird"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Pool returns the seat pool this pass draws from.
func (p *Pass) Pool() PoolKey {
	if p.IsEarlyBird {
		return PoolEarlyBird
	}
	return PoolGeneral
}

// PassSummary is a pass with its registration count, for the admin list.
type PassSummary struct {
	Pass
	Registrations int `json:"registrations"`
}

// SeatPool is the aggregate seat counter for one pool.
type SeatPool struct {
	Key        PoolKey   `json:"key"`
	TotalSeats int       `json:"total_seats"`
	UsedSeats  int       `json:"used_seats"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Available returns the number of unreserved seats.
func (p *SeatPool) Available() int {
	return p.TotalSeats - p.UsedSeats
}

// Registration is one purchase transaction covering 1..N attendees.
type Registration struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	PassID          int64     `json:"pass_id"`
	AdditionalNames []string  `json:"additional_names"`
	WantsUpdates    bool      `json:"wants_updates"`
	ReceiptURL      *string   `json:"receipt_url"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// Attendees is the number of people this registration covers.
func (r *Registration) Attendees() int {
	return 1 + len(r.AdditionalNames)
}

// CreateRegistrationRequest is the public registration payload.
type CreateRegistrationRequest struct {
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	PassID          int64    `json:"ticketId"`
	AdditionalNames []string `json:"additionalNames"`
	WantsUpdates    bool     `json:"wantsUpdates"`
}

// PassInput is the admin payload for creating or updating a pass.
type PassInput struct {
	Title        string `json:"title"`
	Price        int    `json:"price"`
	TotalSeats   int    `json:"total_seats"`
	MaxPeople    int    `json:"max_people"`
	IsEarlyBird  bool   `json:"is_early_bird"`
	IsActive     bool   `json:"is_active"`
	DisplayOrder int    `json:"display_order"`
}

// SMTPSettings is the typed form of the smtp_settings config blob. Incomplete
// settings short-circuit outbound mail to a no-op.
type SMTPSettings struct {
	Host      string `json:"host"`
	Port      uint16 `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FromName  string `json:"fromName"`
	FromEmail string `json:"fromEmail"`
}

// Complete reports whether enough is configured to attempt a send.
func (s *SMTPSettings) Complete() bool {
	return s != nil && s.Host != "" && s.Username != "" && s.Password != ""
}

// From returns the sender address, falling back to the SMTP username.
func (s *SMTPSettings) From() string {
	if s.FromEmail != "" {
		return s.FromEmail
	}
	return s.Username
}

// ErrorResponse is the standard JSON failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
