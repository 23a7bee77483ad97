package models

import (
	"strings"
	"time"
)

// Participant is a member of the mission team.
type Participant struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name"`
	Email       string    `json:"email" validate:"required"`
	PrimaryRole string    `json:"primaryRole,omitempty"`
	IsAdmin     bool      `json:"isAdmin,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NormalizeEmail returns the lookup key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasEmail compares emails case-insensitively.
func (p Participant) HasEmail(email string) bool {
	return NormalizeEmail(p.Email) == NormalizeEmail(email)
}
