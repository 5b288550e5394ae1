package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

type User struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Phone          string     `json:"phone"`
	PhoneVerified  bool       `json:"phone_verified"`
	IsOwner        bool       `json:"is_owner"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	ReferralCode   string     `json:"referral_code"`
	TrialStartedAt *time.Time `json:"trial_started_at,omitempty"`
	TrialEndsAt    *time.Time `json:"trial_ends_at,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Organization struct {
	ID           uuid.UUID `json:"id"`
	INN          string    `json:"inn"`
	KPP          string    `json:"kpp,omitempty"`
	OGRN         string    `json:"ogrn,omitempty"`
	NameShort    string    `json:"name_short"`
	NameFull     string    `json:"name_full,omitempty"`
	Type         string    `json:"type"` // LEGAL or INDIVIDUAL
	DirectorName string    `json:"director_name,omitempty"`
	Address      string    `json:"address,omitempty"`
	OKVED        string    `json:"okved,omitempty"`
	Slug         string    `json:"slug"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
