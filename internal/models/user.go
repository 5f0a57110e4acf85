package models

import (
	"time"
)

// Role is the closed set of authorization roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Status is the closed set of account states. BLOCKED and REJECTED gate
// session issuance; PENDING_ADMIN_APPROVAL marks a deferred role elevation.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusBlocked  Status = "BLOCKED"
	StatusPending  Status = "PENDING_ADMIN_APPROVAL"
	StatusRejected Status = "REJECTED"
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusBlocked, StatusPending, StatusRejected:
		return true
	}
	return false
}

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string // never serialized; excluded from all response DTOs
	Role         Role
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
