package domain

import "time"

// UserStatus represents lifecycle states for an outlet customer account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for outlet customers who submit requests. The
// outlet location and address recorded here are inherited by tickets at
// creation time.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	OutletName   string
	Address      string
	Location     Location
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
