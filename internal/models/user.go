package models

import (
	"time"
)

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string // empty for OAuth-provisioned users
	TC           bool   // terms and conditions accepted
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
