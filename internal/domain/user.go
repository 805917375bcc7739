package domain

import (
	"errors"
	"fmt"
	"time"
)

// User is someone who owns accounts
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrExpiredToken       = fmt.Errorf("token has expired: %w", ErrUnauthorized)
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
)
