// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"regexp"
	"time"
)

const (
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrEmailInvalid    = errors.New("invalid email format")
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

type UserID string

type User struct {
	ID             UserID     `json:"_id" gorm:"primaryKey;size:24"`
	Username       string     `json:"username" gorm:"uniqueIndex;not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash   string     `json:"-" gorm:"column:password;not null"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
// The password hash is set by the auth layer, never here.
func NewUser(username, email string) (*User, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	if !emailRe.MatchString(email) {
		return nil, ErrEmailInvalid
	}
	return &User{
		ID:        UserID(NewObjectID()),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now(),
	}, nil
}
