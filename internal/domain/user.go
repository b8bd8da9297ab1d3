// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUserIDEmpty     = errors.New("user id empty")
	ErrUserIDTooLong   = errors.New("user id too long")
)

type UserID string

// User is the identity announced by a client. It never changes for the
// lifetime of a voice or presence session.
type User struct {
	ID        UserID `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
// An empty id gets a fresh uuid.
func NewUser(id UserID, username, avatarURL string) (*User, error) {
	if id == "" {
		id = UserID(uuid.NewString())
	}
	if len(id) > MaxUserIDLen {
		return nil, ErrUserIDTooLong
	}
	u := &User{ID: id, AvatarURL: avatarURL}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.Username = username
	return nil
}

// Validate checks the identity fields a signaling payload must carry.
func (u User) Validate() error {
	if u.ID == "" {
		return ErrUserIDEmpty
	}
	if len(u.ID) > MaxUserIDLen {
		return ErrUserIDTooLong
	}
	if len(u.Username) == 0 {
		return ErrUsernameEmpty
	}
	if len(u.Username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
