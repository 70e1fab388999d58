package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUserName = errors.New("a user with this user_name already exists")
	ErrUnknownUser       = errors.New("unknown user_name")
	ErrWrongPassword     = errors.New("wrong password")
	ErrInactive          = errors.New("inactive user")
)

type User struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"user_name"`
	FullName  *string   `json:"full_name"`
	Email     *string   `json:"email"`
	Password  string    `json:"-"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is the sign-up payload; Password is the plain text secret.
type CreateRequest struct {
	UserName string  `json:"user_name"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Password string  `json:"password"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ValidationError reports a missing required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}
