package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nuvie/records/internal/platform/auth"
)

type Service struct {
	users       Repository
	tokens      *auth.TokenIssuer
	revocations auth.RevocationStore
}

func NewService(users Repository, tokens *auth.TokenIssuer, revocations auth.RevocationStore) *Service {
	return &Service{users: users, tokens: tokens, revocations: revocations}
}

func (s *Service) CreateUser(ctx context.Context, req CreateRequest) (*User, error) {
	name := strings.TrimSpace(req.UserName)
	if name == "" {
		return nil, &ValidationError{Field: "user_name"}
	}
	if req.Password == "" {
		return nil, &ValidationError{Field: "password"}
	}

	_, err := s.users.GetByUserName(ctx, name)
	switch {
	case err == nil:
		return nil, ErrDuplicateUserName
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("check user_name: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		UserName: name,
		FullName: req.FullName,
		Email:    req.Email,
		Password: hash,
		IsActive: true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// SubjectExists resolves a token subject to a stored user.
func (s *Service) SubjectExists(ctx context.Context, subject string) (bool, error) {
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return false, nil
	}
	_, err = s.users.GetByID(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, userName, password string) (*Token, error) {
	u, err := s.users.GetByUserName(ctx, strings.TrimSpace(userName))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, ErrWrongPassword
	}
	if !u.IsActive {
		return nil, ErrInactive
	}

	signed, _, err := s.tokens.Issue(strconv.FormatInt(u.ID, 10))
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: signed, TokenType: "bearer"}, nil
}

// Logout revokes the token described by claims until it expires.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || s.revocations == nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
