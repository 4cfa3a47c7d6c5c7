// Package services – UserService
//
// This file implements the UserService: registration and credential
// lookup. Credential lookup returns an explicit "absent" value instead of
// leaning on a not-found error for control flow, and a wrong password is
// indistinguishable from an unknown email to the caller.
package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/crapp/go-restroom-backend/internal/domain"
	"github.com/crapp/go-restroom-backend/internal/repo"
)

// UserService implements registration and credential verification.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Register creates a new account. The email is lowercased and must not
// already resolve to a user (ErrEmailTaken); the password is stored as a
// bcrypt hash only. Accounts are never deleted once created.
func (s *UserService) Register(ctx context.Context, fullName, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, found, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return repo.CreateUser(ctx, s.DB, strings.TrimSpace(fullName), email, string(hash))
}

// FindByCredentials resolves (email, password) to a user. The boolean
// reports presence: an unknown email and a wrong password both return
// (nil, false, nil), so callers cannot probe for registered addresses.
// An error is returned only for storage failures.
func (s *UserService) FindByCredentials(ctx context.Context, email, password string) (*domain.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, found, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, false, nil
	}
	return u, true, nil
}
