// Package services contains server-side business logic. This file implements
// UserService, which verifies admin credentials, issues session tokens and
// bootstraps the first admin account.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/logging"
	"github.com/dmitrijs2005/trophyshop/internal/server/auth"
	"github.com/dmitrijs2005/trophyshop/internal/server/config"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/repomanager"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  auth.Identity
}

type UserService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	jwtSecret        []byte
	validityDuration time.Duration
	logger           logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:               db,
		repomanager:      m,
		jwtSecret:        []byte(cfg.SecretKey),
		validityDuration: cfg.TokenValidityDuration,
		logger:           logger.With("module", "user_service"),
	}
}

// Login checks the password and issues a session token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, userName, password string) (*Session, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		s.logger.Error(ctx, "stored password hash unusable", "user", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	id := auth.Identity{UserID: user.ID, IsAdmin: user.IsAdmin}
	token, err := auth.GenerateToken(id, s.jwtSecret, s.validityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &Session{Token: token, ExpiresAt: time.Now().Add(s.validityDuration), Identity: id}, nil
}

// Authenticate verifies a session token.
func (s *UserService) Authenticate(token string) (*auth.Identity, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

func (s *UserService) TokenValidity() time.Duration { return s.validityDuration }

// EnsureAdmin creates the bootstrap admin when no user with that name
// exists. An empty password disables bootstrapping. created reports whether
// an account was added.
func (s *UserService) EnsureAdmin(ctx context.Context, userName, password string) (created bool, err error) {
	userName = strings.TrimSpace(userName)
	if userName == "" || password == "" {
		return false, nil
	}

	repo := s.repomanager.Users(s.db)
	_, err = repo.GetUserByLogin(ctx, userName)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, fmt.Errorf("error looking up admin: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("error hashing password: %w", err)
	}
	if _, err := repo.Create(ctx, &models.User{Username: userName, PasswordHash: hash, IsAdmin: true}); err != nil {
		return false, fmt.Errorf("error creating admin: %w", err)
	}
	s.logger.Info(ctx, "bootstrap admin created", "username", userName)
	return true, nil
}
