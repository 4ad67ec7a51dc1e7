package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/trading-wallet/internal/auth"
	"github.com/baharkarakas/trading-wallet/internal/models"
	repo "github.com/baharkarakas/trading-wallet/internal/repository"
)

type UserService struct {
	r   repo.Users
	tm  *auth.TokenManager
	log *slog.Logger
}

func NewUserService(r repo.Users, tm *auth.TokenManager, log *slog.Logger) *UserService {
	return &UserService{r: r, tm: tm, log: log}
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

func (s *UserService) Register(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, invalid("Username and password are required.")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.r.Create(ctx, username, hash, models.StartingBalance)
	if errors.Is(err, repo.ErrDuplicate) {
		return models.User{}, ErrUsernameTaken
	}
	if err != nil {
		s.log.Error("register failed", slog.String("username", username), slog.Any("err", err))
		return models.User{}, err
	}
	s.log.Info("user registered", slog.String("username", u.Username), slog.String("user_id", u.ID))
	return u, nil
}

// Login returns ErrInvalidCredentials for both an unknown username and a
// wrong password.
func (s *UserService) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, invalid("Username and password are required.")
	}
	u, err := s.r.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		auth.BurnCompare(password)
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		s.log.Warn("login rejected", slog.String("username", username))
		return Session{}, ErrInvalidCredentials
	}
	tok, exp, err := s.tm.Generate(u.ID, u.Username)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, ExpiresAt: exp, User: u}, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (models.User, error) {
	u, err := s.r.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}
