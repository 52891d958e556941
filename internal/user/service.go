// Package user registers Telegram users and tracks whether they have seen
// the welcome message.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/repository"
	"github.com/Proton-105/lovemenu-bot/internal/usercache"
)

var ErrNotFound = errors.New("user: not found")

// Service provides business operations over users.
type Service struct {
	repo  repository.UserRepository
	cache *usercache.Cache
	log   *slog.Logger
}

// NewService constructs a new Service instance. cache may be nil.
func NewService(repo repository.UserRepository, cache *usercache.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// GetOrCreate fetches a user by telegram ID or registers a first-time user.
// Username and first name changes are written back.
func (s *Service) GetOrCreate(ctx context.Context, telegramUser *telebot.User) (*domain.User, error) {
	if telegramUser == nil {
		return nil, errors.New("telegram user is nil")
	}

	if cached, err := s.cache.Get(ctx, telegramUser.ID); err != nil {
		s.logError("get_or_create.cache", telegramUser.ID, err)
	} else if cached != nil && sameProfile(cached, telegramUser) {
		return cached, nil
	}

	user, err := s.repo.FindByID(ctx, telegramUser.ID)
	switch {
	case err == nil:
		if !sameProfile(user, telegramUser) {
			user.Username = telegramUser.Username
			user.FirstName = telegramUser.FirstName
			if err := s.repo.UpdateProfile(ctx, user); err != nil {
				s.logError("get_or_create.update", telegramUser.ID, err)
				return nil, fmt.Errorf("update user: %w", err)
			}
		}
	case errors.Is(err, sql.ErrNoRows):
		user = &domain.User{
			UserID:      telegramUser.ID,
			Username:    telegramUser.Username,
			FirstName:   telegramUser.FirstName,
			IsFirstTime: true,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			s.logError("get_or_create.create", telegramUser.ID, err)
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.log.Info("user registered", slog.Int64("user_id", user.UserID), slog.String("username", user.Username))
	default:
		s.logError("get_or_create.find", telegramUser.ID, err)
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.cache.Set(ctx, user); err != nil {
		s.logError("get_or_create.cache_set", user.UserID, err)
	}

	return user, nil
}

// MarkReturning clears the first-time flag. It never goes back to true.
func (s *Service) MarkReturning(ctx context.Context, userID int64) error {
	if err := s.repo.MarkReturning(ctx, userID); err != nil {
		s.logError("mark_returning", userID, err)
		return err
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logError("mark_returning.cache", userID, err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return user, err
}

// All returns every known user; it is the special menu audience.
func (s *Service) All(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logError("list", 0, err)
		return nil, err
	}
	return users, nil
}

func sameProfile(u *domain.User, tg *telebot.User) bool {
	return u.Username == tg.Username && u.FirstName == tg.FirstName
}

func (s *Service) logError(operation string, userID int64, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}

	s.log.Error("user service operation failed",
		slog.String("operation", operation),
		slog.Int64("user_id", userID),
		slog.Any("error", err),
	)
}
