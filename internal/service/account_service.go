package service

import (
	"context"
	"errors"
	"log"

	"gamesense/app/internal/domain"
	"gamesense/app/internal/repository"
	"gamesense/app/internal/storage"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUnknownMembership = errors.New("unknown membership tier")
)

// AccountService manages the account of the logged-in player.
type AccountService interface {
	Get(ctx context.Context, email string) (*domain.User, error)
	// Delete removes the account and every session it owns and reports how
	// many sessions went with it.
	Delete(ctx context.Context, email string) (int, error)
	SetMembership(ctx context.Context, email, tier string) (*domain.User, error)
	Tiers() []domain.Tier
}

type accountService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	fileStorage storage.FileStorage
}

// NewAccountService creates a new instance of accountService.
func NewAccountService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	fileStorage storage.FileStorage,
) AccountService {
	return &accountService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		fileStorage: fileStorage,
	}
}

// Get returns the account without its credentials.
func (s *accountService) Get(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	user.Password = ""
	return user, nil
}

// Delete removes the account, every session it owns and the stored clips.
// It returns the number of sessions removed. Clip removal is best effort.
func (s *accountService) Delete(ctx context.Context, email string) (int, error) {
	if _, err := s.Get(ctx, email); err != nil {
		return 0, err
	}

	sessions, err := s.sessionRepo.ListByUser(ctx, email)
	if err != nil {
		return 0, err
	}
	removed, err := s.sessionRepo.DeleteByUser(ctx, email)
	if err != nil {
		return 0, err
	}
	if err := s.userRepo.Delete(ctx, email); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return removed, err
	}
	for i := range sessions {
		removeVideo(ctx, s.fileStorage, &sessions[i])
	}
	log.Printf("INFO: deleted account %s with %d sessions", email, removed)
	return removed, nil
}

// SetMembership switches the display tier. Nothing else changes with it.
func (s *accountService) SetMembership(ctx context.Context, email, tier string) (*domain.User, error) {
	membership, ok := domain.ParseMembership(tier)
	if !ok {
		return nil, ErrUnknownMembership
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Membership = membership
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	user.Password = ""
	return user, nil
}

func (s *accountService) Tiers() []domain.Tier {
	return domain.Tiers
}
