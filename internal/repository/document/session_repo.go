package document

import (
	"context"
	"errors"
	"gamesense/app/internal/domain"
	"gamesense/app/internal/repository"
	"gamesense/app/internal/store"
	"slices"
)

type documentSessionRepository struct {
	store *store.Store
}

// NewSessionRepository returns a SessionRepository backed by the "sessions" list.
func NewSessionRepository(s *store.Store) repository.SessionRepository {
	return &documentSessionRepository{store: s}
}

// Create appends the session. ID must be set by the caller.
func (r *documentSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}
	return r.store.Update(ctx, func(doc *domain.Document) error {
		for i := range doc.Sessions {
			if doc.Sessions[i].ID == session.ID {
				return repository.ErrDuplicate
			}
		}
		doc.Sessions = append(doc.Sessions, cloneSession(*session))
		return nil
	})
}

func (r *documentSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var found *domain.Session
	r.store.View(func(doc *domain.Document) {
		for i := range doc.Sessions {
			if doc.Sessions[i].ID == id {
				s := cloneSession(doc.Sessions[i])
				found = &s
				return
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

// ListByUser returns the user's sessions in stored (oldest first) order.
func (r *documentSessionRepository) ListByUser(ctx context.Context, email string) ([]domain.Session, error) {
	sessions := []domain.Session{}
	r.store.View(func(doc *domain.Document) {
		for _, s := range doc.Sessions {
			if s.User == email {
				sessions = append(sessions, cloneSession(s))
			}
		}
	})
	return sessions, nil
}

func (r *documentSessionRepository) Delete(ctx context.Context, id string) error {
	return r.store.Update(ctx, func(doc *domain.Document) error {
		idx := slices.IndexFunc(doc.Sessions, func(s domain.Session) bool { return s.ID == id })
		if idx < 0 {
			return repository.ErrNotFound
		}
		doc.Sessions = slices.Delete(doc.Sessions, idx, idx+1)
		return nil
	})
}

// DeleteByUser removes every session owned by email and reports how many went.
// Nothing is persisted when the user had no sessions.
func (r *documentSessionRepository) DeleteByUser(ctx context.Context, email string) (int, error) {
	removed := 0
	err := r.store.Update(ctx, func(doc *domain.Document) error {
		before := len(doc.Sessions)
		doc.Sessions = slices.DeleteFunc(doc.Sessions, func(s domain.Session) bool { return s.User == email })
		removed = before - len(doc.Sessions)
		if removed == 0 {
			return errNothingRemoved
		}
		return nil
	})
	if errors.Is(err, errNothingRemoved) {
		return 0, nil
	}
	return removed, err
}

var errNothingRemoved = errors.New("no sessions removed")

func cloneSession(s domain.Session) domain.Session {
	s.Highlights = slices.Clone(s.Highlights)
	if s.Highlights == nil {
		s.Highlights = []string{}
	}
	return s
}
