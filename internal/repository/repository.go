package repository

import (
	"context"
	"gamesense/app/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("revision conflict")
	ErrDuplicate    = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// DocumentStore is a whole-document store with compare-and-swap on an opaque
// revision token.
type DocumentStore interface {
	// Get returns the document content and its current revision, or ErrNotFound.
	Get(ctx context.Context, path string) (content []byte, revision string, err error)

	// Put replaces the document at path if its revision still equals
	// expectedRevision and returns the new revision. An empty expectedRevision
	// creates the document. On mismatch it returns ErrConflict and the caller
	// has to Get a fresh revision before trying again.
	Put(ctx context.Context, path string, content []byte, expectedRevision, message string) (newRevision string, err error)
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, email string, account domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, email string) error
}

// SessionRepository defines the interface for interacting with session records.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByUser(ctx context.Context, email string) ([]domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, email string) (int, error)
}
