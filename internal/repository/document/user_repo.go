// Package document implements the entity repositories on top of the single
// shared document held by store.Store.
package document

import (
	"context"
	"gamesense/app/internal/domain"
	"gamesense/app/internal/repository"
	"gamesense/app/internal/store"
)

type documentUserRepository struct {
	store *store.Store
}

// NewUserRepository returns a UserRepository backed by the "users" map.
func NewUserRepository(s *store.Store) repository.UserRepository {
	return &documentUserRepository{store: s}
}

// Create adds an account under email. Existing emails give ErrDuplicate.
func (r *documentUserRepository) Create(ctx context.Context, email string, account domain.Account) error {
	return r.store.Update(ctx, func(doc *domain.Document) error {
		if _, exists := doc.Users[email]; exists {
			return repository.ErrDuplicate
		}
		acc := account
		if acc.Membership == "" {
			acc.Membership = domain.MembershipFree
		}
		if acc.CreatedAt.IsZero() {
			acc.CreatedAt = domain.Now()
		}
		doc.Users[email] = &acc
		return nil
	})
}

// GetByEmail returns a copy of the account.
func (r *documentUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	r.store.View(func(doc *domain.Document) {
		acc, ok := doc.Users[email]
		if !ok {
			return
		}
		user = &domain.User{Email: email, Account: *acc}
	})
	if user == nil {
		return nil, repository.ErrNotFound
	}
	if user.Membership == "" {
		user.Membership = domain.MembershipFree
	}
	return user, nil
}

// Update replaces the stored account with user.Account.
func (r *documentUserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.store.Update(ctx, func(doc *domain.Document) error {
		if _, ok := doc.Users[user.Email]; !ok {
			return repository.ErrNotFound
		}
		acc := user.Account
		doc.Users[user.Email] = &acc
		return nil
	})
}

func (r *documentUserRepository) Delete(ctx context.Context, email string) error {
	return r.store.Update(ctx, func(doc *domain.Document) error {
		if _, ok := doc.Users[email]; !ok {
			return repository.ErrNotFound
		}
		delete(doc.Users, email)
		return nil
	})
}
