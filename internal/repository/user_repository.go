package repository

import (
	"context"
	"strings"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id string, mutate func(*domain.User) error) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Count() int
}

type userRepository struct {
	users *Collection[domain.User]
}

// NewUserRepository loads the users collection from backend.
func NewUserRepository(ctx context.Context, backend persistence.Backend) (UserRepository, error) {
	users, err := LoadCollection[domain.User](ctx, backend, persistence.CollectionUsers)
	if err != nil {
		return nil, err
	}
	return &userRepository{users: users}, nil
}

// Create inserts user, rejecting a duplicate email with ErrConflict.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	email := strings.ToLower(user.Email)
	return r.users.InsertUnless(ctx, *user, func(existing domain.User) bool {
		return strings.ToLower(existing.Email) == email
	})
}

func (r *userRepository) Update(ctx context.Context, id string, mutate func(*domain.User) error) (*domain.User, error) {
	user, err := r.users.Update(ctx, id, mutate)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, err := r.users.Get(id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := r.users.Find(func(u domain.User) bool { return strings.ToLower(u.Email) == email })
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(context.Context) ([]domain.User, error) {
	return r.users.List(), nil
}

func (r *userRepository) Count() int {
	return r.users.Len()
}
