package repository

import (
	"context"
	"fmt"

	"github.com/AlibekovAA/gym-api/internal/common/docstore"
	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/user/domain"
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Replace(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id string) error
}

type DocRepository struct {
	coll docstore.Collection
}

func NewDocRepository(coll docstore.Collection) *DocRepository {
	return &DocRepository{coll: coll}
}

func (r *DocRepository) Create(ctx context.Context, user domain.User) error {
	if err := r.coll.Create(ctx, user.ID, user); err != nil {
		return fmt.Errorf("failed to create user: %w", docstore.MapError(err))
	}
	return nil
}

func (r *DocRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	if err := r.coll.Get(ctx, id, &user); err != nil {
		return domain.User{}, fmt.Errorf("failed to find user by id: %w", docstore.MapError(err))
	}
	return user, nil
}

// FindByUsername matches the username exactly, case included.
func (r *DocRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var users []domain.User
	if err := r.coll.Find(ctx, docstore.Filter{"username": username}, &users); err != nil {
		return domain.User{}, fmt.Errorf("failed to find user by username: %w", docstore.MapError(err))
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, commonerrors.ErrNotFound
}

func (r *DocRepository) List(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	if err := r.coll.Find(ctx, nil, &users); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", docstore.MapError(err))
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (r *DocRepository) Replace(ctx context.Context, user domain.User) error {
	if err := r.coll.Replace(ctx, user.ID, user); err != nil {
		return fmt.Errorf("failed to update user: %w", docstore.MapError(err))
	}
	return nil
}

func (r *DocRepository) Delete(ctx context.Context, id string) error {
	if err := r.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", docstore.MapError(err))
	}
	return nil
}
