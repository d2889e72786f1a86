package repository

import (
	"context"
	"fmt"

	"github.com/AlibekovAA/gym-api/internal/common/docstore"
	"github.com/AlibekovAA/gym-api/internal/notification/domain"
)

type Repository interface {
	Create(ctx context.Context, n domain.Notification) error
	FindByID(ctx context.Context, id string) (domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	Replace(ctx context.Context, n domain.Notification) error
	Delete(ctx context.Context, id string) error
}

type DocRepository struct {
	coll docstore.Collection
}

func NewDocRepository(coll docstore.Collection) *DocRepository {
	return &DocRepository{coll: coll}
}

func (r *DocRepository) Create(ctx context.Context, n domain.Notification) error {
	if err := r.coll.Create(ctx, n.ID, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", docstore.MapError(err))
	}
	return nil
}

func (r *DocRepository) FindByID(ctx context.Context, id string) (domain.Notification, error) {
	var n domain.Notification
	if err := r.coll.Get(ctx, id, &n); err != nil {
		return domain.Notification{}, fmt.Errorf("failed to find notification: %w", docstore.MapError(err))
	}
	return n, nil
}

// ListByUser returns the recipient's notifications in insertion order.
func (r *DocRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	items := make([]domain.Notification, 0)
	if err := r.coll.Find(ctx, docstore.Filter{"user_id": userID}, &items); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", docstore.MapError(err))
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return items, nil
}

func (r *DocRepository) Replace(ctx context.Context, n domain.Notification) error {
	if err := r.coll.Replace(ctx, n.ID, n); err != nil {
		return fmt.Errorf("failed to update notification: %w", docstore.MapError(err))
	}
	return nil
}

func (r *DocRepository) Delete(ctx context.Context, id string) error {
	if err := r.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", docstore.MapError(err))
	}
	return nil
}
