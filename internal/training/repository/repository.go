package repository

import (
	"context"
	"fmt"

	"github.com/AlibekovAA/gym-api/internal/common/docstore"
	"github.com/AlibekovAA/gym-api/internal/training/domain"
)

type TrainingRepository interface {
	Create(ctx context.Context, t domain.Training) error
	FindByID(ctx context.Context, id string) (domain.Training, error)
	List(ctx context.Context) ([]domain.Training, error)
	Replace(ctx context.Context, t domain.Training) error
	Delete(ctx context.Context, id string) error
}

type AvailabilityRepository interface {
	Create(ctx context.Context, a domain.Availability) error
	FindByID(ctx context.Context, id string) (domain.Availability, error)
	List(ctx context.Context) ([]domain.Availability, error)
	Replace(ctx context.Context, a domain.Availability) error
	Delete(ctx context.Context, id string) error
}

type DocTrainingRepository struct {
	coll docstore.Collection
}

func NewDocTrainingRepository(coll docstore.Collection) *DocTrainingRepository {
	return &DocTrainingRepository{coll: coll}
}

func (r *DocTrainingRepository) Create(ctx context.Context, t domain.Training) error {
	if err := r.coll.Create(ctx, t.ID, t); err != nil {
		return fmt.Errorf("failed to create training: %w", docstore.MapError(err))
	}
	return nil
}

func (r *DocTrainingRepository) FindByID(ctx context.Context, id string) (domain.Training, error) {
	var t domain.Training
	if err := r.coll.Get(ctx, id, &t); err != nil {
		return domain.Training{}, fmt.Errorf("failed to find training: %w", docstore.MapError(err))
	}
	return t, nil
}

func (r *DocTrainingRepository) List(ctx context.Context) ([]domain.Training, error) {
	trainings := make([]domain.Training, 0)
	if err := r.coll.Find(ctx, nil, &trainings); err != nil {
		return nil, fmt.Errorf("failed to list trainings: %w", docstore.MapError(err))
	}
	if trainings == nil {
		trainings = []domain.Training{}
	}
	return trainings, nil
}

func (r *DocTrainingRepository) Replace(ctx context.Context, t domain.Training) error {
	if err := r.coll.Replace(ctx, t.ID, t); err != nil {
		return fmt.Errorf("failed to update training: %w", docstore.MapError(err))
	}
	return nil
}

func (r *DocTrainingRepository) Delete(ctx context.Context, id string) error {
	if err := r.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete training: %w", docstore.MapError(err))
	}
	return nil
}

type DocAvailabilityRepository struct {
	coll docstore.Collection
}

func NewDocAvailabilityRepository(coll docstore.Collection) *DocAvailabilityRepository {
	return &DocAvailabilityRepository{coll: coll}
}

func (r *DocAvailabilityRepository) Create(ctx context.Context, a domain.Availability) error {
	if err := r.coll.Create(ctx, a.ID, a); err != nil {
		return fmt.Errorf("failed to create availability: %w", docstore.MapError(err))
	}
	return nil
}

func (r *DocAvailabilityRepository) FindByID(ctx context.Context, id string) (domain.Availability, error) {
	var a domain.Availability
	if err := r.coll.Get(ctx, id, &a); err != nil {
		return domain.Availability{}, fmt.Errorf("failed to find availability: %w", docstore.MapError(err))
	}
	return a, nil
}

func (r *DocAvailabilityRepository) List(ctx context.Context) ([]domain.Availability, error) {
	items := make([]domain.Availability, 0)
	if err := r.coll.Find(ctx, nil, &items); err != nil {
		return nil, fmt.Errorf("failed to list availabilities: %w", docstore.MapError(err))
	}
	if items == nil {
		items = []domain.Availability{}
	}
	return items, nil
}

func (r *DocAvailabilityRepository) Replace(ctx context.Context, a domain.Availability) error {
	if err := r.coll.Replace(ctx, a.ID, a); err != nil {
		return fmt.Errorf("failed to update availability: %w", docstore.MapError(err))
	}
	return nil
}

func (r *DocAvailabilityRepository) Delete(ctx context.Context, id string) error {
	if err := r.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete availability: %w", docstore.MapError(err))
	}
	return nil
}
