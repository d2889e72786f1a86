package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	"github.com/AlibekovAA/gym-api/internal/common/clock"
	"github.com/AlibekovAA/gym-api/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/gym-api/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/training/domain"
	"github.com/AlibekovAA/gym-api/internal/training/repository"
)

type Authorizer interface {
	Authorize(id guard.Identity, op guard.Operation, res guard.Resource) error
}

type TrainingService struct {
	trainings      repository.TrainingRepository
	availabilities repository.AvailabilityRepository
	ids            commoncrypto.IDGenerator
	authz          Authorizer
	clock          clock.Clock
	lockWindow     time.Duration
	log            *logger.Logger
}

func NewTrainingService(
	trainings repository.TrainingRepository,
	availabilities repository.AvailabilityRepository,
	ids commoncrypto.IDGenerator,
	authz Authorizer,
	clk clock.Clock,
	log *logger.Logger,
) *TrainingService {
	return &TrainingService{
		trainings:      trainings,
		availabilities: availabilities,
		ids:            ids,
		authz:          authz,
		clock:          clk,
		lockWindow:     constants.TrainingLockWindow,
		log:            log,
	}
}

type TrainingInput struct {
	TrainerID string
	UserID    string
	StartTime time.Time
	EndTime   time.Time
	Status    string
}

type TrainingPatch struct {
	TrainerID *string
	UserID    *string
	StartTime *time.Time
	EndTime   *time.Time
	Status    *string
}

type AvailabilityInput struct {
	TrainerID      string
	CenterID       string
	AvailableTimes []time.Time
}

// AvailabilityPatch replaces AvailableTimes when it is non-nil.
type AvailabilityPatch struct {
	TrainerID      *string
	CenterID       *string
	AvailableTimes []time.Time
}

func (s *TrainingService) CreateTraining(ctx context.Context, caller guard.Identity, input TrainingInput) (domain.Training, error) {
	if err := s.authz.Authorize(caller, guard.OpTrainingCreate, guard.Resource{}); err != nil {
		return domain.Training{}, err
	}

	t := domain.Training{
		TrainerID: input.TrainerID,
		UserID:    input.UserID,
		StartTime: input.StartTime.UTC(),
		EndTime:   input.EndTime.UTC(),
		Status:    input.Status,
	}
	if err := t.Validate(); err != nil {
		return domain.Training{}, err
	}

	id, err := s.newID()
	if err != nil {
		return domain.Training{}, err
	}
	t.ID = id

	if err := s.trainings.Create(ctx, t); err != nil {
		return domain.Training{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"training_id": t.ID,
		"trainer_id":  t.TrainerID,
		"user_id":     t.UserID,
		"by":          caller.ID,
		"action":      "training_created",
	}).Info("training created")
	return t, nil
}

func (s *TrainingService) ListTrainings(ctx context.Context, caller guard.Identity) ([]domain.Training, error) {
	if err := s.authz.Authorize(caller, guard.OpTrainingRead, guard.Resource{}); err != nil {
		return nil, err
	}
	return s.trainings.List(ctx)
}

func (s *TrainingService) GetTraining(ctx context.Context, caller guard.Identity, id string) (domain.Training, error) {
	if err := s.authz.Authorize(caller, guard.OpTrainingRead, guard.Resource{}); err != nil {
		return domain.Training{}, err
	}
	return s.trainings.FindByID(ctx, id)
}

// UpdateTraining merges patch into the stored session. Sessions starting
// within the lock window cannot be changed by anyone.
func (s *TrainingService) UpdateTraining(ctx context.Context, caller guard.Identity, id string, patch TrainingPatch) (domain.Training, error) {
	if err := s.authz.Authorize(caller, guard.OpTrainingUpdate, guard.Resource{}); err != nil {
		return domain.Training{}, err
	}

	t, err := s.trainings.FindByID(ctx, id)
	if err != nil {
		return domain.Training{}, err
	}

	if t.LockedAt(s.clock.Now(), s.lockWindow) {
		s.log.WithFields(ctx, logger.Fields{
			"training_id": t.ID,
			"start_time":  t.StartTime.Format(time.RFC3339),
			"by":          caller.ID,
			"action":      "training_update_locked",
		}).Warn("training update rejected: inside lock window")
		return domain.Training{}, commonerrors.ErrLockedWindow
	}

	if patch.TrainerID != nil {
		t.TrainerID = *patch.TrainerID
	}
	if patch.UserID != nil {
		t.UserID = *patch.UserID
	}
	if patch.StartTime != nil {
		t.StartTime = patch.StartTime.UTC()
	}
	if patch.EndTime != nil {
		t.EndTime = patch.EndTime.UTC()
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if err := t.Validate(); err != nil {
		return domain.Training{}, err
	}

	if err := s.trainings.Replace(ctx, t); err != nil {
		return domain.Training{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"training_id": t.ID,
		"by":          caller.ID,
		"action":      "training_updated",
	}).Info("training updated")
	return t, nil
}

func (s *TrainingService) DeleteTraining(ctx context.Context, caller guard.Identity, id string) error {
	if err := s.authz.Authorize(caller, guard.OpTrainingDelete, guard.Resource{}); err != nil {
		return err
	}
	if err := s.trainings.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"training_id": id,
		"by":          caller.ID,
		"action":      "training_deleted",
	}).Info("training deleted")
	return nil
}

func (s *TrainingService) CreateAvailability(ctx context.Context, caller guard.Identity, input AvailabilityInput) (domain.Availability, error) {
	if err := s.authz.Authorize(caller, guard.OpAvailabilityCreate, guard.Resource{}); err != nil {
		return domain.Availability{}, err
	}

	id, err := s.newID()
	if err != nil {
		return domain.Availability{}, err
	}

	a := domain.Availability{
		ID:             id,
		TrainerID:      input.TrainerID,
		CenterID:       input.CenterID,
		AvailableTimes: normalizeTimes(input.AvailableTimes),
	}
	if err := s.availabilities.Create(ctx, a); err != nil {
		return domain.Availability{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"availability_id": a.ID,
		"trainer_id":      a.TrainerID,
		"by":              caller.ID,
		"action":          "availability_created",
	}).Info("availability created")
	return a, nil
}

func (s *TrainingService) ListAvailabilities(ctx context.Context, caller guard.Identity) ([]domain.Availability, error) {
	if err := s.authz.Authorize(caller, guard.OpAvailabilityRead, guard.Resource{}); err != nil {
		return nil, err
	}
	return s.availabilities.List(ctx)
}

func (s *TrainingService) GetAvailability(ctx context.Context, caller guard.Identity, id string) (domain.Availability, error) {
	if err := s.authz.Authorize(caller, guard.OpAvailabilityRead, guard.Resource{}); err != nil {
		return domain.Availability{}, err
	}
	return s.availabilities.FindByID(ctx, id)
}

func (s *TrainingService) UpdateAvailability(ctx context.Context, caller guard.Identity, id string, patch AvailabilityPatch) (domain.Availability, error) {
	if err := s.authz.Authorize(caller, guard.OpAvailabilityUpdate, guard.Resource{}); err != nil {
		return domain.Availability{}, err
	}

	a, err := s.availabilities.FindByID(ctx, id)
	if err != nil {
		return domain.Availability{}, err
	}

	if patch.TrainerID != nil {
		a.TrainerID = *patch.TrainerID
	}
	if patch.CenterID != nil {
		a.CenterID = *patch.CenterID
	}
	if patch.AvailableTimes != nil {
		a.AvailableTimes = normalizeTimes(patch.AvailableTimes)
	}

	if err := s.availabilities.Replace(ctx, a); err != nil {
		return domain.Availability{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"availability_id": a.ID,
		"by":              caller.ID,
		"action":          "availability_updated",
	}).Info("availability updated")
	return a, nil
}

func (s *TrainingService) DeleteAvailability(ctx context.Context, caller guard.Identity, id string) error {
	if err := s.authz.Authorize(caller, guard.OpAvailabilityDelete, guard.Resource{}); err != nil {
		return err
	}
	if err := s.availabilities.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"availability_id": id,
		"by":              caller.ID,
		"action":          "availability_deleted",
	}).Info("availability deleted")
	return nil
}

func (s *TrainingService) newID() (string, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return "", commonerrors.ErrInternalError.WithCause(fmt.Errorf("generate id: %w", err))
	}
	return id, nil
}

// normalizeTimes converts to UTC and keeps the caller's order.
func normalizeTimes(times []time.Time) []time.Time {
	out := make([]time.Time, len(times))
	for i, t := range times {
		out[i] = t.UTC()
	}
	return out
}
