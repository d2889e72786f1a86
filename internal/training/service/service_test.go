package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	"github.com/AlibekovAA/gym-api/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/gym-api/internal/common/crypto"
	"github.com/AlibekovAA/gym-api/internal/common/docstore"
	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/training/domain"
	"github.com/AlibekovAA/gym-api/internal/training/repository"
	userdomain "github.com/AlibekovAA/gym-api/internal/user/domain"
)

var (
	now     = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	trainer = guard.Identity{ID: "2", Username: "trainer1", Roles: []userdomain.Role{userdomain.RoleTrainer}}
	admin   = guard.Identity{ID: "3", Username: "admin1", Roles: []userdomain.Role{userdomain.RoleAdmin}}
	member  = guard.Identity{ID: "1", Username: "user1", Roles: []userdomain.Role{userdomain.RoleUser}}
)

type fixture struct {
	svc   *TrainingService
	clock *clock.MockClock
	repo  *repository.DocTrainingRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	log := logger.NewWithWriter(io.Discard, "test", "debug")
	clk := clock.NewMockClock(now)
	trainings := repository.NewDocTrainingRepository(store.Collection("trainings"))

	svc := NewTrainingService(
		trainings,
		repository.NewDocAvailabilityRepository(store.Collection("availabilities")),
		commoncrypto.NewUUIDGenerator(),
		guard.New(nil, nil, log),
		clk,
		log,
	)
	return fixture{svc: svc, clock: clk, repo: trainings}
}

func (f fixture) seed(t *testing.T, startIn time.Duration) domain.Training {
	t.Helper()
	training := domain.Training{
		ID:        "t-1",
		TrainerID: "2",
		UserID:    "1",
		StartTime: now.Add(startIn),
		EndTime:   now.Add(startIn + time.Hour),
		Status:    "scheduled",
	}
	if err := f.repo.Create(context.Background(), training); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return training
}

func TestTrainerCreatesButCannotDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateTraining(ctx, trainer, TrainingInput{
		TrainerID: "2",
		UserID:    "1",
		StartTime: now.Add(48 * time.Hour),
		EndTime:   now.Add(49 * time.Hour),
		Status:    "scheduled",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.ID == "1" {
		t.Errorf("expected generated id, got %q", created.ID)
	}
	if created.Status != "scheduled" {
		t.Errorf("expected submitted status, got %q", created.Status)
	}

	if err := f.svc.DeleteTraining(ctx, trainer, created.ID); !errors.Is(err, commonerrors.ErrForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
	if _, err := f.repo.FindByID(ctx, created.ID); err != nil {
		t.Errorf("training should survive a denied delete: %v", err)
	}
}

func TestCreateTraining_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTraining(ctx, member, TrainingInput{StartTime: now, EndTime: now.Add(time.Hour)})
	if !errors.Is(err, commonerrors.ErrForbidden) {
		t.Errorf("expected Forbidden for plain user, got %v", err)
	}

	_, err = f.svc.CreateTraining(ctx, trainer, TrainingInput{StartTime: now.Add(time.Hour), EndTime: now.Add(time.Hour)})
	if !errors.Is(err, commonerrors.ErrValidation) {
		t.Errorf("expected Validation for empty interval, got %v", err)
	}
}

func TestUpdateTraining_LockWindow(t *testing.T) {
	cases := []struct {
		name    string
		startIn time.Duration
		wantErr error
	}{
		{"23 hours out", 23 * time.Hour, commonerrors.ErrLockedWindow},
		{"exactly 24 hours out", 24 * time.Hour, nil},
		{"25 hours out", 25 * time.Hour, nil},
		{"already started", -time.Hour, commonerrors.ErrLockedWindow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, tc.startIn)

			status := "confirmed"
			_, err := f.svc.UpdateTraining(context.Background(), admin, "t-1", TrainingPatch{Status: &status})
			if tc.wantErr == nil && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUpdateTraining_LockIgnoresRole(t *testing.T) {
	f := newFixture(t)
	f.seed(t, time.Hour)

	status := "cancelled"
	for _, caller := range []guard.Identity{trainer, admin} {
		if _, err := f.svc.UpdateTraining(context.Background(), caller, "t-1", TrainingPatch{Status: &status}); !errors.Is(err, commonerrors.ErrLockedWindow) {
			t.Errorf("caller %s: expected LockedWindow, got %v", caller.Username, err)
		}
	}
}

func TestUpdateTraining_PartialMergeAndRevalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seeded := f.seed(t, 72*time.Hour)

	status := "confirmed"
	updated, err := f.svc.UpdateTraining(ctx, trainer, "t-1", TrainingPatch{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != "confirmed" || updated.UserID != seeded.UserID || !updated.StartTime.Equal(seeded.StartTime) {
		t.Errorf("unexpected merge result %+v", updated)
	}

	badEnd := seeded.StartTime.Add(-time.Minute)
	if _, err := f.svc.UpdateTraining(ctx, trainer, "t-1", TrainingPatch{EndTime: &badEnd}); !errors.Is(err, commonerrors.ErrValidation) {
		t.Fatalf("expected Validation after merge, got %v", err)
	}

	stored, _ := f.repo.FindByID(ctx, "t-1")
	if !stored.EndTime.Equal(seeded.EndTime) {
		t.Error("rejected update was persisted")
	}
}

func TestUpdateTraining_Errors(t *testing.T) {
	f := newFixture(t)
	status := "x"

	if _, err := f.svc.UpdateTraining(context.Background(), member, "t-1", TrainingPatch{Status: &status}); !errors.Is(err, commonerrors.ErrForbidden) {
		t.Errorf("expected Forbidden, got %v", err)
	}
	if _, err := f.svc.UpdateTraining(context.Background(), trainer, "missing", TrainingPatch{Status: &status}); !errors.Is(err, commonerrors.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestAvailability_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	times := []time.Time{now.Add(5 * time.Hour), now.Add(time.Hour), now.Add(3 * time.Hour)}
	created, err := f.svc.CreateAvailability(ctx, trainer, AvailabilityInput{TrainerID: "2", CenterID: "c-1", AvailableTimes: times})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := f.svc.GetAvailability(ctx, member, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i := range times {
		if !got.AvailableTimes[i].Equal(times[i]) {
			t.Fatalf("order not preserved: %v", got.AvailableTimes)
		}
	}

	center := "c-2"
	updated, err := f.svc.UpdateAvailability(ctx, trainer, created.ID, AvailabilityPatch{CenterID: &center})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CenterID != "c-2" || len(updated.AvailableTimes) != 3 {
		t.Errorf("unexpected merge result %+v", updated)
	}

	if err := f.svc.DeleteAvailability(ctx, trainer, created.ID); !errors.Is(err, commonerrors.ErrForbidden) {
		t.Errorf("expected Forbidden for trainer delete, got %v", err)
	}
	if err := f.svc.DeleteAvailability(ctx, admin, created.ID); err != nil {
		t.Errorf("admin delete: %v", err)
	}

	list, err := f.svc.ListAvailabilities(ctx, member)
	if err != nil || len(list) != 0 {
		t.Errorf("expected empty list, got %v %v", list, err)
	}
}
