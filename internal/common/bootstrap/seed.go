package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	trainingdomain "github.com/AlibekovAA/gym-api/internal/training/domain"
	userdomain "github.com/AlibekovAA/gym-api/internal/user/domain"
)

type seedUser struct {
	username string
	password string
	role     userdomain.Role
}

var seedUsers = []seedUser{
	{username: "user1", password: "password1", role: userdomain.RoleUser},
	{username: "trainer1", password: "password2", role: userdomain.RoleTrainer},
	{username: "admin1", password: "password3", role: userdomain.RoleAdmin},
}

const seedCenterID = "1"

// Seed loads demo accounts and one scheduled session. Users that already
// exist are kept; the sample training and availability are only added to
// empty collections, so running it twice changes nothing.
func (a *App) Seed(ctx context.Context) error {
	ids := make(map[string]string, len(seedUsers))
	for _, su := range seedUsers {
		id, err := a.seedUser(ctx, su)
		if err != nil {
			return err
		}
		ids[su.username] = id
	}

	trainerID, userID := ids["trainer1"], ids["user1"]

	trainings, err := a.TrainingRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list trainings: %w", err)
	}
	if len(trainings) == 0 {
		id, err := a.IDs.NewID()
		if err != nil {
			return fmt.Errorf("failed to generate training id: %w", err)
		}
		start := a.Clock.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
		t := trainingdomain.Training{
			ID:        id,
			TrainerID: trainerID,
			UserID:    userID,
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Status:    "scheduled",
		}
		if err := a.TrainingRepo.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to seed training: %w", err)
		}
	}

	availabilities, err := a.AvailabilityRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list availabilities: %w", err)
	}
	if len(availabilities) == 0 {
		id, err := a.IDs.NewID()
		if err != nil {
			return fmt.Errorf("failed to generate availability id: %w", err)
		}
		day := a.Clock.Now().UTC().Add(24 * time.Hour).Truncate(24 * time.Hour)
		av := trainingdomain.Availability{
			ID:             id,
			TrainerID:      trainerID,
			CenterID:       seedCenterID,
			AvailableTimes: []time.Time{day.Add(9 * time.Hour), day.Add(14 * time.Hour)},
		}
		if err := a.AvailabilityRepo.Create(ctx, av); err != nil {
			return fmt.Errorf("failed to seed availability: %w", err)
		}
	}

	a.Log.WithFields(ctx, logger.Fields{
		"users":  len(seedUsers),
		"action": "seed_completed",
	}).Info("demo data loaded")
	return nil
}

func (a *App) seedUser(ctx context.Context, su seedUser) (string, error) {
	existing, err := a.UserRepo.FindByUsername(ctx, su.username)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, commonerrors.ErrNotFound) {
		return "", fmt.Errorf("failed to look up %s: %w", su.username, err)
	}

	hash, err := a.Hasher.Hash(su.password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password for %s: %w", su.username, err)
	}
	id, err := a.IDs.NewID()
	if err != nil {
		return "", fmt.Errorf("failed to generate user id: %w", err)
	}

	u := userdomain.User{
		ID:           id,
		Username:     su.username,
		Email:        su.username + "@example.com",
		PasswordHash: hash,
		Roles:        []userdomain.Role{su.role},
	}
	if err := a.UserRepo.Create(ctx, u); err != nil {
		return "", fmt.Errorf("failed to seed %s: %w", su.username, err)
	}
	return id, nil
}
