package domain

import (
	"time"

	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
)

type Training struct {
	ID        string    `json:"id" bson:"_id"`
	TrainerID string    `json:"trainer_id" bson:"trainer_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	StartTime time.Time `json:"start_time" bson:"start_time"`
	EndTime   time.Time `json:"end_time" bson:"end_time"`
	Status    string    `json:"status" bson:"status"`
}

func (t Training) Validate() error {
	if !t.StartTime.Before(t.EndTime) {
		return commonerrors.ErrValidation.WithDetails(map[string]any{
			"end_time": "must be after start_time",
		})
	}
	return nil
}

// LockedAt reports whether the session starts within window of now. Sessions
// already in the past are locked too.
func (t Training) LockedAt(now time.Time, window time.Duration) bool {
	return t.StartTime.Sub(now) < window
}

type Availability struct {
	ID             string      `json:"id" bson:"_id"`
	TrainerID      string      `json:"trainer_id" bson:"trainer_id"`
	CenterID       string      `json:"center_id" bson:"center_id"`
	AvailableTimes []time.Time `json:"available_times" bson:"available_times"`
}
