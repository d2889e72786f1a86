package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/gym-api/internal/common/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports 503 when the store cannot be reached.
func HealthHandler(store Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.WithFields(r.Context(), logger.Fields{
				"action": "health_check",
				"error":  err.Error(),
			}).Warn("store ping failed")
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": "unavailable"})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": "ok"})
	}
}

func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Gym Management API"})
}
