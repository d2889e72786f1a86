package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	"github.com/AlibekovAA/gym-api/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/gym-api/internal/common/crypto"
	"github.com/AlibekovAA/gym-api/internal/common/docstore"
	commonhttp "github.com/AlibekovAA/gym-api/internal/common/http"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/training/domain"
	"github.com/AlibekovAA/gym-api/internal/training/repository"
	"github.com/AlibekovAA/gym-api/internal/training/service"
	userdomain "github.com/AlibekovAA/gym-api/internal/user/domain"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newRouter(t *testing.T, caller guard.Identity) (http.Handler, *repository.DocTrainingRepository) {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "test", "info")
	store := docstore.NewMemoryStore()
	trainings := repository.NewDocTrainingRepository(store.Collection("trainings"))

	svc := service.NewTrainingService(
		trainings,
		repository.NewDocAvailabilityRepository(store.Collection("availabilities")),
		commoncrypto.NewUUIDGenerator(),
		guard.New(nil, nil, log),
		clock.NewMockClock(now),
		log,
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(guard.WithIdentity(req.Context(), caller)))
		})
	})
	NewHandler(svc, commonhttp.NewErrorHandler(log), log).Mount(r)
	return r, trainings
}

func send(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTrainingRoutes_CreateAndDeleteAsTrainer(t *testing.T) {
	trainer := guard.Identity{ID: "2", Roles: []userdomain.Role{userdomain.RoleTrainer}}
	router, _ := newRouter(t, trainer)

	body := `{"trainer_id":"2","user_id":"1","start_time":"2026-03-05T10:00:00Z","end_time":"2026-03-05T11:00:00Z","status":"scheduled"}`
	rec := send(router, http.MethodPost, "/trainings", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created domain.Training
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Status != "scheduled" {
		t.Errorf("unexpected training %+v", created)
	}

	if rec := send(router, http.MethodDelete, "/trainings/"+created.ID, ""); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestTrainingRoutes_LockedWindowIs422(t *testing.T) {
	admin := guard.Identity{ID: "3", Roles: []userdomain.Role{userdomain.RoleAdmin}}
	router, repo := newRouter(t, admin)

	_ = repo.Create(context.Background(), domain.Training{
		ID:        "t-1",
		StartTime: now.Add(23 * time.Hour),
		EndTime:   now.Add(24 * time.Hour),
		Status:    "scheduled",
	})

	rec := send(router, http.MethodPut, "/trainings/t-1", `{"status":"moved"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var env commonhttp.ErrorEnvelope
	_ = json.NewDecoder(rec.Body).Decode(&env)
	if env.Code != "LOCKED_WINDOW" {
		t.Errorf("expected LOCKED_WINDOW, got %q", env.Code)
	}
}

func TestTrainingRoutes_Validation(t *testing.T) {
	trainer := guard.Identity{ID: "2", Roles: []userdomain.Role{userdomain.RoleTrainer}}
	router, _ := newRouter(t, trainer)

	body := `{"trainer_id":"2","user_id":"1","start_time":"2026-03-05T11:00:00Z","end_time":"2026-03-05T10:00:00Z","status":"scheduled"}`
	if rec := send(router, http.MethodPost, "/trainings", body); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for inverted interval, got %d", rec.Code)
	}
	if rec := send(router, http.MethodPost, "/trainings", `{"trainer_id":"2"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing fields, got %d", rec.Code)
	}
}

func TestAvailabilityRoutes_StaticPathWinsOverID(t *testing.T) {
	trainer := guard.Identity{ID: "2", Roles: []userdomain.Role{userdomain.RoleTrainer}}
	router, _ := newRouter(t, trainer)

	body := `{"trainer_id":"2","center_id":"c-1","available_times":["2026-03-05T10:00:00Z","2026-03-04T10:00:00Z"]}`
	rec := send(router, http.MethodPost, "/trainings/availability", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = send(router, http.MethodGet, "/trainings/availability", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []domain.Availability
	_ = json.NewDecoder(rec.Body).Decode(&items)
	if len(items) != 1 || !items[0].AvailableTimes[0].After(items[0].AvailableTimes[1]) {
		t.Errorf("unexpected availabilities %+v", items)
	}
}
