package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	commonhttp "github.com/AlibekovAA/gym-api/internal/common/http"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/training/service"
)

type createTrainingRequest struct {
	TrainerID string    `json:"trainer_id" validate:"required"`
	UserID    string    `json:"user_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Status    string    `json:"status" validate:"required,max=32"`
}

type updateTrainingRequest struct {
	TrainerID *string    `json:"trainer_id" validate:"omitempty,min=1"`
	UserID    *string    `json:"user_id" validate:"omitempty,min=1"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Status    *string    `json:"status" validate:"omitempty,min=1,max=32"`
}

type createAvailabilityRequest struct {
	TrainerID      string      `json:"trainer_id" validate:"required"`
	CenterID       string      `json:"center_id" validate:"required"`
	AvailableTimes []time.Time `json:"available_times" validate:"required"`
}

type updateAvailabilityRequest struct {
	TrainerID      *string     `json:"trainer_id" validate:"omitempty,min=1"`
	CenterID       *string     `json:"center_id" validate:"omitempty,min=1"`
	AvailableTimes []time.Time `json:"available_times"`
}

type Handler struct {
	trainings *service.TrainingService
	errs      *commonhttp.ErrorHandler
	log       *logger.Logger
}

func NewHandler(trainings *service.TrainingService, errs *commonhttp.ErrorHandler, log *logger.Logger) *Handler {
	return &Handler{trainings: trainings, errs: errs, log: log}
}

// Mount registers the training and availability routes; availability paths
// are static and win over the {id} pattern.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/trainings", func(r chi.Router) {
		r.Post("/", h.createTraining)
		r.Get("/", h.listTrainings)

		r.Route("/availability", func(r chi.Router) {
			r.Post("/", h.createAvailability)
			r.Get("/", h.listAvailabilities)
			r.Get("/{id}", h.getAvailability)
			r.Put("/{id}", h.updateAvailability)
			r.Delete("/{id}", h.deleteAvailability)
		})

		r.Get("/{id}", h.getTraining)
		r.Put("/{id}", h.updateTraining)
		r.Delete("/{id}", h.deleteTraining)
	})
}

func (h *Handler) createTraining(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	var req createTrainingRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	t, err := h.trainings.CreateTraining(r.Context(), caller, service.TrainingInput{
		TrainerID: req.TrainerID,
		UserID:    req.UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
	})
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) listTrainings(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	items, err := h.trainings.ListTrainings(r.Context(), caller)
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) getTraining(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	t, err := h.trainings.GetTraining(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) updateTraining(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	var req updateTrainingRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	t, err := h.trainings.UpdateTraining(r.Context(), caller, chi.URLParam(r, "id"), service.TrainingPatch{
		TrainerID: req.TrainerID,
		UserID:    req.UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
	})
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) deleteTraining(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	if err := h.trainings.DeleteTraining(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Training deleted"})
}

func (h *Handler) createAvailability(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	var req createAvailabilityRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	a, err := h.trainings.CreateAvailability(r.Context(), caller, service.AvailabilityInput{
		TrainerID:      req.TrainerID,
		CenterID:       req.CenterID,
		AvailableTimes: req.AvailableTimes,
	})
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) listAvailabilities(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	items, err := h.trainings.ListAvailabilities(r.Context(), caller)
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) getAvailability(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	a, err := h.trainings.GetAvailability(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) updateAvailability(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	var req updateAvailabilityRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	a, err := h.trainings.UpdateAvailability(r.Context(), caller, chi.URLParam(r, "id"), service.AvailabilityPatch{
		TrainerID:      req.TrainerID,
		CenterID:       req.CenterID,
		AvailableTimes: req.AvailableTimes,
	})
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) deleteAvailability(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	if err := h.trainings.DeleteAvailability(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Availability deleted"})
}
