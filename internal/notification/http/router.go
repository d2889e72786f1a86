package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	commonhttp "github.com/AlibekovAA/gym-api/internal/common/http"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/notification/domain"
	"github.com/AlibekovAA/gym-api/internal/notification/service"
)

type createNotificationRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required,max=2000"`
	Read    bool   `json:"read"`
}

type updateNotificationRequest struct {
	Read *bool `json:"read"`
}

type createFunc func(context.Context, guard.Identity, service.CreateInput) (domain.Notification, error)

type Handler struct {
	notifications *service.NotificationService
	errs          *commonhttp.ErrorHandler
	log           *logger.Logger
}

func NewHandler(notifications *service.NotificationService, errs *commonhttp.ErrorHandler, log *logger.Logger) *Handler {
	return &Handler{notifications: notifications, errs: errs, log: log}
}

func (h *Handler) Mount(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Post("/", h.create(h.notifications.Create))
		r.Get("/", h.list)
		r.Post("/send_to_trainer", h.create(h.notifications.SendToTrainer))
		r.Post("/send_to_user", h.create(h.notifications.SendToUser))
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) create(send createFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := guard.Caller(r.Context())
		if err != nil {
			h.errs.HandleError(w, r, err)
			return
		}

		var req createNotificationRequest
		if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
			h.errs.HandleError(w, r, err)
			return
		}

		n, err := send(r.Context(), caller, service.CreateInput{
			UserID:  req.UserID,
			Message: req.Message,
			Read:    req.Read,
		})
		if err != nil {
			h.errs.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusCreated, n)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	items, err := h.notifications.List(r.Context(), caller)
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	n, err := h.notifications.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	var req updateNotificationRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	n, err := h.notifications.Update(r.Context(), caller, chi.URLParam(r, "id"), service.Patch{Read: req.Read})
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	if err := h.notifications.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}
