package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	commonhttp "github.com/AlibekovAA/gym-api/internal/common/http"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/user/domain"
	"github.com/AlibekovAA/gym-api/internal/user/service"
)

type createUserRequest struct {
	Username string        `json:"username" validate:"required,min=3,max=32"`
	Email    string        `json:"email" validate:"omitempty,email"`
	Password string        `json:"password" validate:"required,min=8,maxbytes=72"`
	Roles    []domain.Role `json:"roles" validate:"omitempty,dive,oneof=user trainer admin"`
}

type updateUserRequest struct {
	Username *string       `json:"username" validate:"omitempty,min=3,max=32"`
	Email    *string       `json:"email" validate:"omitempty,email"`
	Password *string       `json:"password" validate:"omitempty,min=8,maxbytes=72"`
	Roles    []domain.Role `json:"roles" validate:"omitempty,dive,oneof=user trainer admin"`
}

type Handler struct {
	users *service.UserService
	errs  *commonhttp.ErrorHandler
	log   *logger.Logger
}

func NewHandler(users *service.UserService, errs *commonhttp.ErrorHandler, log *logger.Logger) *Handler {
	return &Handler{users: users, errs: errs, log: log}
}

// Mount registers the user routes. The router is expected to run the guard
// middleware already.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	var req createUserRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	profile, err := h.users.Create(r.Context(), caller, service.CreateInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, profile)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	profiles, err := h.users.List(r.Context(), caller)
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, profiles)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	profile, err := h.users.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	profile, err := h.users.Update(r.Context(), caller, chi.URLParam(r, "id"), service.UpdateInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	if err := h.users.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
