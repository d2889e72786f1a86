package http

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlibekovAA/gym-api/internal/auth/service"
	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	commonhttp "github.com/AlibekovAA/gym-api/internal/common/http"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Handler struct {
	auth *service.AuthService
	errs *commonhttp.ErrorHandler
	log  *logger.Logger
}

func NewHandler(auth *service.AuthService, errs *commonhttp.ErrorHandler, log *logger.Logger) *Handler {
	return &Handler{auth: auth, errs: errs, log: log}
}

func (h *Handler) Mount(r chi.Router) {
	r.Post("/token", h.token)
}

// token implements the OAuth2 password grant: a form post carrying username
// and password. JSON bodies with the same fields are accepted too.
func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	req, err := parseLogin(r)
	if err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "login_bad_request",
		}).Warnf("login failed: %v", err)
		h.errs.HandleError(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   int64(result.ExpiresIn.Seconds()),
	})
}

func parseLogin(r *http.Request) (loginRequest, error) {
	var req loginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
			return loginRequest{}, err
		}
		return req, nil
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			if errors.Is(err, commonerrors.ErrRequestTooLarge) {
				return loginRequest{}, commonerrors.ErrRequestTooLarge
			}
			return loginRequest{}, commonerrors.ErrValidation.WithDetails(map[string]any{"body": "malformed form"})
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		if grant := r.PostForm.Get("grant_type"); grant != "" && grant != "password" {
			return loginRequest{}, commonerrors.ErrValidation.WithDetails(map[string]any{"grant_type": "must be password"})
		}
		if err := commonhttp.ValidateStruct(req); err != nil {
			return loginRequest{}, err
		}
		return req, nil
	default:
		return loginRequest{}, commonerrors.ErrValidation.WithDetails(map[string]any{
			"content_type": "must be application/x-www-form-urlencoded or application/json",
		})
	}
}
