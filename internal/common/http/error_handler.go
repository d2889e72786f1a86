package http

import (
	"net/http"
	"strconv"

	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/common/httpmetrics"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

// HandleError renders err as the JSON error envelope. Errors outside the
// domain taxonomy are logged and reported as INTERNAL_ERROR without leaking
// their text.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	domainErr, ok := commonerrors.AsDomainError(err)
	if !ok {
		h.log.WithFields(r.Context(), logger.Fields{
			"error":  err.Error(),
			"action": "unhandled_error",
			"route":  httpmetrics.Route(r),
		}).Error("unhandled error")
		domainErr = commonerrors.ErrInternalError.WithCause(err)
	}

	status := domainErr.HTTPStatus()
	fields := logger.Fields{
		"error_code": domainErr.Code(),
		"category":   string(domainErr.Category()),
		"status":     status,
		"action":     "domain_error",
	}

	if status >= http.StatusInternalServerError {
		h.log.WithFields(r.Context(), fields).Errorf("request failed: %v", domainErr)
	} else if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(r.Context(), fields).Debugf("request rejected: %v", domainErr)
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(domainErr.Category()),
		domainErr.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.Route(r),
		r.Method,
	).Inc()

	code := domainErr.Code()
	// Token failures share one public code so clients cannot tell which check failed.
	if code == commonerrors.ErrInvalidToken.Code() {
		code = commonerrors.ErrUnauthenticated.Code()
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	WriteErrorEnvelope(w, status, code, domainErr.Message(), domainErr.Details(), TraceIDFromContext(r.Context()))
}
