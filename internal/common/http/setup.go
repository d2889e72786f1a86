package http

import (
	"net/http"

	"github.com/AlibekovAA/gym-api/internal/common/constants"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
)

// BuildBaseHandler wraps the router with the process-wide middleware that
// must run before routing.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(TraceIDMiddleware(recovery(maxRequestSize(handler))))
}
