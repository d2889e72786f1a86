package live

import (
	"net/http"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	"github.com/AlibekovAA/gym-api/internal/common/constants"
	commonhttp "github.com/AlibekovAA/gym-api/internal/common/http"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
)

type Handler struct {
	hub      *Hub
	errs     *commonhttp.ErrorHandler
	upgrader gorillaWS.Upgrader
	log      *logger.Logger
}

func NewHandler(hub *Hub, errs *commonhttp.ErrorHandler, log *logger.Logger) *Handler {
	return &Handler{
		hub:  hub,
		errs: errs,
		log:  log,
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  constants.WebSocketReadBufferSize,
			WriteBufferSize: constants.WebSocketWriteBufferSize,
			CheckOrigin:     sameOrigin,
		},
	}
}

// ServeHTTP upgrades an authenticated request into a notification feed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	caller, err := guard.Caller(r.Context())
	if err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"user_id": caller.ID,
			"action":  "ws_upgrade_failed",
		}).Warnf("websocket upgrade failed: %v", err)
		return
	}

	client := newClient(h.hub, conn, caller.ID, h.log)
	if !h.hub.register(client) {
		_ = conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	client.start()
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	return origin == "http://"+host || origin == "https://"+host
}
