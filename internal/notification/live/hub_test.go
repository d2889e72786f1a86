package live

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	commonhttp "github.com/AlibekovAA/gym-api/internal/common/http"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/notification/domain"
)

func newFeedServer(t *testing.T, hub *Hub, userID string) *httptest.Server {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "test", "info")
	h := NewHandler(hub, commonhttp.NewErrorHandler(log), log)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID != "" {
			r = r.WithContext(guard.WithIdentity(r.Context(), guard.Identity{ID: userID}))
		}
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *gorillaWS.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gorillaWS.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Connections(userID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections for %s, got %d", want, userID, hub.Connections(userID))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_PublishReachesRecipientOnly(t *testing.T) {
	hub := NewHub(logger.NewWithWriter(io.Discard, "test", "info"))
	recipient := dial(t, newFeedServer(t, hub, "u-1"))
	other := dial(t, newFeedServer(t, hub, "u-2"))
	waitForConnections(t, hub, "u-1", 1)
	waitForConnections(t, hub, "u-2", 1)

	hub.Publish(domain.Notification{ID: "n-1", UserID: "u-1", Message: "class moved"})

	_ = recipient.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := recipient.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != TypeNotification || msg.Payload.ID != "n-1" || msg.Payload.Message != "class moved" {
		t.Errorf("unexpected message %+v", msg)
	}

	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("notification leaked to another user")
	}
}

func TestHub_ClientCloseUnregisters(t *testing.T) {
	hub := NewHub(logger.NewWithWriter(io.Discard, "test", "info"))
	conn := dial(t, newFeedServer(t, hub, "u-1"))
	waitForConnections(t, hub, "u-1", 1)

	_ = conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
	conn.Close()

	waitForConnections(t, hub, "u-1", 0)
}

func TestHub_ShutdownClosesAndRefuses(t *testing.T) {
	hub := NewHub(logger.NewWithWriter(io.Discard, "test", "info"))
	srv := newFeedServer(t, hub, "u-1")
	conn := dial(t, srv)
	waitForConnections(t, hub, "u-1", 1)

	if err := hub.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if hub.Connections("u-1") != 0 {
		t.Fatal("expected no connections after shutdown")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !gorillaWS.IsCloseError(err, gorillaWS.CloseGoingAway) {
		t.Errorf("expected going-away close, got %v", err)
	}

	late := dial(t, srv)
	_ = late.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("expected late connection to be closed")
	}
	if hub.Connections("u-1") != 0 {
		t.Error("late connection was registered")
	}
}

func TestHandler_RequiresIdentity(t *testing.T) {
	hub := NewHub(logger.NewWithWriter(io.Discard, "test", "info"))
	srv := newFeedServer(t, hub, "")

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}
