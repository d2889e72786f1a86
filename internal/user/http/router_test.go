package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	commoncrypto "github.com/AlibekovAA/gym-api/internal/common/crypto"
	"github.com/AlibekovAA/gym-api/internal/common/docstore"
	commonhttp "github.com/AlibekovAA/gym-api/internal/common/http"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/user/domain"
	"github.com/AlibekovAA/gym-api/internal/user/repository"
	"github.com/AlibekovAA/gym-api/internal/user/service"
)

func newRouter(t *testing.T, caller *guard.Identity) http.Handler {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "test", "info")
	store := docstore.NewMemoryStore()
	_ = store.EnsureCollections(context.Background(), []docstore.CollectionSpec{{Name: "users", UniqueFields: []string{"username"}}})

	svc := service.NewUserService(
		repository.NewDocRepository(store.Collection("users")),
		commoncrypto.NewBcryptHasher(bcrypt.MinCost),
		commoncrypto.NewUUIDGenerator(),
		guard.New(nil, nil, log),
		log,
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if caller != nil {
				req = req.WithContext(guard.WithIdentity(req.Context(), *caller))
			}
			next.ServeHTTP(w, req)
		})
	})
	NewHandler(svc, commonhttp.NewErrorHandler(log), log).Mount(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUserRoutes_AdminLifecycle(t *testing.T) {
	admin := guard.Identity{ID: "admin-id", Roles: []domain.Role{domain.RoleAdmin}}
	router := newRouter(t, &admin)

	rec := do(t, router, http.MethodPost, "/users", `{"username":"user1","email":"u1@example.com","password":"password1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	_ = json.NewDecoder(rec.Body).Decode(&created)
	if _, leaked := created["hashed_password"]; leaked {
		t.Fatal("password hash leaked in response")
	}
	id, _ := created["id"].(string)

	rec = do(t, router, http.MethodPut, "/users/"+id, `{"email":"new@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/users", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var listed []map[string]any
	_ = json.NewDecoder(rec.Body).Decode(&listed)
	if len(listed) != 1 || listed[0]["email"] != "new@example.com" {
		t.Errorf("unexpected list %v", listed)
	}

	if rec = do(t, router, http.MethodDelete, "/users/"+id, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if rec = do(t, router, http.MethodGet, "/users/"+id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestUserRoutes_Errors(t *testing.T) {
	plain := guard.Identity{ID: "u-1", Roles: []domain.Role{domain.RoleUser}}
	admin := guard.Identity{ID: "admin-id", Roles: []domain.Role{domain.RoleAdmin}}
	wide := strings.Repeat("é", 40)

	cases := []struct {
		name   string
		caller *guard.Identity
		method string
		path   string
		body   string
		want   int
	}{
		{"no identity", nil, http.MethodGet, "/users", "", http.StatusUnauthorized},
		{"non-admin create", &plain, http.MethodPost, "/users", `{"username":"abc","password":"password1"}`, http.StatusForbidden},
		{"non-admin list", &plain, http.MethodGet, "/users", "", http.StatusForbidden},
		{"read other user", &plain, http.MethodGet, "/users/u-2", "", http.StatusForbidden},
		{"unknown field", &plain, http.MethodPut, "/users/u-1", `{"nickname":"x"}`, http.StatusBadRequest},
		{"short password", &plain, http.MethodPut, "/users/u-1", `{"password":"short"}`, http.StatusBadRequest},
		{"self role change", &plain, http.MethodPut, "/users/u-1", `{"roles":["admin"]}`, http.StatusForbidden},
		{"multibyte password over 72 bytes", &admin, http.MethodPost, "/users", `{"username":"carla","password":"` + wide + `"}`, http.StatusBadRequest},
		{"multibyte password update over 72 bytes", &plain, http.MethodPut, "/users/u-1", `{"password":"` + wide + `"}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, newRouter(t, tc.caller), tc.method, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}
