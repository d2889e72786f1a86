package docstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
)

type record struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Kind     string `json:"kind"`
}

func newMemory(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	err := s.EnsureCollections(context.Background(), []CollectionSpec{{Name: "users", UniqueFields: []string{"username"}}})
	if err != nil {
		t.Fatalf("ensure collections: %v", err)
	}
	return s
}

func TestMemoryCollection_CRUD(t *testing.T) {
	ctx := context.Background()
	c := newMemory(t).Collection("users")

	if err := c.Create(ctx, "a", record{ID: "a", Username: "user1", Kind: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	var got record
	if err := c.Get(ctx, "a", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Username != "user1" {
		t.Errorf("expected user1, got %s", got.Username)
	}

	got.Kind = "y"
	if err := c.Replace(ctx, "a", got); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := c.Get(ctx, "a", &got); err != nil || got.Kind != "y" {
		t.Errorf("expected replaced document, got %+v (%v)", got, err)
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Get(ctx, "a", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryCollection_MissingDocuments(t *testing.T) {
	ctx := context.Background()
	c := newMemory(t).Collection("users")

	if err := c.Replace(ctx, "nope", record{ID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("replace: expected ErrNotFound, got %v", err)
	}
	if err := c.Delete(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryCollection_UniqueField(t *testing.T) {
	ctx := context.Background()
	c := newMemory(t).Collection("users")

	_ = c.Create(ctx, "a", record{ID: "a", Username: "user1"})
	if err := c.Create(ctx, "b", record{ID: "b", Username: "user1"}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict on duplicate username, got %v", err)
	}

	_ = c.Create(ctx, "c", record{ID: "c", Username: "user3"})
	if err := c.Replace(ctx, "c", record{ID: "c", Username: "user1"}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict on rename to taken username, got %v", err)
	}
	if err := c.Replace(ctx, "a", record{ID: "a", Username: "user1", Kind: "z"}); err != nil {
		t.Errorf("expected self replace to succeed, got %v", err)
	}
}

func TestMemoryCollection_FindFiltersAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c := newMemory(t).Collection("users")

	_ = c.Create(ctx, "1", record{ID: "1", Username: "a", Kind: "user"})
	_ = c.Create(ctx, "2", record{ID: "2", Username: "b", Kind: "trainer"})
	_ = c.Create(ctx, "3", record{ID: "3", Username: "c", Kind: "user"})

	var users []record
	if err := c.Find(ctx, Filter{"kind": "user"}, &users); err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(users) != 2 || users[0].ID != "1" || users[1].ID != "3" {
		t.Errorf("unexpected find result %+v", users)
	}

	var all []record
	if err := c.Find(ctx, nil, &all); err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 documents, got %d", len(all))
	}
}

func TestMemoryCollection_StoredCopyIsIsolated(t *testing.T) {
	ctx := context.Background()
	c := newMemory(t).Collection("users")

	r := record{ID: "a", Username: "user1"}
	_ = c.Create(ctx, "a", r)
	r.Username = "mutated"

	var got record
	_ = c.Get(ctx, "a", &got)
	if got.Username != "user1" {
		t.Errorf("expected stored copy to be unaffected, got %s", got.Username)
	}
}

type failingStore struct {
	*MemoryStore
	err   error
	calls int
}

func (s *failingStore) Driver() string { return "failing" }

func (s *failingStore) Collection(name string) Collection {
	return &failingCollection{Collection: s.MemoryStore.Collection(name), store: s}
}

type failingCollection struct {
	Collection
	store *failingStore
}

func (c *failingCollection) Get(context.Context, string, any) error {
	c.store.calls++
	return c.store.err
}

func TestGuarded_OpensAfterRepeatedFailuresWithoutRetry(t *testing.T) {
	inner := &failingStore{MemoryStore: NewMemoryStore(), err: unavailable(errors.New("connection refused"))}
	g := NewGuarded(inner, logger.NewWithWriter(&strings.Builder{}, "test", "error"))
	c := g.Collection("users")
	ctx := context.Background()

	var out record
	for i := 0; i < 5; i++ {
		if err := c.Get(ctx, "x", &out); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d: expected ErrUnavailable, got %v", i, err)
		}
	}
	if inner.calls != 5 {
		t.Fatalf("expected exactly one driver call per operation, got %d", inner.calls)
	}

	err := c.Get(ctx, "x", &out)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from open breaker, got %v", err)
	}
	if inner.calls != 5 {
		t.Errorf("expected open breaker to short-circuit, driver called %d times", inner.calls)
	}
	if !errors.Is(MapError(err), commonerrors.ErrStoreUnavailable) {
		t.Errorf("expected StoreUnavailable after mapping, got %v", MapError(err))
	}
}

func TestGuarded_NotFoundDoesNotTrip(t *testing.T) {
	inner := &failingStore{MemoryStore: NewMemoryStore(), err: ErrNotFound}
	g := NewGuarded(inner, logger.NewWithWriter(&strings.Builder{}, "test", "error"))
	c := g.Collection("users")

	var out record
	for i := 0; i < 20; i++ {
		_ = c.Get(context.Background(), "x", &out)
	}
	if inner.calls != 20 {
		t.Errorf("expected every call to reach the driver, got %d", inner.calls)
	}
}

func TestGuarded_CallerCancellationDoesNotTrip(t *testing.T) {
	g := NewGuarded(newMemory(t), logger.NewWithWriter(&strings.Builder{}, "test", "error"))
	c := g.Collection("users")
	if err := c.Create(context.Background(), "1", record{ID: "1", Username: "ada"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, stop := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer stop()

	var out record
	for i := 0; i < 10; i++ {
		ctx := cancelled
		if i%2 == 1 {
			ctx = expired
		}
		if err := c.Get(ctx, "1", &out); err == nil {
			t.Fatalf("call %d: expected an error for a finished context", i)
		}
	}

	if err := c.Get(context.Background(), "1", &out); err != nil {
		t.Fatalf("expected healthy store to keep serving, got %v", err)
	}
	if out.Username != "ada" {
		t.Errorf("expected ada, got %q", out.Username)
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		in   error
		want error
	}{
		{ErrNotFound, commonerrors.ErrNotFound},
		{errors.Join(ErrConflict, errors.New("23505")), commonerrors.ErrConflict},
		{unavailable(context.DeadlineExceeded), commonerrors.ErrStoreUnavailable},
		{errors.New("socket closed"), commonerrors.ErrStoreUnavailable},
	}
	for _, tc := range cases {
		if got := MapError(tc.in); !errors.Is(got, tc.want) {
			t.Errorf("MapError(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if MapError(nil) != nil {
		t.Error("expected nil for nil")
	}
}
