// Package docstore is a small document-store abstraction: named collections of
// JSON-shaped records keyed by a string id. Drivers exist for PostgreSQL
// (JSONB tables), MongoDB and an in-process map.
package docstore

import (
	"context"
	"errors"

	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
)

var (
	ErrNotFound    = errors.New("docstore: document not found")
	ErrConflict    = errors.New("docstore: unique constraint violated")
	ErrUnavailable = errors.New("docstore: store unavailable")
)

// Filter matches documents whose top-level fields equal the given values.
// Keys are the JSON field names of the stored record.
type Filter map[string]any

type Collection interface {
	Name() string
	Get(ctx context.Context, id string, out any) error
	Create(ctx context.Context, id string, doc any) error
	Replace(ctx context.Context, id string, doc any) error
	Delete(ctx context.Context, id string) error
	// Find decodes every matching document into out, which must point to a slice.
	Find(ctx context.Context, filter Filter, out any) error
}

type CollectionSpec struct {
	Name         string
	UniqueFields []string
}

type Store interface {
	Driver() string
	Collection(name string) Collection
	EnsureCollections(ctx context.Context, specs []CollectionSpec) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// MapError converts a driver error into the domain taxonomy. Anything that is
// not a missing document or a uniqueness violation is a store failure.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return commonerrors.ErrNotFound.WithCause(err)
	case errors.Is(err, ErrConflict):
		return commonerrors.ErrConflict.WithCause(err)
	case commonerrors.IsDomainError(err):
		return err
	default:
		return commonerrors.ErrStoreUnavailable.WithCause(err)
	}
}

func unavailable(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	return errors.Join(ErrUnavailable, err)
}
