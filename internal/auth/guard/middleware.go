package guard

import (
	"context"
	"net/http"
	"strings"

	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	commonhttp "github.com/AlibekovAA/gym-api/internal/common/http"
)

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Caller returns the identity the guard middleware attached to ctx, or
// Unauthenticated when the request never went through it.
func Caller(ctx context.Context) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, commonerrors.ErrUnauthenticated
	}
	return id, nil
}

// Middleware requires a valid bearer token and stores the resolved identity in
// the request context. allowQueryToken additionally accepts ?access_token=
// for clients such as browsers opening a websocket, which cannot set headers.
func (g *Guard) Middleware(errs *commonhttp.ErrorHandler, allowQueryToken bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" && allowQueryToken {
				token = r.URL.Query().Get("access_token")
			}
			if token == "" {
				errs.HandleError(w, r, commonerrors.ErrUnauthenticated)
				return
			}

			id, err := g.Authenticate(r.Context(), token)
			if err != nil {
				errs.HandleError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
