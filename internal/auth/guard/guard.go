package guard

import (
	"context"
	"errors"

	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/gym-api/internal/user/domain"
)

// Identity is the authenticated caller as resolved from the store.
type Identity struct {
	ID       string
	Username string
	Email    string
	Roles    []userdomain.Role
}

func (i Identity) HasRole(role userdomain.Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func IdentityFromUser(u userdomain.User) Identity {
	roles := make([]userdomain.Role, len(u.Roles))
	copy(roles, u.Roles)
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email, Roles: roles}
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type IdentityLookup interface {
	FindByUsername(ctx context.Context, username string) (userdomain.User, error)
}

type Guard struct {
	tokens TokenVerifier
	users  IdentityLookup
	policy map[Operation]Rule
	log    *logger.Logger
}

func New(tokens TokenVerifier, users IdentityLookup, log *logger.Logger) *Guard {
	return NewWithPolicy(tokens, users, DefaultPolicy, log)
}

func NewWithPolicy(tokens TokenVerifier, users IdentityLookup, policy map[Operation]Rule, log *logger.Logger) *Guard {
	return &Guard{tokens: tokens, users: users, policy: policy, log: log}
}

// Authenticate resolves a bearer token to the identity it names. Tokens that
// fail verification never reach the store.
func (g *Guard) Authenticate(ctx context.Context, token string) (Identity, error) {
	subject, err := g.tokens.Verify(token)
	if err != nil {
		metrics.AuthenticationFailures.WithLabelValues("invalid_token").Inc()
		return Identity{}, commonerrors.ErrUnauthenticated.WithCause(err)
	}

	user, err := g.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, commonerrors.ErrNotFound) {
			metrics.AuthenticationFailures.WithLabelValues("unknown_subject").Inc()
			g.log.WithFields(ctx, logger.Fields{
				"subject": subject,
				"action":  "authenticate_unknown_subject",
			}).Warn("token subject not found")
			return Identity{}, commonerrors.ErrUnknownSubject
		}
		metrics.AuthenticationFailures.WithLabelValues("store_unavailable").Inc()
		if commonerrors.IsDomainError(err) {
			return Identity{}, err
		}
		return Identity{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	return IdentityFromUser(user), nil
}

// Authorize returns nil when the policy grants op on res to id, otherwise Forbidden.
func (g *Guard) Authorize(id Identity, op Operation, res Resource) error {
	rule, ok := g.policy[op]
	if ok && rule(id, res) {
		metrics.AuthorizationDecisions.WithLabelValues(string(op), "allow").Inc()
		return nil
	}

	metrics.AuthorizationDecisions.WithLabelValues(string(op), "deny").Inc()
	if g.log.ShouldLog(logger.DEBUG) {
		g.log.WithFields(context.Background(), logger.Fields{
			"user_id":   id.ID,
			"operation": string(op),
			"action":    "authorize_denied",
		}).Debug("operation forbidden")
	}
	return commonerrors.ErrForbidden
}
