package service

import (
	"context"
	"errors"
	"sync"
	"time"

	commoncrypto "github.com/AlibekovAA/gym-api/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/gym-api/internal/user/domain"
)

type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (userdomain.User, error)
}

type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
	DefaultTTL() time.Duration
}

type AuthService struct {
	users  UserLookup
	hasher commoncrypto.PasswordHasher
	tokens TokenIssuer
	log    *logger.Logger

	decoyOnce sync.Once
	decoyHash string
}

func NewAuthService(
	users UserLookup,
	hasher commoncrypto.PasswordHasher,
	tokens TokenIssuer,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

// Login exchanges a username and password for a bearer token. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if input.Username == "" || input.Password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		return LoginResult{}, commonerrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, commonerrors.ErrNotFound) {
			s.compareDecoy(input.Password)
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			return LoginResult{}, commonerrors.ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return LoginResult{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		return LoginResult{}, commonerrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, 0)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": user.Username,
			"user_id":  user.ID,
			"action":   "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return LoginResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  user.ID,
		"action":   "login_success",
	}).Info("login success")
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	return LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.tokens.DefaultTTL(),
	}, nil
}

// compareDecoy spends the same bcrypt work as a real comparison so response
// time does not reveal whether a username exists.
func (s *AuthService) compareDecoy(password string) {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password-for-unknown-users")
		if err == nil {
			s.decoyHash = hash
		}
	})
	if s.decoyHash != "" {
		_ = s.hasher.Compare(s.decoyHash, password)
	}
}
