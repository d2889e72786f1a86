package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/gym-api/internal/common/clock"
	"github.com/AlibekovAA/gym-api/internal/common/config"
	"github.com/AlibekovAA/gym-api/internal/common/constants"
	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
	"github.com/AlibekovAA/gym-api/internal/observability/metrics"
)

// Service issues and verifies HMAC-signed bearer tokens whose subject is the
// username of the authenticated identity. Tokens carry no roles; the guard
// resolves them from the store on every request.
type Service struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	clock      clock.Clock
}

func NewService(cfg config.AuthConfig, clk clock.Clock) (*Service, error) {
	if len(cfg.SecretKey) < constants.JWTSecretMinLength {
		return nil, commonerrors.ErrInvalidJWTSecret
	}

	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, commonerrors.ErrInvalidConfig.WithCause(fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm))
	}

	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = constants.DefaultAccessTokenTTL
	}

	return &Service{
		secret:     []byte(cfg.SecretKey),
		method:     method,
		defaultTTL: ttl,
		clock:      clk,
	}, nil
}

func (s *Service) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// Issue signs a token for subject valid for ttl; a non-positive ttl means the
// configured default.
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must not be empty")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	metrics.AccessTokensIssued.Inc()
	return signed, nil
}

// Verify returns the subject of a well-formed, correctly signed, unexpired
// token. Every failure is ErrInvalidToken.
func (s *Service) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", s.reject(errors.New("empty token"))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return "", s.reject(err)
	}
	if claims.Subject == "" {
		return "", s.reject(errors.New("token has no subject"))
	}

	metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
	return claims.Subject, nil
}

func (s *Service) reject(cause error) error {
	metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
	return commonerrors.ErrInvalidToken.WithCause(cause)
}
