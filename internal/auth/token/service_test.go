package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/gym-api/internal/common/clock"
	"github.com/AlibekovAA/gym-api/internal/common/config"
	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
)

const testSecret = "test-secret-key-must-be-at-least-32-bytes-long"

var issuedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, alg string) (*Service, *clock.MockClock) {
	t.Helper()
	clk := clock.NewMockClock(issuedAt)
	svc, err := NewService(config.AuthConfig{
		SecretKey:      testSecret,
		Algorithm:      alg,
		AccessTokenTTL: 30 * time.Minute,
	}, clk)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, clk
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			svc, _ := newTestService(t, alg)

			tok, err := svc.Issue("user1", 0)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}

			sub, err := svc.Verify(tok)
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if sub != "user1" {
				t.Errorf("expected subject user1, got %s", sub)
			}
		})
	}
}

func TestVerify_DefaultExpiry(t *testing.T) {
	svc, clk := newTestService(t, "HS256")

	tok, err := svc.Issue("user1", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clk.SetTime(issuedAt.Add(29 * time.Minute))
	if _, err := svc.Verify(tok); err != nil {
		t.Errorf("expected token valid at T+29m, got %v", err)
	}

	clk.SetTime(issuedAt.Add(31 * time.Minute))
	if _, err := svc.Verify(tok); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken at T+31m, got %v", err)
	}
}

func TestIssue_ExplicitTTL(t *testing.T) {
	svc, clk := newTestService(t, "HS256")

	tok, _ := svc.Issue("user1", time.Minute)

	clk.SetTime(issuedAt.Add(2 * time.Minute))
	if _, err := svc.Verify(tok); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected explicit ttl to be honoured, got %v", err)
	}
}

func TestIssue_RejectsEmptySubject(t *testing.T) {
	svc, _ := newTestService(t, "HS256")
	if _, err := svc.Issue("", 0); err == nil {
		t.Error("expected error for empty subject")
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	svc, _ := newTestService(t, "HS256")
	tok, _ := svc.Issue("user1", 0)

	dot := strings.LastIndex(tok, ".")
	sig := []byte(tok[dot+1:])

	for i := range sig {
		for _, replacement := range []byte{'A', 'B', 'Q', 'g', 'w', '-', '_'} {
			if sig[i] == replacement {
				continue
			}
			mutated := make([]byte, len(sig))
			copy(mutated, sig)
			mutated[i] = replacement

			if _, err := svc.Verify(tok[:dot+1] + string(mutated)); !errors.Is(err, commonerrors.ErrInvalidToken) {
				t.Fatalf("signature byte %d -> %q accepted: %v", i, replacement, err)
			}
		}
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	svc, _ := newTestService(t, "HS256")
	tok, _ := svc.Issue("user1", 0)

	other, _ := svc.Issue("admin1", 0)
	parts := strings.Split(tok, ".")
	otherParts := strings.Split(other, ".")

	forged := parts[0] + "." + otherParts[1] + "." + parts[2]
	if _, err := svc.Verify(forged); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected swapped payload to be rejected, got %v", err)
	}
}

func TestVerify_Rejections(t *testing.T) {
	svc, _ := newTestService(t, "HS256")
	now := jwt.NewNumericDate(issuedAt)
	later := jwt.NewNumericDate(issuedAt.Add(time.Hour))

	sign := func(method jwt.SigningMethod, claims jwt.Claims, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong secret":   sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user1", ExpiresAt: later}, []byte("another-secret-that-is-also-32-bytes-long")),
		"wrong alg":      sign(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "user1", ExpiresAt: later}, []byte(testSecret)),
		"alg none":       sign(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user1", ExpiresAt: later}, jwt.UnsafeAllowNoneSignatureType),
		"missing exp":    sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user1", IssuedAt: now}, []byte(testSecret)),
		"missing sub":    sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: later}, []byte(testSecret)),
		"already expire": sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user1", ExpiresAt: now}, []byte(testSecret)),
	}

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Verify(tok); !errors.Is(err, commonerrors.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewService_ValidatesConfig(t *testing.T) {
	clk := clock.NewMockClock(issuedAt)

	if _, err := NewService(config.AuthConfig{SecretKey: "short", Algorithm: "HS256"}, clk); !errors.Is(err, commonerrors.ErrInvalidJWTSecret) {
		t.Errorf("expected ErrInvalidJWTSecret, got %v", err)
	}
	if _, err := NewService(config.AuthConfig{SecretKey: testSecret, Algorithm: "RS256"}, clk); !errors.Is(err, commonerrors.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	svc, err := NewService(config.AuthConfig{SecretKey: testSecret, Algorithm: "HS256"}, clk)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.DefaultTTL() != 30*time.Minute {
		t.Errorf("expected 30m default ttl, got %v", svc.DefaultTTL())
	}
}
