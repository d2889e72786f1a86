package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	commonerrors "github.com/AlibekovAA/gym-api/internal/common/errors"
)

const testSecret = "test-secret-key-must-be-at-least-32-bytes-long"

func TestLoad_DefaultsWithMemoryStore(t *testing.T) {
	t.Setenv("GYM_AUTH_SECRET_KEY", testSecret)
	t.Setenv("GYM_STORE_DRIVER", "memory")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Auth.Algorithm != "HS256" {
		t.Errorf("expected HS256, got %s", cfg.Auth.Algorithm)
	}
	if cfg.Auth.AccessTokenTTL != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Store.Collections.Users != "users" || cfg.Store.Collections.Notifications != "notifications" {
		t.Errorf("unexpected collection names %+v", cfg.Store.Collections)
	}
	if cfg.HTTPPort != "8000" {
		t.Errorf("expected port 8000, got %s", cfg.HTTPPort)
	}
}

func TestLoad_LegacyVariables(t *testing.T) {
	t.Setenv("AUTH_SECRET_KEY", testSecret)
	t.Setenv("AUTH_ALGORITHM", "hs512")
	t.Setenv("AUTH_EXPIRATION", "45")
	t.Setenv("GYM_STORE_DRIVER", "memory")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Auth.SecretKey != testSecret {
		t.Error("expected secret from AUTH_SECRET_KEY")
	}
	if cfg.Auth.Algorithm != "HS512" {
		t.Errorf("expected HS512, got %s", cfg.Auth.Algorithm)
	}
	if cfg.Auth.AccessTokenTTL != 45*time.Minute {
		t.Errorf("expected 45m ttl, got %v", cfg.Auth.AccessTokenTTL)
	}
}

func TestLoad_ShortSecretRejected(t *testing.T) {
	t.Setenv("GYM_AUTH_SECRET_KEY", "secret")
	t.Setenv("GYM_STORE_DRIVER", "memory")

	_, err := Load("")
	if !errors.Is(err, commonerrors.ErrInvalidJWTSecret) {
		t.Fatalf("expected ErrInvalidJWTSecret, got %v", err)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("GYM_STORE_DRIVER", "memory")

	_, err := Load("")
	if !errors.Is(err, commonerrors.ErrMissingRequiredConfig) {
		t.Fatalf("expected ErrMissingRequiredConfig, got %v", err)
	}
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("GYM_AUTH_SECRET_KEY", testSecret)
	t.Setenv("GYM_STORE_DRIVER", "postgres")

	_, err := Load("")
	if !errors.Is(err, commonerrors.ErrMissingRequiredConfig) {
		t.Fatalf("expected ErrMissingRequiredConfig, got %v", err)
	}
}

func TestLoad_UnsupportedAlgorithm(t *testing.T) {
	t.Setenv("GYM_AUTH_SECRET_KEY", testSecret)
	t.Setenv("GYM_AUTH_ALGORITHM", "RS256")
	t.Setenv("GYM_STORE_DRIVER", "memory")

	_, err := Load("")
	if !errors.Is(err, commonerrors.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gym.yaml")
	content := []byte(`
http_port: "9090"
auth:
  secret_key: "` + testSecret + `"
store:
  driver: memory
  collections:
    users: members
email:
  provider: smtp
  from: gym@example.com
  smtp:
    host: localhost
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GYM_HTTP_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPPort != "7070" {
		t.Errorf("expected env to override file, got %s", cfg.HTTPPort)
	}
	if cfg.Store.Collections.Users != "members" {
		t.Errorf("expected users collection from file, got %s", cfg.Store.Collections.Users)
	}
	if cfg.Email.SMTP.Port != "587" {
		t.Errorf("expected default smtp port, got %s", cfg.Email.SMTP.Port)
	}
}

func TestValidate_EmailProviders(t *testing.T) {
	base := Config{
		Auth:  AuthConfig{SecretKey: testSecret, Algorithm: "HS256", AccessTokenTTL: time.Minute},
		Store: StoreConfig{Driver: "memory", Collections: Collections{"u", "t", "a", "n"}},
	}

	cases := []struct {
		name    string
		email   EmailConfig
		wantErr bool
	}{
		{"log", EmailConfig{Provider: "log"}, false},
		{"sendgrid missing key", EmailConfig{Provider: "sendgrid", From: "a@b.c"}, true},
		{"sendgrid ok", EmailConfig{Provider: "sendgrid", From: "a@b.c", SendGrid: SendGridConfig{Key: "k"}}, false},
		{"mailgun missing domain", EmailConfig{Provider: "mailgun", From: "a@b.c", Mailgun: MailgunConfig{Key: "k"}}, true},
		{"unknown", EmailConfig{Provider: "pigeon"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			cfg.Email = tc.email
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}
