package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.LoginTokenExpiry != 1*time.Hour {
		t.Errorf("LoginTokenExpiry: got %v, want 1h", cfg.Auth.LoginTokenExpiry)
	}
	if cfg.Auth.RegisterTokenExpiry != 365*24*time.Hour {
		t.Errorf("RegisterTokenExpiry: got %v, want 8760h", cfg.Auth.RegisterTokenExpiry)
	}
	if cfg.Storage.UploadDir != "uploads" {
		t.Errorf("UploadDir: got %q, want uploads", cfg.Storage.UploadDir)
	}
	if cfg.Storage.MaxUploadBytes != 50*1024*1024 {
		t.Errorf("MaxUploadBytes: got %d, want 50MB", cfg.Storage.MaxUploadBytes)
	}
	if cfg.Email.Enabled {
		t.Error("Email.Enabled should default to false")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error when DB_PASSWORD is missing")
	}
}

func TestLoad_WeakJWTSecretRejected(t *testing.T) {
	os.Setenv("JWT_SECRET", "short")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error for a JWT secret below minimum length")
	}
}

func TestLoad_ProductionRequiresStrongerSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "only-twenty-chars!!!") // ok for dev, too short for prod
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error for a short JWT secret in production")
	}
}

func TestLoad_CustomTokenExpiries(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("LOGIN_TOKEN_EXPIRY", "30m")
	os.Setenv("REGISTER_TOKEN_EXPIRY", "720h")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.LoginTokenExpiry != 30*time.Minute {
		t.Errorf("LoginTokenExpiry: got %v, want 30m", cfg.Auth.LoginTokenExpiry)
	}
	if cfg.Auth.RegisterTokenExpiry != 720*time.Hour {
		t.Errorf("RegisterTokenExpiry: got %v, want 720h", cfg.Auth.RegisterTokenExpiry)
	}
}

func TestLoad_EmailEnabledRequiresFromAddress(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("EMAIL_ENABLED", "true")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error when EMAIL_ENABLED is set without EMAIL_FROM_ADDRESS")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "pw",
		Name:     "elibrary",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=app password=pw dbname=elibrary sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
