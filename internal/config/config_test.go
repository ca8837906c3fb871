package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverMongo)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Driver != DriverMongo {
		t.Errorf("driver = %q, want %q", cfg.Database.Driver, DriverMongo)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.JWTExpirationMinutes != 15 {
		t.Errorf("jwt expiration = %d, want 15", cfg.JWTExpirationMinutes)
	}
}

func TestLoadConfigSQLDrivers(t *testing.T) {
	tests := []struct {
		driver  string
		wantDSN string
	}{
		{DriverMySQL, "root:secret@tcp(db:3306)/counseling?"},
		{DriverPostgres, "host=db user=root password=secret dbname=counseling port=5432"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			t.Setenv("DB_DRIVER", tt.driver)
			t.Setenv("DB_HOST", "db")
			t.Setenv("DB_PASSWORD", "secret")

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if !strings.HasPrefix(cfg.Database.DSN, tt.wantDSN) {
				t.Errorf("DSN = %q, want prefix %q", cfg.Database.DSN, tt.wantDSN)
			}
		})
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "sqlite")
		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected an error for an unknown driver")
		}
	})
	t.Run("jwt expiration", func(t *testing.T) {
		t.Setenv("DB_DRIVER", DriverMongo)
		t.Setenv("JWT_EXPIRATION_MINUTES", "soon")
		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected an error for a non-numeric expiration")
		}
	})
}

func TestLoadConfigAppURL(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverMongo)
	t.Setenv("ORIGIN", "https://counseling.uni.test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Mailer.AppURL != cfg.Origin {
		t.Errorf("app URL = %q, want the origin %q", cfg.Mailer.AppURL, cfg.Origin)
	}

	t.Setenv("APP_URL", "https://app.uni.test")
	if cfg, err = LoadConfig(); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Mailer.AppURL != "https://app.uni.test" {
		t.Errorf("app URL = %q, want APP_URL", cfg.Mailer.AppURL)
	}
}
