package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:  "postgres://localhost/workforce",
		TokenTTL:     8 * time.Hour,
		Environment:  "development",
		MaxBodyBytes: 10485760,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid development config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing database url",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: true,
		},
		{
			name:    "production requires jwt secret",
			mutate:  func(c *Config) { c.Environment = "production" },
			wantErr: true,
		},
		{
			name: "production with secret and seed password",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWTSecret = "secret"
				c.RunSeed = true
				c.SeedAdminPassword = "admin-pass"
			},
		},
		{
			name:    "non positive token ttl",
			mutate:  func(c *Config) { c.TokenTTL = 0 },
			wantErr: true,
		},
		{
			name:    "email enabled without smtp host",
			mutate:  func(c *Config) { c.EmailEnabled = true },
			wantErr: true,
		},
		{
			name:    "body limit too small",
			mutate:  func(c *Config) { c.MaxBodyBytes = 100 },
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
