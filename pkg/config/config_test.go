package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PredictAPIURL != "https://api.predict.fun" {
		t.Errorf("expected default API URL, got %s", cfg.PredictAPIURL)
	}

	if cfg.ChainID != 56 {
		t.Errorf("expected default chain ID 56, got %d", cfg.ChainID)
	}

	if cfg.OrderExpiryWindow != 30*time.Minute {
		t.Errorf("expected default expiry window 30m, got %s", cfg.OrderExpiryWindow)
	}

	if cfg.StorageMode != "postgres" {
		t.Errorf("expected default storage mode postgres, got %s", cfg.StorageMode)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PREDICT_API_URL", "http://localhost:9999")
	t.Setenv("PREDICT_CHAIN_ID", "97")
	t.Setenv("PREDICT_ORDER_EXPIRY_WINDOW", "5m")
	t.Setenv("STORAGE_MODE", "memory")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PredictAPIURL != "http://localhost:9999" {
		t.Errorf("expected override API URL, got %s", cfg.PredictAPIURL)
	}

	if cfg.ChainID != 97 {
		t.Errorf("expected chain ID 97, got %d", cfg.ChainID)
	}

	if cfg.OrderExpiryWindow != 5*time.Minute {
		t.Errorf("expected expiry window 5m, got %s", cfg.OrderExpiryWindow)
	}

	if cfg.StorageMode != "memory" {
		t.Errorf("expected storage mode memory, got %s", cfg.StorageMode)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "empty port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: true},
		{name: "empty api url", mutate: func(c *Config) { c.PredictAPIURL = "" }, wantErr: true},
		{name: "bad chain id", mutate: func(c *Config) { c.ChainID = 0 }, wantErr: true},
		{name: "bad storage mode", mutate: func(c *Config) { c.StorageMode = "sqlite" }, wantErr: true},
		{name: "bad expiry", mutate: func(c *Config) { c.OrderExpiryWindow = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
