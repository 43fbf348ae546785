package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("PORT", DefaultPort)
	t.Setenv("DB_PATH", "")
	t.Setenv("TOKEN_SECRET", "s")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("REQUEST_TIMEOUT", "15")
	t.Setenv("SOLVE_STEPS", "50")
	t.Setenv("WORLD_IDLE", "30m")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.TokenTTL != time.Hour || cfg.RequestTimeout != 15*time.Second || cfg.SolveSteps != 50 || cfg.WorldIdle != 30*time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DBPath != "" {
		t.Errorf("DB_PATH = %q, want empty (results disabled)", cfg.DBPath)
	}
}

func TestLoadServerRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"PORT":            "",
		"TOKEN_SECRET":    "",
		"REQUEST_TIMEOUT": "0s",
		"SOLVE_STEPS":     "-1",
		"WORLD_IDLE":      "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := LoadServer()
			if err == nil || !strings.Contains(err.Error(), key) {
				t.Errorf("err = %v, want mention of %s", err, key)
			}
		})
	}
}

func TestClientValidate(t *testing.T) {
	cases := []struct {
		url string
		ok  bool
	}{
		{"http://localhost:5175", true},
		{"https://wumpus.example.com", true},
		{"localhost:5175", false},
		{"ftp://host", false},
		{"", false},
	}
	for _, tc := range cases {
		c := &Client{ServerURL: tc.url, RequestTimeout: time.Second}
		if err := c.Validate(); (err == nil) != tc.ok {
			t.Errorf("Validate(%q) = %v", tc.url, err)
		}
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "yes")
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "250ms")
	if !getEnvBool("X_BOOL", false) {
		t.Error("getEnvBool")
	}
	if getEnvInt("X_INT", 7) != 7 {
		t.Error("getEnvInt should fall back on junk")
	}
	if getEnvDuration("X_DUR", time.Second) != 250*time.Millisecond {
		t.Error("getEnvDuration")
	}
	if getEnvDuration("X_MISSING_DUR", time.Second) != time.Second {
		t.Error("getEnvDuration fallback")
	}
}
