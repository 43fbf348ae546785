// Package config provides configuration for the wumpus binaries.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is where the simulation service listens unless PORT is set.
const DefaultPort = "5175"

// Server holds configuration for cmd/wumpus-server.
type Server struct {
	Port           string
	DBPath         string // empty disables the results store
	TokenSecret    string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	SolveSteps     int
	WorldIdle      time.Duration // live worlds untouched this long are dropped
	LogLevel       string
}

// Client holds configuration for cmd/wumpus.
type Client struct {
	ServerURL      string
	RequestTimeout time.Duration
	LogLevel       string
	LogFile        string
	Plain          bool
}

// LoadServer reads server configuration from environment variables.
func LoadServer() (*Server, error) {
	cfg := &Server{
		Port:           getEnv("PORT", DefaultPort),
		DBPath:         getEnv("DB_PATH", "./data/wumpus.db"),
		TokenSecret:    getEnv("TOKEN_SECRET", "local_dev_secret"),
		TokenTTL:       getEnvDuration("TOKEN_TTL", 24*time.Hour),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		SolveSteps:     getEnvInt("SOLVE_STEPS", 200),
		WorldIdle:      getEnvDuration("WORLD_IDLE", 2*time.Hour),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required server fields are set.
func (c *Server) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET cannot be empty")
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("TOKEN_TTL must be >= 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if c.SolveSteps <= 0 {
		return fmt.Errorf("SOLVE_STEPS must be > 0")
	}
	if c.WorldIdle <= 0 {
		return fmt.Errorf("WORLD_IDLE must be > 0")
	}
	return nil
}

// LoadClient reads client defaults from environment variables.
// Command-line flags may override the result before Validate is called.
func LoadClient() *Client {
	return &Client{
		ServerURL:      getEnv("WUMPUS_SERVER", "http://localhost:"+DefaultPort),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", "wumpus.log"),
		Plain:          getEnvBool("WUMPUS_PLAIN", false),
	}
}

// Validate checks the client fields.
func (c *Client) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("server URL %q must be http(s)://host[:port]", c.ServerURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go duration strings ("30s") or bare seconds ("30").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
