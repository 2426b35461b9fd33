package config

import (
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// TwilioConfig holds the credentials for the Twilio side of the relay.
// An API-key pair takes precedence over the account auth-token.
type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	APIKeySID    string
	APIKeySecret string
	MockMode     bool
}

// InfinityConfig holds the credentials for the Infinity side of the relay.
type InfinityConfig struct {
	Host          string
	AccountID     string
	ClientID      string
	ClientSecret  string
	ConnectorID   string
	WebhookSecret string
	MockMode      bool
}

type Config struct {
	mutex    sync.RWMutex
	port     string
	twilio   TwilioConfig
	infinity InfinityConfig
}

// Load reads the configuration from the environment. A .env.dev file is
// honoured when present so local runs do not need exported variables.
func Load() *Config {
	_ = godotenv.Load(".env.dev")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	infinity := InfinityConfig{
		Host:          os.Getenv("INFINITY_HOST"),
		AccountID:     os.Getenv("INFINITY_ACCOUNT_ID"),
		ClientID:      os.Getenv("INFINITY_CLIENT_ID"),
		ClientSecret:  os.Getenv("INFINITY_CLIENT_SECRET"),
		ConnectorID:   os.Getenv("INFINITY_CONNECTOR_ID"),
		WebhookSecret: os.Getenv("INFINITY_WEBHOOK_SECRET"),
	}
	infinity.MockMode = isMockModeRequested("infinity") ||
		infinity.Host == "" ||
		strings.TrimSpace(infinity.ClientID) == ""

	twilio := TwilioConfig{
		AccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		APIKeySID:    os.Getenv("TWILIO_API_KEY_SID"),
		APIKeySecret: os.Getenv("TWILIO_API_KEY_SECRET"),
		MockMode:     isMockModeRequested("twilio"),
	}

	return &Config{
		port:     port,
		twilio:   twilio,
		infinity: infinity,
	}
}

func isMockModeRequested(service string) bool {
	env := os.Getenv("ENV")
	return env == "mock_all" || env == "mock_"+service
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) Twilio() TwilioConfig {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.twilio
}

func (c *Config) Infinity() InfinityConfig {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.infinity
}
