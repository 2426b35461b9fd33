package twilioclient

// Config carries the Twilio credentials. API key credentials take precedence
// over the account auth token when both are present.
type Config struct {
	AccountSID   string
	AuthToken    string
	APIKeySID    string
	APIKeySecret string
	MockMode     bool
}

func (cfg Config) hasAPIKey() bool {
	return cfg.APIKeySID != "" && cfg.APIKeySecret != ""
}

func (cfg Config) hasAuthToken() bool {
	return cfg.AccountSID != "" && cfg.AuthToken != ""
}
