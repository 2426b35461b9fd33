package config

// Masked is the externally visible form of the configuration: secrets are
// reduced to a recognizable stub so operators can verify what is configured
// without the config API ever echoing credentials.
type Masked struct {
	Twilio   MaskedTwilio   `json:"twilio"`
	Infinity MaskedInfinity `json:"infinity"`
}

type MaskedTwilio struct {
	AccountSID   string `json:"accountSid"`
	AuthToken    string `json:"authToken"`
	APIKeySID    string `json:"apiKeySid"`
	APIKeySecret string `json:"apiKeySecret"`
	MockMode     bool   `json:"mockMode"`
}

type MaskedInfinity struct {
	Host          string `json:"host"`
	AccountID     string `json:"accountId"`
	ClientID      string `json:"clientId"`
	ClientSecret  string `json:"clientSecret"`
	ConnectorID   string `json:"connectorId"`
	WebhookSecret string `json:"webhookSecret"`
	MockMode      bool   `json:"mockMode"`
}

func (c *Config) Masked() Masked {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return Masked{
		Twilio: MaskedTwilio{
			AccountSID:   maskString(c.twilio.AccountSID),
			AuthToken:    maskString(c.twilio.AuthToken),
			APIKeySID:    maskString(c.twilio.APIKeySID),
			APIKeySecret: maskString(c.twilio.APIKeySecret),
			MockMode:     c.twilio.MockMode,
		},
		Infinity: MaskedInfinity{
			Host:          c.infinity.Host,
			AccountID:     c.infinity.AccountID,
			ClientID:      maskString(c.infinity.ClientID),
			ClientSecret:  maskString(c.infinity.ClientSecret),
			ConnectorID:   c.infinity.ConnectorID,
			WebhookSecret: maskString(c.infinity.WebhookSecret),
			MockMode:      c.infinity.MockMode,
		},
	}
}

func maskString(s string) string {
	if s == "" {
		return s
	}
	if len(s) <= 6 {
		return "***"
	}
	return s[:3] + "***" + s[len(s)-2:]
}
