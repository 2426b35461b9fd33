package config

import "strings"

// Update is a partial configuration change as accepted by the config API.
// Nil fields leave the current value untouched.
type Update struct {
	Twilio   *TwilioUpdate   `json:"twilio,omitempty"`
	Infinity *InfinityUpdate `json:"infinity,omitempty"`
}

type TwilioUpdate struct {
	AccountSID   *string `json:"accountSid,omitempty"`
	AuthToken    *string `json:"authToken,omitempty"`
	APIKeySID    *string `json:"apiKeySid,omitempty"`
	APIKeySecret *string `json:"apiKeySecret,omitempty"`
}

type InfinityUpdate struct {
	Host          *string `json:"host,omitempty"`
	AccountID     *string `json:"accountId,omitempty"`
	ClientID      *string `json:"clientId,omitempty"`
	ClientSecret  *string `json:"clientSecret,omitempty"`
	ConnectorID   *string `json:"connectorId,omitempty"`
	WebhookSecret *string `json:"webhookSecret,omitempty"`
}

// Apply merges an update into the current configuration and reports which
// sides changed, so the caller knows which clients to reinitialize.
// The infinity mock-mode is recomputed: without a host there is nothing to
// call, so the connector falls back to mock behaviour.
func (c *Config) Apply(update Update) (twilioChanged bool, infinityChanged bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if update.Twilio != nil {
		twilioChanged = applyField(&c.twilio.AccountSID, update.Twilio.AccountSID) || twilioChanged
		twilioChanged = applyField(&c.twilio.AuthToken, update.Twilio.AuthToken) || twilioChanged
		twilioChanged = applyField(&c.twilio.APIKeySID, update.Twilio.APIKeySID) || twilioChanged
		twilioChanged = applyField(&c.twilio.APIKeySecret, update.Twilio.APIKeySecret) || twilioChanged
	}

	if update.Infinity != nil {
		infinityChanged = applyField(&c.infinity.Host, update.Infinity.Host) || infinityChanged
		infinityChanged = applyField(&c.infinity.AccountID, update.Infinity.AccountID) || infinityChanged
		infinityChanged = applyField(&c.infinity.ClientID, update.Infinity.ClientID) || infinityChanged
		infinityChanged = applyField(&c.infinity.ClientSecret, update.Infinity.ClientSecret) || infinityChanged
		infinityChanged = applyField(&c.infinity.ConnectorID, update.Infinity.ConnectorID) || infinityChanged
		infinityChanged = applyField(&c.infinity.WebhookSecret, update.Infinity.WebhookSecret) || infinityChanged

		c.infinity.MockMode = strings.TrimSpace(c.infinity.Host) == ""
	}

	return twilioChanged, infinityChanged
}

func applyField(target *string, value *string) bool {
	if value == nil || *target == *value {
		return false
	}
	*target = *value
	return true
}
