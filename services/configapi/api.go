package configapi

import (
	"context"

	"github.com/smsconnect/infinity-twilio-connector/config"
	"github.com/smsconnect/infinity-twilio-connector/services/infinityclient"
	"github.com/smsconnect/infinity-twilio-connector/services/twilioclient"
)

//go:generate mockgen -source=api.go -package configapi -destination api_mock.go TwilioReconfigurer,InfinityReconfigurer

// TwilioReconfigurer picks up new Twilio credentials at runtime
type TwilioReconfigurer interface {
	Reinitialize(c context.Context, cfg twilioclient.Config)
}

// InfinityReconfigurer picks up new Infinity credentials at runtime
type InfinityReconfigurer interface {
	Reinitialize(c context.Context, cfg infinityclient.Config)
}

// ToTwilioConfig maps the loaded configuration onto the Twilio client config
func ToTwilioConfig(cfg config.TwilioConfig) twilioclient.Config {
	return twilioclient.Config{
		AccountSID:   cfg.AccountSID,
		AuthToken:    cfg.AuthToken,
		APIKeySID:    cfg.APIKeySID,
		APIKeySecret: cfg.APIKeySecret,
		MockMode:     cfg.MockMode,
	}
}

// ToInfinityConfig maps the loaded configuration onto the Infinity client config
func ToInfinityConfig(cfg config.InfinityConfig) infinityclient.Config {
	return infinityclient.Config{
		Host:          cfg.Host,
		AccountID:     cfg.AccountID,
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		ConnectorID:   cfg.ConnectorID,
		WebhookSecret: cfg.WebhookSecret,
		MockMode:      cfg.MockMode,
	}
}
