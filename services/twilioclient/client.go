package twilioclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/smsconnect/infinity-twilio-connector/lib/mylog"
)

const mockMessageSID = "mock_message_id"

// ErrNotConfigured is returned when a send is attempted without usable
// Twilio credentials
var ErrNotConfigured = errors.New("twilio client not configured: missing credentials")

// Client sends outbound SMS messages via the Twilio REST API. The underlying
// REST client is rebuilt whenever the credentials change.
type Client struct {
	logger mylog.Logger

	mutex sync.Mutex
	cfg   Config
	rest  *twilio.RestClient
}

func New(cfg Config) *Client {
	client := &Client{
		logger: mylog.New("twilioclient"),
	}
	client.Reinitialize(context.Background(), cfg)

	return client
}

// Reinitialize replaces the credentials and rebuilds the REST client. With
// incomplete credentials the client stays unconfigured and sends fail until
// a later reconfiguration.
func (tc *Client) Reinitialize(c context.Context, cfg Config) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.cfg = cfg
	tc.rest = nil

	if cfg.MockMode {
		tc.logger.Log(c, "", mylog.SeverityWarn, "Twilio running in mock mode: no messages will be sent")
		return
	}

	switch {
	case cfg.hasAPIKey():
		tc.rest = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   cfg.APIKeySID,
			Password:   cfg.APIKeySecret,
			AccountSid: cfg.AccountSID,
		})
	case cfg.hasAuthToken():
		tc.rest = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
	default:
		tc.logger.Log(c, "", mylog.SeverityWarn, "Twilio credentials incomplete: client left unconfigured")
	}
}

// SendMessage sends one SMS and returns the provider message sid. In mock
// mode no network call is made and a fixed sentinel sid is returned.
func (tc *Client) SendMessage(c context.Context, from string, to string, body string) (string, error) {
	tc.mutex.Lock()
	cfg := tc.cfg
	rest := tc.rest
	tc.mutex.Unlock()

	if cfg.MockMode {
		tc.logger.Log(c, "", mylog.SeverityInfo, "Sending SMS via Twilio (mock mode): from:%s, to:%s", from, to)
		return mockMessageSID, nil
	}

	if rest == nil {
		return "", ErrNotConfigured
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(body)

	tc.logger.Log(c, "", mylog.SeverityDebug, "Sending SMS via Twilio: from:%s, to:%s", from, to)

	resp, err := rest.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("error sending SMS via Twilio: %s", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}

	tc.logger.Log(c, sid, mylog.SeverityInfo, "SMS sent via Twilio successfully")

	return sid, nil
}

// IsConfigured reports whether sends can be attempted
func (tc *Client) IsConfigured() bool {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	return tc.cfg.MockMode || tc.rest != nil
}
