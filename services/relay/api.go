package relay

import (
	"context"

	"github.com/smsconnect/infinity-twilio-connector/services/infinityclient"
)

//go:generate mockgen -source=api.go -package relay -destination api_mock.go Forwarder,Messenger

// Forwarder relays a message intent towards the Infinity messaging API
type Forwarder interface {
	SendMessage(c context.Context, msg infinityclient.TextMessage) (infinityclient.Message, error)
}

// Messenger relays a message towards the SMS provider
type Messenger interface {
	SendMessage(c context.Context, from string, to string, body string) (string, error)
}
