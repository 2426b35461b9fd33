package connectorevents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smsconnect/infinity-twilio-connector/lib/mypubsub"
)

const (
	TopicName              = "connector"
	tokenRefreshedName     = TopicName + ".token.refreshed"
	tokenRefreshFailedName = TopicName + ".token.refreshFailed"
	messageRelayedName     = TopicName + ".message.relayed"
)

type Event interface {
	GetEventTypeName() string
	GetAggregateName() string
}

type eventEnvelope struct {
	EventTypeName string `json:"eventTypeName"`
	AggregateUID  string `json:"aggregateUid"`
	EventPayload  string `json:"eventPayload"`
}

// Publish wraps an event in an envelope and puts it on the connector topic.
func Publish(c context.Context, publisher mypubsub.Publisher, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshalling event payload: %s", err)
	}

	envelope, err := json.Marshal(eventEnvelope{
		EventTypeName: event.GetEventTypeName(),
		AggregateUID:  event.GetAggregateName(),
		EventPayload:  string(payload),
	})
	if err != nil {
		return fmt.Errorf("error marshalling event envelope: %s", err)
	}

	err = publisher.Publish(c, TopicName, string(envelope))
	if err != nil {
		return fmt.Errorf("error publishing event %s: %s", event.GetEventTypeName(), err)
	}

	return nil
}

type TokenRefreshed struct {
	ClientID  string
	ExpiresAt string
}

func (e TokenRefreshed) GetEventTypeName() string {
	return tokenRefreshedName
}

func (e TokenRefreshed) GetAggregateName() string {
	return e.ClientID
}

type TokenRefreshFailed struct {
	ClientID     string
	ErrorMessage string
}

func (e TokenRefreshFailed) GetEventTypeName() string {
	return tokenRefreshFailedName
}

func (e TokenRefreshFailed) GetAggregateName() string {
	return e.ClientID
}

type MessageRelayed struct {
	Direction string
	MessageID string
	From      string
	To        string
}

func (e MessageRelayed) GetEventTypeName() string {
	return messageRelayedName
}

func (e MessageRelayed) GetAggregateName() string {
	return e.MessageID
}
