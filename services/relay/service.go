package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/smsconnect/infinity-twilio-connector/lib/myerrors"
	"github.com/smsconnect/infinity-twilio-connector/lib/mylog"
	"github.com/smsconnect/infinity-twilio-connector/lib/mypubsub"
	"github.com/smsconnect/infinity-twilio-connector/lib/mystore"
	"github.com/smsconnect/infinity-twilio-connector/lib/mytime"
	"github.com/smsconnect/infinity-twilio-connector/lib/myuuid"
	"github.com/smsconnect/infinity-twilio-connector/services/connectorevents"
	"github.com/smsconnect/infinity-twilio-connector/services/infinityclient"
)

type service struct {
	logger     mylog.Logger
	forwarder  Forwarder
	messenger  Messenger
	auditStore mystore.Store[AuditRecord]
	publisher  mypubsub.Publisher
	nower      mytime.Nower
	uuider     myuuid.UUIDer
}

func newService(logger mylog.Logger, forwarder Forwarder, messenger Messenger, auditStore mystore.Store[AuditRecord], publisher mypubsub.Publisher, nower mytime.Nower, uuider myuuid.UUIDer) *service {
	return &service{
		logger:     logger,
		forwarder:  forwarder,
		messenger:  messenger,
		auditStore: auditStore,
		publisher:  publisher,
		nower:      nower,
		uuider:     uuider,
	}
}

func (s *service) createTopic(c context.Context) error {
	err := s.publisher.CreateTopic(c, connectorevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", connectorevents.TopicName, err)
	}

	return nil
}

// relayInfinityMessage forwards one agent-originated message to the SMS
// provider. Customer-originated messages are echoes of what the connector
// itself delivered and are acknowledged without a send.
func (s *service) relayInfinityMessage(c context.Context, event InfinityEvent) error {
	if strings.EqualFold(event.Sender.Type, senderTypeCustomer) {
		s.logger.Log(c, event.MessageID, mylog.SeverityInfo, "Ignoring customer-originated message %s", event.MessageID)
		return nil
	}

	if len(event.Headers.To) == 0 {
		return myerrors.NewInvalidInputErrorf("message %s has no destination", event.MessageID)
	}
	to := event.Headers.To[0]

	sid, err := s.messenger.SendMessage(c, event.Headers.From, to, event.Body.Text)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error relaying message %s to SMS provider: %s", event.MessageID, err))
	}

	s.logger.Log(c, event.MessageID, mylog.SeverityInfo, "Relayed message %s to SMS provider as %s", event.MessageID, sid)
	s.audit(c, DirectionToTwilio, sid, event.Headers.From, to)

	return nil
}

// relayTwilioMessage forwards one inbound SMS to the Infinity messaging API
func (s *service) relayTwilioMessage(c context.Context, inbound TwilioInboundMessage) error {
	resp, err := s.forwarder.SendMessage(c, infinityclient.TextMessage{
		From:              inbound.From,
		To:                inbound.To,
		Text:              inbound.Body,
		ProviderMessageID: inbound.MessageSid,
		ContextParameters: inbound.contextParameters(),
	})
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error relaying message %s to Infinity: %s", inbound.MessageSid, err))
	}

	s.logger.Log(c, inbound.MessageSid, mylog.SeverityInfo, "Relayed message %s to Infinity as %s", inbound.MessageSid, resp.MessageID)
	s.audit(c, DirectionToInfinity, resp.MessageID, inbound.From, inbound.To)

	return nil
}

// audit stores a trace record and publishes the relayed event. Failures are
// logged only: a delivered message must not be reported as failed because
// its bookkeeping failed.
func (s *service) audit(c context.Context, direction string, messageID string, from string, to string) {
	record := AuditRecord{
		UID:       s.uuider.Create(),
		Direction: direction,
		MessageID: messageID,
		From:      from,
		To:        to,
		CreatedAt: s.nower.Now(),
	}

	err := s.auditStore.Put(c, record.UID, record)
	if err != nil {
		s.logger.Log(c, messageID, mylog.SeverityWarn, "Error storing audit record for message %s: %s", messageID, err)
	}

	err = connectorevents.Publish(c, s.publisher, connectorevents.MessageRelayed{
		Direction: direction,
		MessageID: messageID,
		From:      from,
		To:        to,
	})
	if err != nil {
		s.logger.Log(c, messageID, mylog.SeverityWarn, "Error publishing relayed event for message %s: %s", messageID, err)
	}
}
