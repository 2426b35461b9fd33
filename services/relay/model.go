package relay

import "time"

const (
	// SignatureHeader carries the HMAC signature on inbound Infinity events
	SignatureHeader = "x-avaya-event-signature"

	eventTypeHealthCheck = "HEALTH_CHECK"
	eventTypeMessages    = "MESSAGES"

	senderTypeCustomer = "CUSTOMER"
)

// InfinityEvent is the webhook payload Infinity posts to the connector
type InfinityEvent struct {
	EventType string          `json:"eventType"`
	MessageID string          `json:"messageId"`
	Headers   InfinityHeaders `json:"headers"`
	Body      InfinityBody    `json:"body"`
	Sender    InfinitySender  `json:"sender"`
}

type InfinityHeaders struct {
	From string   `json:"from"`
	To   []string `json:"to"`
}

type InfinityBody struct {
	Text string `json:"text"`
}

type InfinitySender struct {
	Type string `json:"type"`
}

// TwilioInboundMessage is the webhook payload Twilio posts when an SMS
// arrives on one of the connector's numbers. Twilio sends it form-encoded.
type TwilioInboundMessage struct {
	MessageSid      string `form:"MessageSid" json:"MessageSid"`
	From            string `form:"From" json:"From"`
	To              string `form:"To" json:"To"`
	Body            string `form:"Body" json:"Body"`
	FromCountryCode string `form:"FromCountryCode" json:"FromCountryCode"`
	FromState       string `form:"FromState" json:"FromState"`
	FromCity        string `form:"FromCity" json:"FromCity"`
	ToCountryCode   string `form:"ToCountryCode" json:"ToCountryCode"`
	ToState         string `form:"ToState" json:"ToState"`
	ToCity          string `form:"ToCity" json:"ToCity"`
}

// contextParameters maps the geo hints onto the context parameters the
// Infinity message carries. Empty fields are left out.
func (m TwilioInboundMessage) contextParameters() map[string]string {
	params := map[string]string{}
	for name, value := range map[string]string{
		"fromCountryCode": m.FromCountryCode,
		"fromState":       m.FromState,
		"fromCity":        m.FromCity,
		"toCountryCode":   m.ToCountryCode,
		"toState":         m.ToState,
		"toCity":          m.ToCity,
	} {
		if value != "" {
			params[name] = value
		}
	}

	return params
}

const (
	DirectionToInfinity = "to_infinity"
	DirectionToTwilio   = "to_twilio"
)

// AuditRecord is the stored trace of one relayed message
type AuditRecord struct {
	UID       string
	Direction string
	MessageID string
	From      string
	To        string
	CreatedAt time.Time
}
