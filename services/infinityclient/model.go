package infinityclient

import "strings"

// Config holds everything needed to reach one Infinity account.
// AccountID and ConnectorID act as fallbacks: the values derived from the
// access token take precedence once a token has been fetched.
type Config struct {
	Host          string
	AccountID     string
	ConnectorID   string
	ClientID      string
	ClientSecret  string
	WebhookSecret string
	MockMode      bool
}

func (cfg Config) baseURL() string {
	if strings.HasPrefix(cfg.Host, "http://") || strings.HasPrefix(cfg.Host, "https://") {
		return cfg.Host
	}
	return "https://" + cfg.Host
}

// TextMessage is the provider-neutral intent of one outbound message.
type TextMessage struct {
	From              string
	To                string
	Text              string
	ContextParameters map[string]string
	ProviderMessageID string
}

// Message is the Infinity response payload after a successful send.
type Message struct {
	MessageID            string            `json:"messageId"`
	AccountID            string            `json:"accountId"`
	ConversationSession  string            `json:"conversationSessionId"`
	ConnectorID          string            `json:"connectorId"`
	Channel              string            `json:"channel"`
	Headers              MessageHeaders    `json:"headers"`
	Body                 MessageBody       `json:"body"`
	ContextParameters    map[string]string `json:"contextParameters,omitempty"`
	ProviderMetaData     ProviderMetaData  `json:"providerMetaData,omitempty"`
}

type MessageHeaders struct {
	From string   `json:"from"`
	To   []string `json:"to"`
}

type MessageBody struct {
	Text string `json:"text"`
}

type ProviderMetaData struct {
	MessageID        string `json:"messageId,omitempty"`
	MessageTimestamp string `json:"messageTimestamp,omitempty"`
}

// outboundMessage is the wire shape of a message posted to Infinity.
type outboundMessage struct {
	ConnectorID       string            `json:"connectorId"`
	Channel           string            `json:"channel"`
	Headers           MessageHeaders    `json:"headers"`
	Body              MessageBody       `json:"body"`
	ContextParameters map[string]string `json:"contextParameters"`
	ProviderMetaData  ProviderMetaData  `json:"providerMetaData"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
