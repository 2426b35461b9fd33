package infinityclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/smsconnect/infinity-twilio-connector/lib/myhttpclient"
	"github.com/smsconnect/infinity-twilio-connector/lib/mylog"
	"github.com/smsconnect/infinity-twilio-connector/lib/mypubsub"
	"github.com/smsconnect/infinity-twilio-connector/lib/mytime"
)

const (
	messagePath = "/api/digital/messaging/v1/accounts/%s/messages"

	// Context tag stamped on every relayed message
	relayCategory = "insurance"

	mockMessageID = "mock_avaya_id"
)

// MessagingClient sends messages to the Infinity messaging API on behalf of
// one configured account. Token management is delegated to an owned
// TokenManager; initialization is lazy unless the caller initializes
// eagerly at startup.
type MessagingClient struct {
	sender    myhttpclient.HTTPSender
	nower     mytime.Nower
	publisher mypubsub.Publisher
	logger    mylog.Logger

	mutex       sync.Mutex
	cfg         Config
	tokens      *TokenManager
	initialized bool
}

func NewMessagingClient(cfg Config, sender myhttpclient.HTTPSender, nower mytime.Nower, publisher mypubsub.Publisher) *MessagingClient {
	return &MessagingClient{
		sender:    sender,
		nower:     nower,
		publisher: publisher,
		logger:    mylog.New("infinityclient"),
		cfg:       cfg,
		tokens:    NewTokenManager(sender, nower, publisher, cfg.MockMode),
	}
}

// Initialize fetches the first access token. It is idempotent: a second
// call (or a concurrent lazy initialization from SendMessage) is a no-op
// once the first one succeeded.
func (mc *MessagingClient) Initialize(c context.Context) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	return mc.initializeLocked(c)
}

func (mc *MessagingClient) initializeLocked(c context.Context) error {
	if mc.initialized {
		return nil
	}

	err := mc.tokens.Initialize(c, mc.cfg.baseURL(), mc.cfg.ClientID, mc.cfg.ClientSecret)
	if err != nil {
		return fmt.Errorf("error initializing Infinity messaging client: %s", err)
	}

	mc.initialized = true

	return nil
}

// Reinitialize replaces the configuration and the token manager. The old
// manager is disposed so its renewal timer cannot outlive the credentials
// it was created for. The first send after a reinitialize fetches a fresh
// token lazily.
func (mc *MessagingClient) Reinitialize(c context.Context, cfg Config) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.logger.Log(c, "", mylog.SeverityInfo, "Reinitializing Infinity messaging client")

	mc.tokens.Dispose()
	mc.cfg = cfg
	mc.tokens = NewTokenManager(mc.sender, mc.nower, mc.publisher, cfg.MockMode)
	mc.initialized = false
}

// SendMessage relays one message intent to Infinity. In mock mode no
// network call is made and a fixed sentinel message id is returned.
func (mc *MessagingClient) SendMessage(c context.Context, msg TextMessage) (Message, error) {
	mc.mutex.Lock()
	cfg := mc.cfg

	if cfg.MockMode {
		mc.mutex.Unlock()
		return mc.sendMockMessage(c, cfg, msg)
	}

	err := mc.initializeLocked(c)
	if err != nil {
		mc.mutex.Unlock()
		return Message{}, err
	}
	tokens := mc.tokens
	mc.mutex.Unlock()

	accessToken, err := tokens.GetAccessToken()
	if err != nil {
		return Message{}, err
	}

	url := cfg.baseURL() + fmt.Sprintf(messagePath, mc.resolveAccountID(cfg, tokens))
	payload, err := json.Marshal(mc.buildOutboundMessage(cfg, tokens, msg))
	if err != nil {
		return Message{}, fmt.Errorf("error marshalling message: %s", err)
	}

	mc.logger.Log(c, msg.ProviderMessageID, mylog.SeverityDebug, "Sending message to Infinity: %s", url)

	httpStatus, respBody, err := mc.sender.Send(c, http.MethodPost, url,
		map[string]string{"Authorization": "Bearer " + accessToken}, payload)
	if err != nil {
		return Message{}, fmt.Errorf("error sending message to Infinity: %s", err)
	}

	if httpStatus < 200 || httpStatus >= 300 {
		return Message{}, fmt.Errorf("failed to forward message to Infinity: status %d: %s", httpStatus, respBody)
	}

	resp := Message{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return Message{}, fmt.Errorf("error parsing Infinity response: %s", err)
	}

	mc.logger.Log(c, msg.ProviderMessageID, mylog.SeverityInfo, "Message sent to Infinity successfully")

	return resp, nil
}

func (mc *MessagingClient) sendMockMessage(c context.Context, cfg Config, msg TextMessage) (Message, error) {
	url := cfg.baseURL() + fmt.Sprintf(messagePath, cfg.AccountID)
	mc.logger.Log(c, msg.ProviderMessageID, mylog.SeverityInfo,
		"Sending message to Infinity (mock mode): url:%s, from:%s, to:%s", url, msg.From, msg.To)

	return Message{
		MessageID:   mockMessageID,
		AccountID:   cfg.AccountID,
		ConnectorID: cfg.ConnectorID,
		Channel:     "SMS",
		Headers: MessageHeaders{
			From: msg.From,
			To:   []string{msg.To},
		},
		Body: MessageBody{
			Text: msg.Text,
		},
	}, nil
}

// resolveAccountID prefers the account derived from the token over the
// configured one
func (mc *MessagingClient) resolveAccountID(cfg Config, tokens *TokenManager) string {
	if accountID := tokens.AccountID(); accountID != "" {
		return accountID
	}
	return cfg.AccountID
}

func (mc *MessagingClient) buildOutboundMessage(cfg Config, tokens *TokenManager, msg TextMessage) outboundMessage {
	connectorID := tokens.ConnectorID()
	if connectorID == "" {
		connectorID = cfg.ConnectorID
	}

	contextParameters := map[string]string{
		"category": relayCategory,
	}
	for name, value := range msg.ContextParameters {
		contextParameters[name] = value
	}

	return outboundMessage{
		ConnectorID: connectorID,
		Channel:     "SMS",
		Headers: MessageHeaders{
			From: msg.From,
			To:   []string{msg.To},
		},
		Body: MessageBody{
			Text: msg.Text,
		},
		ContextParameters: contextParameters,
		ProviderMetaData: ProviderMetaData{
			MessageID:        msg.ProviderMessageID,
			MessageTimestamp: mc.nower.Now().UTC().Format(time.RFC3339),
		},
	}
}

// Health is the degraded-auth signal surfaced on the health endpoint
type Health struct {
	Initialized bool `json:"initialized"`
	TokenFresh  bool `json:"tokenFresh"`
	MockMode    bool `json:"mockMode"`
}

func (mc *MessagingClient) Health() Health {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	return Health{
		Initialized: mc.initialized,
		TokenFresh:  mc.tokens.Healthy(),
		MockMode:    mc.cfg.MockMode,
	}
}

// Dispose releases the token manager and its pending renewal timer
func (mc *MessagingClient) Dispose() {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.tokens.Dispose()
	mc.initialized = false
}
