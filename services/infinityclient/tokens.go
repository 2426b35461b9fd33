package infinityclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smsconnect/infinity-twilio-connector/lib/myhttpclient"
	"github.com/smsconnect/infinity-twilio-connector/lib/mylog"
	"github.com/smsconnect/infinity-twilio-connector/lib/mypubsub"
	"github.com/smsconnect/infinity-twilio-connector/lib/mytime"
	"github.com/smsconnect/infinity-twilio-connector/services/connectorevents"
)

const (
	tokenPath = "/auth/realms/avaya/protocol/openid-connect/token"

	// Renew this long before the token expires
	tokenRefreshMargin = 60 * time.Second

	// Fallback when the expiry-based interval is unusable
	defaultRefreshInterval = 60 * time.Second

	// Backoff window for retrying a failed renewal
	refreshRetryMin = 5 * time.Second
	refreshRetryMax = defaultRefreshInterval

	mockAccessToken = "mock_access_token"
)

var (
	// ErrNotInitialized is returned when a token is requested before any
	// successful fetch
	ErrNotInitialized = errors.New("access token not initialized: call Initialize first")

	// ErrTokenDecode flags a token whose payload could not be decoded,
	// as opposed to a fetch that failed on the wire
	ErrTokenDecode = errors.New("unable to decode access token")
)

// TokenManager owns one client-credentials access token for one credential
// set and keeps it fresh. After a successful Initialize it schedules its own
// renewal ahead of the token expiry. A failed renewal keeps the previous
// (stale-but-valid) token and retries with backoff until the provider is
// reachable again; Healthy reports false in the meantime.
//
// Replacing credentials means constructing a new TokenManager and disposing
// the old one. All state is per instance, nothing is process-wide.
type TokenManager struct {
	sender    myhttpclient.HTTPSender
	nower     mytime.Nower
	publisher mypubsub.Publisher
	logger    mylog.Logger
	mockMode  bool

	mutex           sync.Mutex
	tokenURL        string
	clientID        string
	clientSecret    string
	accessToken     string
	expiresAt       time.Time
	accountID       string
	connectorID     string
	refreshInterval time.Duration
	refreshTimer    *time.Timer
	retryBackoff    time.Duration
	generation      int
	initialized     bool
	healthy         bool
}

func NewTokenManager(sender myhttpclient.HTTPSender, nower mytime.Nower, publisher mypubsub.Publisher, mockMode bool) *TokenManager {
	return &TokenManager{
		sender:          sender,
		nower:           nower,
		publisher:       publisher,
		logger:          mylog.New("infinitytokens"),
		mockMode:        mockMode,
		refreshInterval: defaultRefreshInterval,
	}
}

// Initialize fetches the first access token and starts the renewal schedule.
// On failure the manager is left uninitialized: the caller must not assume a
// usable token exists.
func (m *TokenManager) Initialize(c context.Context, baseURL string, clientID string, clientSecret string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.logger.Log(c, "", mylog.SeverityInfo, "Initializing Infinity token manager")

	m.stopRefreshLocked(c)

	m.tokenURL = baseURL + tokenPath
	m.clientID = clientID
	m.clientSecret = clientSecret

	err := m.fetchAccessTokenLocked(c)
	if err != nil {
		m.accessToken = ""
		m.initialized = false
		m.healthy = false
		return err
	}

	m.initialized = true
	m.healthy = true
	m.retryBackoff = 0
	m.scheduleRefreshLocked(m.refreshInterval)

	m.logger.Log(c, "", mylog.SeverityInfo, "Infinity token manager initialized successfully")

	return nil
}

// GetAccessToken returns the current token value
func (m *TokenManager) GetAccessToken() (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.accessToken == "" {
		return "", ErrNotInitialized
	}

	return m.accessToken, nil
}

// AccountID returns the account identifier derived from the token, or empty
func (m *TokenManager) AccountID() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.accountID
}

// ConnectorID returns the connector identifier derived from the token, or empty
func (m *TokenManager) ConnectorID() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.connectorID
}

func (m *TokenManager) IsInitialized() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.initialized
}

// Healthy reports whether the most recent fetch or renewal succeeded
func (m *TokenManager) Healthy() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.initialized && m.healthy
}

// Dispose cancels the pending renewal and clears all token state. The
// manager must not be used afterwards.
func (m *TokenManager) Dispose() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.stopRefreshLocked(context.Background())
	m.accessToken = ""
	m.accountID = ""
	m.connectorID = ""
	m.initialized = false
	m.healthy = false
}

// fetchAccessTokenLocked performs one client-credentials token request and
// replaces the token state as a unit. Callers hold the mutex.
func (m *TokenManager) fetchAccessTokenLocked(c context.Context) error {
	if m.mockMode {
		m.logger.Log(c, "", mylog.SeverityWarn, "Infinity running in mock mode: skipping access token retrieval")
		m.accessToken = mockAccessToken
		m.refreshInterval = defaultRefreshInterval
		return nil
	}

	requestBody := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {m.clientID},
		"client_secret": {m.clientSecret},
	}.Encode()

	httpStatus, respBody, err := m.sender.Send(c, http.MethodPost, m.tokenURL,
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, []byte(requestBody))
	if err != nil {
		return fmt.Errorf("error fetching access token: %s", err)
	}

	if httpStatus != http.StatusOK {
		return fmt.Errorf("failed to obtain access token: status %d: %s", httpStatus, respBody)
	}

	resp := tokenResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return fmt.Errorf("error parsing token response: %s", err)
	}

	claims, err := decodeTokenClaims(resp.AccessToken)
	if err != nil {
		return err
	}

	now := m.nower.Now()
	interval := claims.expiresAt.Sub(now) - tokenRefreshMargin
	if interval <= 0 {
		m.logger.Log(c, "", mylog.SeverityWarn,
			"Access token already expired or about to: falling back to default refresh interval")
		interval = defaultRefreshInterval
	}

	m.accessToken = resp.AccessToken
	m.expiresAt = claims.expiresAt
	m.accountID = claims.accountID
	m.connectorID = claims.connectorID
	m.refreshInterval = interval

	m.logger.Log(c, "", mylog.SeverityInfo, "Access token obtained, expires at %s, renewal in %s",
		claims.expiresAt.UTC().Format(time.RFC3339), interval)

	return nil
}

// scheduleRefreshLocked arms the single renewal timer. Any previously
// pending timer is cancelled first, so at most one exists per manager.
func (m *TokenManager) scheduleRefreshLocked(interval time.Duration) {
	m.stopRefreshLocked(context.Background())

	generation := m.generation
	m.refreshTimer = time.AfterFunc(interval, func() {
		m.onRefreshTimer(generation)
	})
}

// stopRefreshLocked cancels the pending renewal timer, if any. Bumping the
// generation makes an already-fired callback a no-op.
func (m *TokenManager) stopRefreshLocked(c context.Context) {
	m.generation++
	if m.refreshTimer != nil {
		m.refreshTimer.Stop()
		m.refreshTimer = nil
		m.logger.Log(c, "", mylog.SeverityDebug, "Cancelled pending access token renewal")
	}
}

func (m *TokenManager) onRefreshTimer(generation int) {
	c := context.Background()

	clientID, event := m.renewOnce(c, generation)
	if event == nil {
		return
	}

	err := connectorevents.Publish(c, m.publisher, event)
	if err != nil {
		m.logger.Log(c, clientID, mylog.SeverityError, "Error publishing token event: %s", err)
	}
}

// renewOnce performs one renewal attempt and schedules the next firing:
// after the regular interval on success, after a backoff on failure. The
// previous token stays usable while renewals fail.
func (m *TokenManager) renewOnce(c context.Context, generation int) (string, connectorevents.Event) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if generation != m.generation {
		// Disposed or reinitialized while this firing was in flight
		return "", nil
	}
	m.refreshTimer = nil

	err := m.fetchAccessTokenLocked(c)
	if err != nil {
		m.healthy = false
		if m.retryBackoff == 0 {
			m.retryBackoff = refreshRetryMin
		} else {
			m.retryBackoff *= 2
			if m.retryBackoff > refreshRetryMax {
				m.retryBackoff = refreshRetryMax
			}
		}
		m.logger.Log(c, "", mylog.SeverityError, "Failed to renew access token (retry in %s): %s", m.retryBackoff, err)
		m.scheduleRefreshLocked(m.retryBackoff)

		return m.clientID, connectorevents.TokenRefreshFailed{
			ClientID:     m.clientID,
			ErrorMessage: err.Error(),
		}
	}

	m.healthy = true
	m.retryBackoff = 0
	m.scheduleRefreshLocked(m.refreshInterval)

	m.logger.Log(c, "", mylog.SeverityInfo, "Access token renewed successfully")

	return m.clientID, connectorevents.TokenRefreshed{
		ClientID:  m.clientID,
		ExpiresAt: m.expiresAt.UTC().Format(time.RFC3339),
	}
}

type tokenClaims struct {
	expiresAt   time.Time
	accountID   string
	connectorID string
}

// decodeTokenClaims extracts expiry and ownership claims from the token
// payload. The token was just issued by the provider over TLS, so the
// signature is not verified here.
func decodeTokenClaims(accessToken string) (tokenClaims, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(accessToken, claims)
	if err != nil {
		return tokenClaims{}, fmt.Errorf("%w: %s", ErrTokenDecode, err)
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return tokenClaims{}, fmt.Errorf("%w: missing exp claim", ErrTokenDecode)
	}

	return tokenClaims{
		expiresAt:   expiry.Time,
		accountID:   firstStringClaim(claims, "organization"),
		connectorID: firstStringClaim(claims, "owner"),
	}, nil
}

func firstStringClaim(claims jwt.MapClaims, name string) string {
	values, ok := claims[name].([]interface{})
	if !ok || len(values) == 0 {
		return ""
	}
	value, _ := values[0].(string)
	return value
}
