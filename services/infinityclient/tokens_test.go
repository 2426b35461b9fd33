package infinityclient

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/smsconnect/infinity-twilio-connector/lib/myhttpclient"
	"github.com/smsconnect/infinity-twilio-connector/lib/mypubsub"
	"github.com/smsconnect/infinity-twilio-connector/lib/mytime"
)

const (
	testBaseURL  = "https://infinity.example.com"
	testTokenURL = testBaseURL + tokenPath
)

func makeAccessToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":          expiresAt.Unix(),
		"organization": []string{"acc-1"},
		"owner":        []string{"conn-1"},
	})
	signed, err := token.SignedString([]byte("irrelevant-signing-key"))
	assert.NoError(t, err)

	return signed
}

func makeTokenResponse(t *testing.T, expiresAt time.Time) []byte {
	t.Helper()

	return []byte(fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer"}`, makeAccessToken(t, expiresAt)))
}

func setupTokenManager(t *testing.T, ctrl *gomock.Controller, mockMode bool) (*TokenManager, *myhttpclient.MockHTTPSender, *mypubsub.MockPublisher) {
	t.Helper()

	sender := myhttpclient.NewMockHTTPSender(ctrl)
	publisher := mypubsub.NewMockPublisher(ctrl)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	manager := NewTokenManager(sender, nower, publisher, mockMode)
	t.Cleanup(manager.Dispose)

	return manager, sender, publisher
}

func TestTokenManager(t *testing.T) {
	c := context.TODO()

	t.Run("get token before initialize fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		manager, _, _ := setupTokenManager(t, ctrl, false)

		_, err := manager.GetAccessToken()
		assert.ErrorIs(t, err, ErrNotInitialized)
		assert.False(t, manager.IsInitialized())
	})

	t.Run("initialize fetches and decodes token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		manager, sender, _ := setupTokenManager(t, ctrl, false)

		expiresAt := mytime.ExampleTime.Add(time.Hour)
		accessToken := makeAccessToken(t, expiresAt)
		sender.EXPECT().Send(gomock.Any(), "POST", testTokenURL, gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, method string, u string, headers map[string]string, body []byte) (int, []byte, error) {
				assert.Equal(t, "application/x-www-form-urlencoded", headers["Content-Type"])

				form, err := url.ParseQuery(string(body))
				assert.NoError(t, err)
				assert.Equal(t, "client_credentials", form.Get("grant_type"))
				assert.Equal(t, "my-client", form.Get("client_id"))
				assert.Equal(t, "my-secret", form.Get("client_secret"))

				return 200, []byte(fmt.Sprintf(`{"access_token":%q}`, accessToken)), nil
			})

		err := manager.Initialize(c, testBaseURL, "my-client", "my-secret")
		assert.NoError(t, err)

		got, err := manager.GetAccessToken()
		assert.NoError(t, err)
		assert.Equal(t, accessToken, got)
		assert.Equal(t, "acc-1", manager.AccountID())
		assert.Equal(t, "conn-1", manager.ConnectorID())
		assert.True(t, manager.IsInitialized())
		assert.True(t, manager.Healthy())
		assert.Equal(t, time.Hour-tokenRefreshMargin, manager.refreshInterval)
		assert.NotNil(t, manager.refreshTimer)
	})

	t.Run("non-200 response is fatal for the fetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		manager, sender, _ := setupTokenManager(t, ctrl, false)

		sender.EXPECT().Send(gomock.Any(), "POST", testTokenURL, gomock.Any(), gomock.Any()).
			Return(401, []byte(`{"error":"invalid_client"}`), nil)

		err := manager.Initialize(c, testBaseURL, "my-client", "wrong-secret")
		assert.ErrorContains(t, err, "401")

		_, err = manager.GetAccessToken()
		assert.ErrorIs(t, err, ErrNotInitialized)
		assert.Nil(t, manager.refreshTimer)
	})

	t.Run("malformed token payload is a decode error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		manager, sender, _ := setupTokenManager(t, ctrl, false)

		sender.EXPECT().Send(gomock.Any(), "POST", testTokenURL, gomock.Any(), gomock.Any()).
			Return(200, []byte(`{"access_token":"not-a-jwt"}`), nil)

		err := manager.Initialize(c, testBaseURL, "my-client", "my-secret")
		assert.ErrorIs(t, err, ErrTokenDecode)
	})

	t.Run("expired token clamps renewal interval to default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		manager, sender, _ := setupTokenManager(t, ctrl, false)

		sender.EXPECT().Send(gomock.Any(), "POST", testTokenURL, gomock.Any(), gomock.Any()).
			Return(200, makeTokenResponse(t, mytime.ExampleTime.Add(-time.Minute)), nil)

		err := manager.Initialize(c, testBaseURL, "my-client", "my-secret")
		assert.NoError(t, err)
		assert.Equal(t, defaultRefreshInterval, manager.refreshInterval)
	})

	t.Run("expiry within refresh margin clamps renewal interval to default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		manager, sender, _ := setupTokenManager(t, ctrl, false)

		sender.EXPECT().Send(gomock.Any(), "POST", testTokenURL, gomock.Any(), gomock.Any()).
			Return(200, makeTokenResponse(t, mytime.ExampleTime.Add(30*time.Second)), nil)

		err := manager.Initialize(c, testBaseURL, "my-client", "my-secret")
		assert.NoError(t, err)
		assert.Equal(t, defaultRefreshInterval, manager.refreshInterval)
	})

	t.Run("mock mode skips the token endpoint", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// No Send expectation: any network call fails the test
		manager, _, _ := setupTokenManager(t, ctrl, true)

		err := manager.Initialize(c, testBaseURL, "my-client", "my-secret")
		assert.NoError(t, err)

		got, err := manager.GetAccessToken()
		assert.NoError(t, err)
		assert.Equal(t, "mock_access_token", got)
		assert.Equal(t, defaultRefreshInterval, manager.refreshInterval)
	})

	t.Run("at most one pending timer across initialize and dispose", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		manager, sender, _ := setupTokenManager(t, ctrl, false)

		sender.EXPECT().Send(gomock.Any(), "POST", testTokenURL, gomock.Any(), gomock.Any()).
			Return(200, makeTokenResponse(t, mytime.ExampleTime.Add(time.Hour)), nil).
			Times(2)

		err := manager.Initialize(c, testBaseURL, "my-client", "my-secret")
		assert.NoError(t, err)
		firstTimer := manager.refreshTimer
		assert.NotNil(t, firstTimer)

		// Reinitializing replaces the pending timer instead of adding one
		err = manager.Initialize(c, testBaseURL, "my-client", "my-secret")
		assert.NoError(t, err)
		assert.NotNil(t, manager.refreshTimer)
		assert.NotSame(t, firstTimer, manager.refreshTimer)

		manager.Dispose()
		assert.Nil(t, manager.refreshTimer)

		_, err = manager.GetAccessToken()
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("renewal reschedules after success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		manager, sender, publisher := setupTokenManager(t, ctrl, false)

		// Expiry just past the margin makes the renewal fire almost immediately
		var fetches atomic.Int32
		sender.EXPECT().Send(gomock.Any(), "POST", testTokenURL, gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, method string, u string, headers map[string]string, body []byte) (int, []byte, error) {
				fetches.Add(1)
				return 200, makeTokenResponse(t, mytime.ExampleTime.Add(tokenRefreshMargin+50*time.Millisecond)), nil
			}).MinTimes(2)
		publisher.EXPECT().Publish(gomock.Any(), "connector", gomock.Any()).Return(nil).AnyTimes()

		err := manager.Initialize(c, testBaseURL, "my-client", "my-secret")
		assert.NoError(t, err)

		assert.Eventually(t, func() bool {
			return fetches.Load() >= 2
		}, 2*time.Second, 10*time.Millisecond)
		assert.True(t, manager.Healthy())

		manager.Dispose()
	})

	t.Run("failed renewal keeps stale token and retries with backoff", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		manager, sender, publisher := setupTokenManager(t, ctrl, false)

		var fetches atomic.Int32
		sender.EXPECT().Send(gomock.Any(), "POST", testTokenURL, gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, method string, u string, headers map[string]string, body []byte) (int, []byte, error) {
				if fetches.Add(1) == 1 {
					return 200, makeTokenResponse(t, mytime.ExampleTime.Add(tokenRefreshMargin+50*time.Millisecond)), nil
				}
				return 503, []byte("temporarily unavailable"), nil
			}).MinTimes(2)
		publisher.EXPECT().Publish(gomock.Any(), "connector", gomock.Any()).Return(nil).AnyTimes()

		err := manager.Initialize(c, testBaseURL, "my-client", "my-secret")
		assert.NoError(t, err)

		assert.Eventually(t, func() bool {
			return !manager.Healthy()
		}, 2*time.Second, 10*time.Millisecond)

		// The last good token stays usable while renewals fail
		got, err := manager.GetAccessToken()
		assert.NoError(t, err)
		assert.NotEmpty(t, got)

		manager.mutex.Lock()
		assert.NotNil(t, manager.refreshTimer)
		assert.GreaterOrEqual(t, manager.retryBackoff, refreshRetryMin)
		manager.mutex.Unlock()

		manager.Dispose()
	})
}
