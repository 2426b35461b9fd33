package configapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/smsconnect/infinity-twilio-connector/config"
	"github.com/smsconnect/infinity-twilio-connector/lib/mystore"
	"github.com/smsconnect/infinity-twilio-connector/lib/mytime"
	"github.com/smsconnect/infinity-twilio-connector/lib/myuuid"
	"github.com/smsconnect/infinity-twilio-connector/services/infinityclient"
	"github.com/smsconnect/infinity-twilio-connector/services/twilioclient"
)

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, *config.Config, *MockTwilioReconfigurer, *MockInfinityReconfigurer, mystore.Store[ConfigSnapshot]) {
	c := context.TODO()

	cfg := &config.Config{}

	twilio := NewMockTwilioReconfigurer(ctrl)
	infinity := NewMockInfinityReconfigurer(ctrl)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	uuider := myuuid.NewMockUUIDer(ctrl)
	uuider.EXPECT().Create().Return("snapshot-uid-1").AnyTimes()

	snapshotStore, _, err := mystore.NewInMemoryStore[ConfigSnapshot](c)
	assert.NoError(t, err)

	sut := NewWebService(cfg, twilio, infinity, snapshotStore, nower, uuider)
	router := mux.NewRouter()
	err = sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, cfg, twilio, infinity, snapshotStore
}

func TestConfigAPI(t *testing.T) {
	t.Run("get returns masked settings", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, router, cfg, _, _, _ := setup(t, ctrl)

		token := "super-secret-token"
		cfg.Apply(config.Update{Twilio: &config.TwilioUpdate{AuthToken: &token}})

		request := httptest.NewRequest(http.MethodGet, "/api/configs", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `"authToken": "sup***en"`)
		assert.NotContains(t, response.Body.String(), token)
	})

	t.Run("twilio update reinitializes the twilio client only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, router, _, twilio, _, snapshotStore := setup(t, ctrl)

		twilio.EXPECT().Reinitialize(gomock.Any(), twilioclient.Config{
			AccountSID: "AC123",
			AuthToken:  "new-auth-token",
		})

		body := `{"twilio":{"accountSid":"AC123","authToken":"new-auth-token"}}`
		request := httptest.NewRequest(http.MethodPost, "/api/configs", strings.NewReader(body))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `"authToken": "new***en"`)

		snapshot, exists, err := snapshotStore.Get(c, "snapshot-uid-1")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "new***en", snapshot.Settings.Twilio.AuthToken)
	})

	t.Run("infinity update reinitializes the infinity client only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, router, _, _, infinity, _ := setup(t, ctrl)

		infinity.EXPECT().Reinitialize(gomock.Any(), infinityclient.Config{
			Host:     "infinity.example.com",
			ClientID: "my-client",
		})

		body := `{"infinity":{"host":"infinity.example.com","clientId":"my-client"}}`
		request := httptest.NewRequest(http.MethodPost, "/api/configs", strings.NewReader(body))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 200, response.Code)
	})

	t.Run("clearing the infinity host falls back to mock mode", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, router, cfg, _, infinity, _ := setup(t, ctrl)

		host := "infinity.example.com"
		cfg.Apply(config.Update{Infinity: &config.InfinityUpdate{Host: &host}})

		infinity.EXPECT().Reinitialize(gomock.Any(), infinityclient.Config{MockMode: true})

		body := `{"infinity":{"host":""}}`
		request := httptest.NewRequest(http.MethodPost, "/api/configs", strings.NewReader(body))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `"mockMode": true`)
	})

	t.Run("no-op update reinitializes nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// No Reinitialize expectations: any call fails the test
		c, router, _, _, _, snapshotStore := setup(t, ctrl)

		request := httptest.NewRequest(http.MethodPost, "/api/configs", strings.NewReader(`{}`))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 200, response.Code)

		_, exists, err := snapshotStore.Get(c, "snapshot-uid-1")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("malformed update is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, router, _, _, _, _ := setup(t, ctrl)

		request := httptest.NewRequest(http.MethodPost, "/api/configs", strings.NewReader(`{not json`))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 400, response.Code)
	})
}
