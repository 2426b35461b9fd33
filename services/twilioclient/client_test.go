package twilioclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient(t *testing.T) {
	c := context.TODO()

	t.Run("mock mode returns sentinel sid", func(t *testing.T) {
		client := New(Config{MockMode: true})

		sid, err := client.SendMessage(c, "+31612345678", "+31687654321", "hi there")
		assert.NoError(t, err)
		assert.Equal(t, "mock_message_id", sid)
		assert.True(t, client.IsConfigured())
	})

	t.Run("incomplete credentials leave client unconfigured", func(t *testing.T) {
		client := New(Config{AccountSID: "AC123"})

		assert.False(t, client.IsConfigured())

		_, err := client.SendMessage(c, "+31612345678", "+31687654321", "hi there")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("api key credentials configure the client", func(t *testing.T) {
		client := New(Config{
			AccountSID:   "AC123",
			APIKeySID:    "SK123",
			APIKeySecret: "secret",
		})

		assert.True(t, client.IsConfigured())
	})

	t.Run("auth token credentials configure the client", func(t *testing.T) {
		client := New(Config{
			AccountSID: "AC123",
			AuthToken:  "token",
		})

		assert.True(t, client.IsConfigured())
	})

	t.Run("reinitialize replaces credentials", func(t *testing.T) {
		client := New(Config{AccountSID: "AC123", AuthToken: "token"})
		assert.True(t, client.IsConfigured())

		client.Reinitialize(c, Config{})
		assert.False(t, client.IsConfigured())

		client.Reinitialize(c, Config{MockMode: true})
		sid, err := client.SendMessage(c, "+31612345678", "+31687654321", "hi there")
		assert.NoError(t, err)
		assert.Equal(t, "mock_message_id", sid)
	})
}
