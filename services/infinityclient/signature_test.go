package infinityclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return SignaturePrefix + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerify(t *testing.T) {
	c := context.TODO()
	verifier := NewVerifier()

	body := []byte(`{"eventType":"MESSAGES","messageId":"m1"}`)
	secret := "hush-hush"

	t.Run("valid signature matches", func(t *testing.T) {
		assert.True(t, verifier.Verify(c, body, sign(body, secret), secret))
	})

	t.Run("mutated body does not match", func(t *testing.T) {
		signature := sign(body, secret)

		mutated := append([]byte{}, body...)
		mutated[0] ^= 0x01

		assert.False(t, verifier.Verify(c, mutated, signature, secret))
	})

	t.Run("mutated signature does not match", func(t *testing.T) {
		signature := []byte(sign(body, secret))
		signature[len(signature)-1] ^= 0x01

		assert.False(t, verifier.Verify(c, body, string(signature), secret))
	})

	t.Run("wrong secret does not match", func(t *testing.T) {
		assert.False(t, verifier.Verify(c, body, sign(body, "other"), secret))
	})

	t.Run("empty secret bypasses verification", func(t *testing.T) {
		assert.True(t, verifier.Verify(c, body, "", ""))
		assert.True(t, verifier.Verify(c, body, "sha256=bogus", ""))
	})

	t.Run("missing prefix is rejected", func(t *testing.T) {
		signature := sign(body, secret)

		assert.False(t, verifier.Verify(c, body, signature[len(SignaturePrefix):], secret))
		assert.False(t, verifier.Verify(c, body, "", secret))
	})

	t.Run("length mismatch is rejected", func(t *testing.T) {
		assert.False(t, verifier.Verify(c, body, sign(body, secret)+"a", secret))
		assert.False(t, verifier.Verify(c, body, "sha256=short", secret))
	})
}
