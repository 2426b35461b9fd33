package infinityclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/smsconnect/infinity-twilio-connector/lib/mylog"
)

// SignaturePrefix is the literal every Infinity event signature starts with.
const SignaturePrefix = "sha256="

// Verifier checks the x-avaya-event-signature header on inbound webhook
// events. The signature is the base64-encoded HMAC-SHA256 of the request
// body, computed with the webhook secret configured on the Infinity side.
type Verifier struct {
	logger mylog.Logger
}

func NewVerifier() *Verifier {
	return &Verifier{
		logger: mylog.New("signature"),
	}
}

// Verify reports whether the signature matches the body. The body must be
// the exact bytes as read from the wire: re-marshalling a parsed payload
// changes key order and whitespace and would invalidate a correct signature.
// An empty secret disables verification altogether.
func (v *Verifier) Verify(c context.Context, body []byte, signature string, secret string) bool {
	if secret == "" {
		v.logger.Log(c, "", mylog.SeverityWarn, "Webhook secret not configured: skipping signature validation")
		return true
	}

	if !strings.HasPrefix(signature, SignaturePrefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := SignaturePrefix + base64.StdEncoding.EncodeToString(mac.Sum(nil))

	// Length check first, then constant-time content comparison
	if len(signature) != len(expected) {
		return false
	}

	return hmac.Equal([]byte(signature), []byte(expected))
}
