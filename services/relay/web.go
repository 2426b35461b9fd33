package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/smsconnect/infinity-twilio-connector/config"
	"github.com/smsconnect/infinity-twilio-connector/lib/mycontext"
	"github.com/smsconnect/infinity-twilio-connector/lib/myerrors"
	"github.com/smsconnect/infinity-twilio-connector/lib/myhttp"
	"github.com/smsconnect/infinity-twilio-connector/lib/mylog"
	"github.com/smsconnect/infinity-twilio-connector/lib/mypubsub"
	"github.com/smsconnect/infinity-twilio-connector/lib/mystore"
	"github.com/smsconnect/infinity-twilio-connector/lib/mytime"
	"github.com/smsconnect/infinity-twilio-connector/lib/myuuid"
	"github.com/smsconnect/infinity-twilio-connector/services/infinityclient"
)

var formDecoder = form.NewDecoder()

type webService struct {
	logger   mylog.Logger
	cfg      *config.Config
	verifier *infinityclient.Verifier
	service  *service
}

type relayResponse struct {
	Success bool `json:"success"`
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewWebService(cfg *config.Config, forwarder Forwarder, messenger Messenger, auditStore mystore.Store[AuditRecord], publisher mypubsub.Publisher, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("relay")

	return &webService{
		logger:   logger,
		cfg:      cfg,
		verifier: infinityclient.NewVerifier(),
		service:  newService(logger, forwarder, messenger, auditStore, publisher, nower, uuider),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/callbacks/avaya/infinity/sms", s.infinityWebhook()).Methods("POST")
	router.HandleFunc("/callbacks/twilio/sms", s.twilioWebhook()).Methods("POST")

	return s.service.createTopic(c)
}

// infinityWebhook handles events posted by Infinity. The signature is
// checked over the body bytes exactly as read from the wire.
func (s *webService) infinityWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error reading request body: %s", err)))
			return
		}

		secret := s.cfg.Infinity().WebhookSecret
		signature := r.Header.Get(SignatureHeader)

		if secret != "" && !strings.HasPrefix(signature, infinityclient.SignaturePrefix) {
			responseWriter.WriteError(c, w, 2, myerrors.NewUnauthenticatedError(fmt.Errorf("missing or malformed event signature")))
			return
		}

		if !s.verifier.Verify(c, body, signature, secret) {
			responseWriter.WriteError(c, w, 3, myerrors.NewAuthenticationError(fmt.Errorf("event signature mismatch")))
			return
		}

		event := InfinityEvent{}
		err = json.Unmarshal(body, &event)
		if err != nil {
			responseWriter.WriteError(c, w, 4, myerrors.NewInvalidInputError(fmt.Errorf("error parsing event: %s", err)))
			return
		}

		switch event.EventType {
		case eventTypeHealthCheck:
			s.logger.Log(c, "", mylog.SeverityInfo, "Health check event received")

		case eventTypeMessages:
			err = s.service.relayInfinityMessage(c, event)
			if err != nil {
				responseWriter.WriteError(c, w, 5, err)
				return
			}

		default:
			// Unknown event types are acknowledged so Infinity does not retry them
			s.logger.Log(c, "", mylog.SeverityWarn, "Ignoring event of unknown type %s", event.EventType)
		}

		responseWriter.Write(c, w, http.StatusOK, relayResponse{Success: true})
	}
}

// twilioWebhook handles inbound SMS notifications from Twilio. Twilio posts
// form-encoded bodies; JSON is accepted as well for manual testing.
func (s *webService) twilioWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		inbound, err := parseTwilioWebhook(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing webhook: %s", err)))
			return
		}

		err = s.service.relayTwilioMessage(c, inbound)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "OK"})
	}
}

func parseTwilioWebhook(r *http.Request) (TwilioInboundMessage, error) {
	inbound := TwilioInboundMessage{}

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&inbound)
		return inbound, err
	}

	err := r.ParseForm()
	if err != nil {
		return inbound, err
	}

	err = formDecoder.Decode(&inbound, r.PostForm)

	return inbound, err
}
