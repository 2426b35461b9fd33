package configapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smsconnect/infinity-twilio-connector/config"
	"github.com/smsconnect/infinity-twilio-connector/lib/mycontext"
	"github.com/smsconnect/infinity-twilio-connector/lib/myerrors"
	"github.com/smsconnect/infinity-twilio-connector/lib/myhttp"
	"github.com/smsconnect/infinity-twilio-connector/lib/mylog"
	"github.com/smsconnect/infinity-twilio-connector/lib/mystore"
	"github.com/smsconnect/infinity-twilio-connector/lib/mytime"
	"github.com/smsconnect/infinity-twilio-connector/lib/myuuid"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewWebService(cfg *config.Config, twilio TwilioReconfigurer, infinity InfinityReconfigurer, snapshotStore mystore.Store[ConfigSnapshot], nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("configapi")

	return &webService{
		logger:  logger,
		service: newService(logger, cfg, twilio, infinity, snapshotStore, nower, uuider),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/configs", s.getConfig()).Methods("GET")
	router.HandleFunc("/api/configs", s.updateConfig()).Methods("POST")

	return nil
}

func (s *webService) getConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		responseWriter.Write(c, w, http.StatusOK, s.service.cfg.Masked())
	}
}

func (s *webService) updateConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		update := config.Update{}
		err := json.NewDecoder(r.Body).Decode(&update)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing update: %s", err)))
			return
		}

		masked := s.service.apply(c, update)

		responseWriter.Write(c, w, http.StatusOK, masked)
	}
}
