package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smsconnect/infinity-twilio-connector/config"
	"github.com/smsconnect/infinity-twilio-connector/lib/mycontext"
	"github.com/smsconnect/infinity-twilio-connector/lib/myhttp"
	"github.com/smsconnect/infinity-twilio-connector/lib/myhttpclient"
	"github.com/smsconnect/infinity-twilio-connector/lib/mylog"
	"github.com/smsconnect/infinity-twilio-connector/lib/mypubsub"
	"github.com/smsconnect/infinity-twilio-connector/lib/mystore"
	"github.com/smsconnect/infinity-twilio-connector/lib/mytime"
	"github.com/smsconnect/infinity-twilio-connector/lib/myuuid"
	"github.com/smsconnect/infinity-twilio-connector/services/configapi"
	"github.com/smsconnect/infinity-twilio-connector/services/infinityclient"
	"github.com/smsconnect/infinity-twilio-connector/services/relay"
	"github.com/smsconnect/infinity-twilio-connector/services/twilioclient"
)

func main() {
	c := context.Background()
	logger := mylog.New("main")

	cfg := config.Load()

	publisher, publisherCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()

	auditStore, auditStoreCleanup, err := mystore.New[relay.AuditRecord](c)
	if err != nil {
		log.Fatalf("Error creating audit store: %s", err)
	}
	defer auditStoreCleanup()

	snapshotStore, snapshotStoreCleanup, err := mystore.New[configapi.ConfigSnapshot](c)
	if err != nil {
		log.Fatalf("Error creating config snapshot store: %s", err)
	}
	defer snapshotStoreCleanup()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}
	httpClient := myhttpclient.New()

	infinityClient := infinityclient.NewMessagingClient(configapi.ToInfinityConfig(cfg.Infinity()), httpClient, nower, publisher)
	defer infinityClient.Dispose()

	twilioClient := twilioclient.New(configapi.ToTwilioConfig(cfg.Twilio()))

	router := mux.NewRouter()

	relayService := relay.NewWebService(cfg, infinityClient, twilioClient, auditStore, publisher, nower, uuider)
	err = relayService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering relay endpoints: %s", err)
	}

	configService := configapi.NewWebService(cfg, twilioClient, infinityClient, snapshotStore, nower, uuider)
	err = configService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering config endpoints: %s", err)
	}

	router.HandleFunc("/api/health", healthPage(logger, infinityClient)).Methods("GET")

	// Fetch the first access token up front so a broken credential set is
	// visible in the logs and on the health endpoint at startup. Sends
	// retry the initialization lazily, so this failure is not fatal.
	err = infinityClient.Initialize(c)
	if err != nil {
		logger.Log(c, "", mylog.SeverityError, "Error initializing Infinity client at startup: %s", err)
	}

	startWebServerBlocking(router, cfg.Port())
}

type healthResponse struct {
	Status   string                `json:"status"`
	Infinity infinityclient.Health `json:"infinity"`
}

func healthPage(logger mylog.Logger, client *infinityclient.MessagingClient) http.HandlerFunc {
	responseWriter := myhttp.NewWriter(logger)

	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)

		health := client.Health()
		status := "ok"
		if !health.MockMode && (!health.Initialized || !health.TokenFresh) {
			status = "degraded"
		}

		responseWriter.Write(c, w, http.StatusOK, healthResponse{
			Status:   status,
			Infinity: health,
		})
	}
}

func startWebServerBlocking(router *mux.Router, port string) {
	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
