package configapi

import (
	"context"
	"time"

	"github.com/smsconnect/infinity-twilio-connector/config"
	"github.com/smsconnect/infinity-twilio-connector/lib/mylog"
	"github.com/smsconnect/infinity-twilio-connector/lib/mystore"
	"github.com/smsconnect/infinity-twilio-connector/lib/mytime"
	"github.com/smsconnect/infinity-twilio-connector/lib/myuuid"
)

// ConfigSnapshot is the stored trace of one applied configuration change.
// Only the masked view is persisted: credentials never hit the store.
type ConfigSnapshot struct {
	UID       string
	AppliedAt time.Time
	Settings  config.Masked
}

type service struct {
	logger        mylog.Logger
	cfg           *config.Config
	twilio        TwilioReconfigurer
	infinity      InfinityReconfigurer
	snapshotStore mystore.Store[ConfigSnapshot]
	nower         mytime.Nower
	uuider        myuuid.UUIDer
}

func newService(logger mylog.Logger, cfg *config.Config, twilio TwilioReconfigurer, infinity InfinityReconfigurer, snapshotStore mystore.Store[ConfigSnapshot], nower mytime.Nower, uuider myuuid.UUIDer) *service {
	return &service{
		logger:        logger,
		cfg:           cfg,
		twilio:        twilio,
		infinity:      infinity,
		snapshotStore: snapshotStore,
		nower:         nower,
		uuider:        uuider,
	}
}

// apply merges the update and reinitializes only the clients whose
// credentials actually changed. The Infinity client fetches its next token
// lazily on the first send after a change.
func (s *service) apply(c context.Context, update config.Update) config.Masked {
	twilioChanged, infinityChanged := s.cfg.Apply(update)

	if twilioChanged {
		s.logger.Log(c, "", mylog.SeverityInfo, "Twilio configuration changed: reinitializing client")
		s.twilio.Reinitialize(c, ToTwilioConfig(s.cfg.Twilio()))
	}

	if infinityChanged {
		s.logger.Log(c, "", mylog.SeverityInfo, "Infinity configuration changed: reinitializing client")
		s.infinity.Reinitialize(c, ToInfinityConfig(s.cfg.Infinity()))
	}

	masked := s.cfg.Masked()

	if twilioChanged || infinityChanged {
		snapshot := ConfigSnapshot{
			UID:       s.uuider.Create(),
			AppliedAt: s.nower.Now(),
			Settings:  masked,
		}
		err := s.snapshotStore.Put(c, snapshot.UID, snapshot)
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityWarn, "Error storing config snapshot: %s", err)
		}
	}

	return masked
}
