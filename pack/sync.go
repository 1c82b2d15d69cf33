package pack

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Syncer reapplies a pack file on a cron schedule so published content
// updates reach a running server without a restart. A failed sync keeps the
// previous content; pack loads are atomic at the store level.
type Syncer struct {
	store Replacer
	path  string
	log   *logrus.Logger
	cron  *cron.Cron
}

// NewSyncer builds a syncer that reloads path into store.
func NewSyncer(store Replacer, path string, log *logrus.Logger) *Syncer {
	if log == nil {
		log = logrus.New()
	}
	return &Syncer{store: store, path: path, log: log, cron: cron.New()}
}

// Start applies the pack once immediately, then on every tick of schedule
// (standard cron spec, e.g. "@every 5m"). The initial apply is fatal when it
// fails; later failures only log, since serving stale content beats serving
// none.
func (s *Syncer) Start(ctx context.Context, schedule string) error {
	p, err := Apply(ctx, s.store, s.path)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"pack":    p.Name,
		"version": p.Version,
		"recipes": len(p.Recipes),
	}).Info("content pack loaded")

	if schedule == "" {
		return nil
	}
	_, err = s.cron.AddFunc(schedule, func() {
		p, err := Apply(context.Background(), s.store, s.path)
		if err != nil {
			s.log.WithError(err).Warn("pack resync failed, keeping previous content")
			return
		}
		s.log.WithFields(logrus.Fields{
			"pack":    p.Name,
			"version": p.Version,
			"recipes": len(p.Recipes),
		}).Info("content pack resynced")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the resync schedule.
func (s *Syncer) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
