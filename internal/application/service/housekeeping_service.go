package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sirupsen/logrus"
)

const housekeepingTimeout = 2 * time.Minute

// HousekeepingService periodically purges expired refresh tokens and
// idempotency keys
type HousekeepingService struct {
	tokens      repository.RefreshTokenRepository
	idempotency repository.IdempotencyRepository
	retention   time.Duration
	now         func() time.Time
	cron        *cron.Cron
	log         logrus.FieldLogger
}

// NewHousekeepingService creates a housekeeping job. Refresh tokens are kept
// for retention after they expire so a replayed token can still be traced.
func NewHousekeepingService(
	tokens repository.RefreshTokenRepository,
	idempotency repository.IdempotencyRepository,
	retention time.Duration,
	log logrus.FieldLogger,
) *HousekeepingService {
	return &HousekeepingService{
		tokens:      tokens,
		idempotency: idempotency,
		retention:   retention,
		now:         time.Now,
		cron:        newCron(log),
		log:         log,
	}
}

func newCron(log logrus.FieldLogger) *cron.Cron {
	cl := cronLogger{log: log.WithField("component", "cron")}
	return cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))
}

// cronLogger sends the cron runner's messages to logrus
type cronLogger struct {
	log logrus.FieldLogger
}

// Info logs the runner's chatter at debug level; a skipped run is a warning
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	entry := l.log.WithFields(cronFields(keysAndValues))
	if msg == "skip" {
		entry.Warn("housekeeping run skipped, previous run still active")
		return
	}
	entry.Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(cronFields(keysAndValues)).WithError(err).Error(msg)
}

func cronFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// Start registers the job on schedule and starts the cron runner
func (s *HousekeepingService) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), housekeepingTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	s.log.WithField("schedule", schedule).Info("housekeeping started")
	s.cron.Start()
	return nil
}

// Stop stops the runner and waits for a running job
func (s *HousekeepingService) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce performs one purge pass. Failures are logged; one table failing
// does not stop the other.
func (s *HousekeepingService) RunOnce(ctx context.Context) {
	now := s.now()

	tokens, err := s.tokens.DeleteExpired(ctx, now.Add(-s.retention))
	if err != nil {
		s.log.WithError(err).Error("failed to purge refresh tokens")
	}
	keys, err := s.idempotency.DeleteExpired(ctx, now)
	if err != nil {
		s.log.WithError(err).Error("failed to purge idempotency keys")
	}

	s.log.WithFields(logrus.Fields{
		"refresh_tokens":   tokens,
		"idempotency_keys": keys,
	}).Debug("housekeeping pass finished")
}
