package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/clock"
	"github.com/sangkips/restopos-api/pkg/lock"
	"github.com/sangkips/restopos-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ReportSchedulerConfig holds scheduler timing
type ReportSchedulerConfig struct {
	PollInterval      time.Duration
	Debounce          time.Duration
	FallbackRecipient string
}

// ReportScheduler polls the active schedules and fires the ones that are due
type ReportScheduler struct {
	schedules  repository.ReportScheduleRepository
	settings   repository.GlobalSettingRepository
	dispatcher Dispatcher
	evaluator  *ScheduleEvaluator
	locker     lock.Locker
	clock      *clock.Clock
	config     ReportSchedulerConfig
	log        logrus.FieldLogger

	mu sync.Mutex
	// unrecorded holds runs that were sent but whose last_run write failed
	unrecorded map[uuid.UUID]time.Time
}

// NewReportScheduler creates a new report scheduler. locker may be nil when
// only one process serves the database.
func NewReportScheduler(
	schedules repository.ReportScheduleRepository,
	settings repository.GlobalSettingRepository,
	dispatcher Dispatcher,
	locker lock.Locker,
	clk *clock.Clock,
	config ReportSchedulerConfig,
	log logrus.FieldLogger,
) *ReportScheduler {
	return &ReportScheduler{
		schedules:  schedules,
		settings:   settings,
		dispatcher: dispatcher,
		evaluator:  NewScheduleEvaluator(config.Debounce),
		locker:     locker,
		clock:      clk,
		config:     config,
		log:        log,
		unrecorded: make(map[uuid.UUID]time.Time),
	}
}

// Run ticks once immediately and then every poll interval until ctx is done
func (s *ReportScheduler) Run(ctx context.Context) {
	s.log.WithField("interval", s.config.PollInterval.String()).Info("report scheduler started")

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		s.Tick(ctx)
		select {
		case <-ctx.Done():
			s.log.Info("report scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick evaluates every active schedule against one snapshot of the local time
// and returns how many reports were dispatched. It never panics.
func (s *ReportScheduler) Tick(ctx context.Context) (fired int) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			}).Error("report scheduler tick panicked")
		}
	}()

	now := s.clock.NowLocal()

	schedules, err := s.schedules.ListActive(ctx)
	if err != nil {
		logger.LogError(s.log, "report_scheduler", "Tick", "list active schedules", nil, err)
		return 0
	}
	if len(schedules) == 0 {
		return 0
	}

	recipients, err := s.recipients(ctx)
	if err != nil {
		logger.LogError(s.log, "report_scheduler", "Tick", "load recipients", nil, err)
		return 0
	}

	for i := range schedules {
		ok, err := s.fire(ctx, &schedules[i], now, recipients)
		if err != nil {
			logger.LogError(s.log, "report_scheduler", "Tick", "dispatch", schedules[i].ReportType(), err)
			continue
		}
		if ok {
			fired++
		}
	}
	return fired
}

func (s *ReportScheduler) recipients(ctx context.Context) (string, error) {
	value, found, err := s.settings.Get(ctx, entity.SettingReportEmails)
	if err != nil {
		return "", err
	}
	if !found || strings.TrimSpace(value) == "" {
		return s.config.FallbackRecipient, nil
	}
	return value, nil
}

func (s *ReportScheduler) fire(ctx context.Context, schedule *entity.ReportSchedule, now time.Time, recipients string) (fired bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	due, err := s.evaluator.ShouldFire(s.withUnrecordedRun(schedule), now)
	if err != nil || !due {
		return false, err
	}

	if s.locker != nil {
		key := fmt.Sprintf("report-fire:%s:%s", schedule.ID, now.Format("200601021504"))
		lk, lockErr := s.locker.Obtain(ctx, key, s.config.Debounce, 0)
		if errors.Is(lockErr, lock.ErrNotObtained) {
			s.log.WithField("report", schedule.ReportType()).Debug("slot already taken by another process")
			return false, nil
		}
		if lockErr != nil {
			return false, fmt.Errorf("failed to obtain slot lock: %w", lockErr)
		}
		// the slot lock is kept until its ttl once the report went out, so a
		// late poller cannot refire the same minute
		defer func() {
			if !fired {
				_ = lk.Release(context.Background())
			}
		}()
	}

	window, err := WindowFor(schedule.Cadence, now)
	if err != nil {
		return false, err
	}

	result, err := s.dispatcher.Dispatch(ctx, DispatchRequest{
		Cadence:    schedule.Cadence,
		Category:   schedule.Category,
		Window:     window,
		Recipients: recipients,
	})
	if err != nil {
		return false, err
	}

	if err := s.schedules.MarkRun(ctx, schedule.ID, now); err != nil {
		logger.LogError(s.log, "report_scheduler", "fire", "record last run", schedule.ReportType(), err)
		s.rememberRun(schedule.ID, now)
	} else {
		s.forgetRun(schedule.ID)
	}

	s.log.WithFields(logrus.Fields{
		"report":  schedule.ReportType(),
		"skipped": result.Skipped,
	}).Info("scheduled report fired")
	return true, nil
}

// withUnrecordedRun returns schedule with last_run set to a sent run the
// store missed. An edit made after that run discards it.
func (s *ReportScheduler) withUnrecordedRun(schedule *entity.ReportSchedule) *entity.ReportSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.unrecorded[schedule.ID]
	if !ok {
		return schedule
	}
	if (schedule.LastRun != nil && !schedule.LastRun.Before(at)) || schedule.UpdatedAt.After(at) {
		delete(s.unrecorded, schedule.ID)
		return schedule
	}
	patched := *schedule
	patched.LastRun = &at
	return &patched
}

func (s *ReportScheduler) rememberRun(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	s.unrecorded[id] = at
	s.mu.Unlock()
}

func (s *ReportScheduler) forgetRun(id uuid.UUID) {
	s.mu.Lock()
	delete(s.unrecorded, id)
	s.mu.Unlock()
}
