package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"immunization_reminder_bot/internal/domain/baby"
	"immunization_reminder_bot/internal/domain/clock"
	"immunization_reminder_bot/internal/domain/immunization"
	"immunization_reminder_bot/internal/domain/message"
	"immunization_reminder_bot/internal/domain/sms"
	"immunization_reminder_bot/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrRunSkipped is returned when a dispatch trigger fires while another
// run still holds the lock. The trigger skips entirely; it never queues.
var ErrRunSkipped = fmt.Errorf("dispatch run skipped: another run is in progress")

// RunLocker serializes dispatch runs across instances.
type RunLocker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// DispatchConfig tunes one dispatch run.
type DispatchConfig struct {
	LookaheadDays      int
	CooldownHours      int
	MaxAttemptsPerDay  int
	SendTimeout        time.Duration
	MaxConcurrentSends int
	Locale             string
}

// DispatchService owns the daily reminder run: select due records,
// compose texts, send them, record each outcome.
type DispatchService struct {
	babyRepo     baby.Repository
	scheduleRepo immunization.Repository
	calendar     *immunization.Calendar
	sender       sms.Sender
	catalog      *message.Catalog
	locker       RunLocker
	clk          clock.Clock
	metrics      *metrics.DispatchMetrics
	logger       *logrus.Entry
	cfg          DispatchConfig
}

func NewDispatchService(
	br baby.Repository,
	sr immunization.Repository,
	cal *immunization.Calendar,
	sender sms.Sender,
	catalog *message.Catalog,
	locker RunLocker,
	clk clock.Clock,
	m *metrics.DispatchMetrics,
	logger *logrus.Entry,
	cfg DispatchConfig,
) *DispatchService {
	if cfg.MaxConcurrentSends < 1 {
		cfg.MaxConcurrentSends = 1
	}
	return &DispatchService{
		babyRepo:     br,
		scheduleRepo: sr,
		calendar:     cal,
		sender:       sender,
		catalog:      catalog,
		locker:       locker,
		clk:          clk,
		metrics:      m,
		logger:       logger,
		cfg:          cfg,
	}
}

// RunOnce executes a single dispatch run under the run-level lock.
// A concurrent run causes ErrRunSkipped; everything else is logged per
// record and the run carries on.
func (s *DispatchService) RunOnce(ctx context.Context) error {
	acquired, err := s.locker.TryLock(ctx)
	if err != nil {
		return fmt.Errorf("dispatch run could not acquire lock: %w", err)
	}
	if !acquired {
		s.logger.Warn("Dispatch trigger skipped: run already in progress")
		s.metrics.ObserveSkippedRun()
		return ErrRunSkipped
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.WithError(err).Error("Failed to release dispatch lock")
		}
	}()

	now := s.clk.Now()
	startOfDay := immunization.DateOnly(now)

	swept, err := s.scheduleRepo.MarkOverdue(ctx, startOfDay)
	if err != nil {
		return fmt.Errorf("overdue sweep failed: %w", err)
	}
	if swept > 0 {
		s.logger.WithField("count", swept).Info("Marked past-due schedules OVERDUE")
	}

	horizon := startOfDay.AddDate(0, 0, s.cfg.LookaheadDays)
	candidates, err := s.scheduleRepo.ListDueCandidates(ctx, horizon, startOfDay)
	if err != nil {
		return fmt.Errorf("listing due candidates failed: %w", err)
	}

	due, exhausted := immunization.SelectDue(candidates, now, immunization.DueConfig{
		LookaheadDays:     s.cfg.LookaheadDays,
		CooldownHours:     s.cfg.CooldownHours,
		MaxAttemptsPerDay: s.cfg.MaxAttemptsPerDay,
	})
	s.logger.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"due":        len(due),
		"exhausted":  len(exhausted),
	}).Info("Dispatch selection complete")

	for _, rec := range exhausted {
		s.escalate(ctx, rec, now)
	}

	s.sendAll(ctx, due, now)
	return nil
}

// sendAll works through the due records with bounded parallelism. An
// in-flight marker per record ID guarantees no schedule is sent twice
// within one run even if the selection ever produced duplicates.
func (s *DispatchService) sendAll(ctx context.Context, due []*immunization.ScheduleRecord, now time.Time) {
	sem := make(chan struct{}, s.cfg.MaxConcurrentSends)
	inFlight := make(map[int64]bool, len(due))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, rec := range due {
		mu.Lock()
		if inFlight[rec.ID] {
			mu.Unlock()
			continue
		}
		inFlight[rec.ID] = true
		mu.Unlock()

		wg.Add(1)
		sem <- struct{}{}
		go func(rec *immunization.ScheduleRecord) {
			defer wg.Done()
			defer func() { <-sem }()
			s.sendOne(ctx, rec, now)
		}(rec)
	}
	wg.Wait()
}

// sendOne walks one record through COMPOSING, SENDING and RECORDING.
func (s *DispatchService) sendOne(ctx context.Context, rec *immunization.ScheduleRecord, now time.Time) {
	recLogger := s.logger.WithFields(logrus.Fields{
		"schedule_id": rec.ID,
		"baby_id":     rec.BabyID,
		"dose":        rec.DoseCode,
	})

	b, err := s.babyRepo.GetByID(ctx, rec.BabyID)
	if err != nil {
		recLogger.WithError(err).Error("Could not load baby for due schedule")
		return
	}

	text, err := s.composeReminder(rec, b)
	if err != nil {
		recLogger.WithError(err).Error("Could not compose reminder text")
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	sendErr := s.sender.Send(sendCtx, b.ParentPhone, text)
	cancel()

	outcome := &immunization.ReminderOutcome{
		ID:         uuid.NewString(),
		ScheduleID: rec.ID,
		Phone:      b.ParentPhone,
		SentAt:     now,
		Success:    sendErr == nil,
	}
	if sendErr != nil {
		outcome.ErrorDetail = sql.NullString{String: sendErr.Error(), Valid: true}
	}
	if err := s.scheduleRepo.AppendOutcome(ctx, outcome); err != nil {
		recLogger.WithError(err).Error("Failed to append reminder outcome")
	}
	s.metrics.ObserveReminder(sendErr == nil)

	if sendErr != nil {
		// Status stays as-is so the record is re-selected next tick,
		// subject to cooldown and the attempt budget.
		recLogger.WithError(sendErr).Warn("Reminder send failed")
		return
	}

	won, err := s.scheduleRepo.MarkReminded(ctx, rec.ID, rec.Status, now)
	if err != nil {
		recLogger.WithError(err).Error("Failed to mark schedule reminded")
		return
	}
	if !won {
		// The record moved under us (a DONE report raced the send).
		// The newer state wins; nothing to do.
		recLogger.Info("Schedule status changed during send; leaving it")
		return
	}
	recLogger.Info("Reminder sent")
}

func (s *DispatchService) composeReminder(rec *immunization.ScheduleRecord, b *baby.Baby) (string, error) {
	label := rec.DoseCode
	if dose, ok := s.calendar.Lookup(rec.DoseCode); ok {
		label = dose.Label
	}
	kind := message.KindForReminder(rec.Status == immunization.StatusOverdue)
	return s.catalog.Compose(kind, s.cfg.Locale, message.Vars{
		BabyName:   b.Name,
		BabyID:     b.ID,
		MotherName: b.MotherName,
		Village:    b.Village,
		DoseLabel:  label,
		DoseCode:   rec.DoseCode,
		DueDate:    rec.DueDate.Format("02-01-2006"),
	})
}

func (s *DispatchService) escalate(ctx context.Context, rec *immunization.ScheduleRecord, now time.Time) {
	esc := &immunization.Escalation{
		ID:         uuid.NewString(),
		ScheduleID: rec.ID,
		BabyID:     rec.BabyID,
		DoseCode:   rec.DoseCode,
		Reason:     fmt.Sprintf("retry budget exhausted: %d attempts today", rec.AttemptsToday),
		CreatedAt:  now,
	}
	if err := s.scheduleRepo.CreateEscalation(ctx, esc); err != nil {
		s.logger.WithError(err).WithField("schedule_id", rec.ID).Error("Failed to record escalation")
		return
	}
	s.metrics.ObserveEscalation()
	s.logger.WithFields(logrus.Fields{
		"schedule_id": rec.ID,
		"baby_id":     rec.BabyID,
		"dose":        rec.DoseCode,
	}).Warn("Schedule escalated for human review")
}
