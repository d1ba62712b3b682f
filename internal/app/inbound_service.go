package app

import (
	"context"
	"fmt"
	"math/rand"

	"immunization_reminder_bot/internal/domain/baby"
	"immunization_reminder_bot/internal/domain/clock"
	"immunization_reminder_bot/internal/domain/command"
	"immunization_reminder_bot/internal/domain/immunization"
	"immunization_reminder_bot/internal/domain/message"
	"immunization_reminder_bot/internal/domain/sms"
	"immunization_reminder_bot/internal/domain/worker"
	idb "immunization_reminder_bot/internal/infra/database"
	"immunization_reminder_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

const babyIDAttempts = 100

// InboundService processes one inbound SMS end to end: parse the body,
// apply the command against the store, and return the reply text. A
// malformed body is answered with guidance, never an error.
type InboundService struct {
	babyRepo     baby.Repository
	scheduleRepo immunization.Repository
	workerRepo   worker.Repository
	calendar     *immunization.Calendar
	catalog      *message.Catalog
	clk          clock.Clock
	metrics      *metrics.DispatchMetrics
	logger       *logrus.Entry
	locale       string
}

func NewInboundService(
	br baby.Repository,
	sr immunization.Repository,
	wr worker.Repository,
	cal *immunization.Calendar,
	catalog *message.Catalog,
	clk clock.Clock,
	m *metrics.DispatchMetrics,
	logger *logrus.Entry,
	locale string,
) *InboundService {
	return &InboundService{
		babyRepo:     br,
		scheduleRepo: sr,
		workerRepo:   wr,
		calendar:     cal,
		catalog:      catalog,
		clk:          clk,
		metrics:      m,
		logger:       logger,
		locale:       locale,
	}
}

// ProcessIncoming parses and applies one inbound SMS and returns the
// reply body to send back to fromPhone.
func (s *InboundService) ProcessIncoming(ctx context.Context, fromPhone, body string) (string, error) {
	fromPhone = sms.NormalizePhone(fromPhone)
	msgLogger := s.logger.WithFields(logrus.Fields{
		"from":    fromPhone,
		"preview": truncate(body, 50),
	})
	msgLogger.Info("Inbound SMS received")

	cmd := command.Parse(body)
	switch c := cmd.(type) {
	case command.Register:
		s.metrics.ObserveInbound("register")
		return s.handleRegister(ctx, fromPhone, c, msgLogger)
	case command.ReportDone:
		s.metrics.ObserveInbound("report_done")
		return s.handleReportDone(ctx, fromPhone, c, msgLogger)
	case command.Info:
		s.metrics.ObserveInbound("info")
		return s.handleInfo(ctx, fromPhone, c, msgLogger)
	case command.Help:
		s.metrics.ObserveInbound("help")
		return s.catalog.Compose(message.KindHelp, s.locale, message.Vars{})
	default:
		s.metrics.ObserveInbound("unknown")
		msgLogger.Info("Unrecognized inbound command")
		return s.catalog.Compose(message.KindInvalidFormat, s.locale, message.Vars{})
	}
}

func (s *InboundService) handleRegister(ctx context.Context, fromPhone string, c command.Register, msgLogger *logrus.Entry) (string, error) {
	now := s.clk.Now()

	existing, err := s.babyRepo.FindByIdentity(ctx, c.BabyName, c.MotherName, immunization.DateOnly(c.BirthDate))
	if err == nil {
		msgLogger.WithField("baby_id", existing.ID).Info("Duplicate registration")
		return s.catalog.Compose(message.KindAlreadyRegistered, s.locale, message.Vars{
			BabyName: existing.Name,
			BabyID:   existing.ID,
		})
	}
	if err != idb.ErrBabyNotFound {
		return "", fmt.Errorf("checking existing registration: %w", err)
	}

	records, err := s.calendar.Generate("", c.BirthDate, now)
	if err != nil {
		if err == immunization.ErrBirthDateInFuture {
			msgLogger.Warn("Registration rejected: birth date in the future")
			return s.catalog.Compose(message.KindInvalidFormat, s.locale, message.Vars{})
		}
		return "", fmt.Errorf("generating schedule: %w", err)
	}

	babyID, err := s.generateBabyID(ctx)
	if err != nil {
		return "", fmt.Errorf("generating baby ID: %w", err)
	}

	newBaby := &baby.Baby{
		ID:          babyID,
		Name:        c.BabyName,
		MotherName:  c.MotherName,
		Village:     c.Village,
		ParentPhone: fromPhone,
		BirthDate:   immunization.DateOnly(c.BirthDate),
	}
	if err := s.babyRepo.Create(ctx, newBaby); err != nil {
		return "", fmt.Errorf("creating baby record: %w", err)
	}

	for _, rec := range records {
		rec.BabyID = babyID
	}
	if err := s.scheduleRepo.BulkCreateSchedules(ctx, records); err != nil {
		return "", fmt.Errorf("creating schedule records: %w", err)
	}

	msgLogger.WithFields(logrus.Fields{
		"baby_id":   babyID,
		"schedules": len(records),
	}).Info("Baby registered")

	return s.catalog.Compose(message.KindRegistrationSuccess, s.locale, message.Vars{
		BabyName:      newBaby.Name,
		BabyID:        babyID,
		MotherName:    newBaby.MotherName,
		Village:       newBaby.Village,
		ScheduleLines: scheduleLines(records),
	})
}

func (s *InboundService) handleReportDone(ctx context.Context, fromPhone string, c command.ReportDone, msgLogger *logrus.Entry) (string, error) {
	w, err := s.workerRepo.GetByPhone(ctx, fromPhone)
	if err != nil {
		if err == idb.ErrWorkerNotFound {
			msgLogger.Warn("Report from unregistered phone")
			return s.catalog.Compose(message.KindUnauthorizedReporter, s.locale, message.Vars{})
		}
		return "", fmt.Errorf("checking reporter: %w", err)
	}
	if !w.IsActive {
		msgLogger.WithField("worker_id", w.ID).Warn("Report from deactivated health worker")
		return s.catalog.Compose(message.KindUnauthorizedReporter, s.locale, message.Vars{})
	}

	if _, ok := s.calendar.Lookup(c.DoseCode); !ok {
		msgLogger.WithField("dose", c.DoseCode).Info("Report names unknown dose")
		return s.catalog.Compose(message.KindScheduleNotFound, s.locale, message.Vars{
			BabyID:   c.BabyID,
			DoseCode: c.DoseCode,
		})
	}

	rec, err := s.scheduleRepo.GetOpenSchedule(ctx, c.BabyID, c.DoseCode)
	if err != nil {
		if err == idb.ErrScheduleNotFound {
			return s.catalog.Compose(message.KindScheduleNotFound, s.locale, message.Vars{
				BabyID:   c.BabyID,
				DoseCode: c.DoseCode,
			})
		}
		return "", fmt.Errorf("finding open schedule: %w", err)
	}

	won, err := s.scheduleRepo.CompareAndSetStatus(ctx, rec.ID, rec.Status, immunization.StatusDone)
	if err != nil {
		return "", fmt.Errorf("marking schedule done: %w", err)
	}
	if !won {
		// Lost the race. If the other writer got it to DONE the report
		// is already recorded and the losing write simply drops.
		current, err := s.scheduleRepo.GetScheduleByID(ctx, rec.ID)
		if err != nil {
			return "", fmt.Errorf("re-reading schedule after conflict: %w", err)
		}
		if current.Status != immunization.StatusDone {
			if _, err := s.scheduleRepo.CompareAndSetStatus(ctx, rec.ID, current.Status, immunization.StatusDone); err != nil {
				return "", fmt.Errorf("marking schedule done after conflict: %w", err)
			}
		}
		msgLogger.WithField("schedule_id", rec.ID).Info("Report raced another update; newer state kept")
	}

	b, err := s.babyRepo.GetByID(ctx, c.BabyID)
	if err != nil {
		return "", fmt.Errorf("loading baby for report reply: %w", err)
	}

	msgLogger.WithFields(logrus.Fields{
		"schedule_id": rec.ID,
		"worker_id":   w.ID,
	}).Info("Immunization reported complete")

	return s.catalog.Compose(message.KindReportSuccess, s.locale, message.Vars{
		BabyName:   b.Name,
		DoseCode:   c.DoseCode,
		WorkerName: w.Name,
	})
}

func (s *InboundService) handleInfo(ctx context.Context, fromPhone string, c command.Info, msgLogger *logrus.Entry) (string, error) {
	b, err := s.babyRepo.GetByID(ctx, c.BabyID)
	if err != nil {
		if err == idb.ErrBabyNotFound {
			return s.catalog.Compose(message.KindBabyNotFound, s.locale, message.Vars{BabyID: c.BabyID})
		}
		return "", fmt.Errorf("loading baby for info: %w", err)
	}

	// Only the registered parent or an active health worker may ask.
	if b.ParentPhone != fromPhone {
		w, err := s.workerRepo.GetByPhone(ctx, fromPhone)
		if err != nil && err != idb.ErrWorkerNotFound {
			return "", fmt.Errorf("checking info requester: %w", err)
		}
		if err == idb.ErrWorkerNotFound || !w.IsActive {
			msgLogger.Warn("Unauthorized info request")
			return s.catalog.Compose(message.KindUnauthorizedInfo, s.locale, message.Vars{})
		}
	}

	completed, err := s.scheduleRepo.CountCompletedForBaby(ctx, c.BabyID)
	if err != nil {
		return "", fmt.Errorf("counting completed schedules: %w", err)
	}
	all, err := s.scheduleRepo.ListSchedulesByBaby(ctx, c.BabyID)
	if err != nil {
		return "", fmt.Errorf("listing schedules for info: %w", err)
	}

	upcoming := make([]*immunization.ScheduleRecord, 0, len(all))
	for _, rec := range all {
		if rec.Status != immunization.StatusDone {
			upcoming = append(upcoming, rec)
		}
	}

	return s.catalog.Compose(message.KindInfoResponse, s.locale, message.Vars{
		BabyName:       b.Name,
		BabyID:         b.ID,
		CompletedCount: completed,
		ScheduleLines:  scheduleLines(upcoming),
	})
}

// generateBabyID produces a short district ID of the form LT-042,
// retrying on collision and falling back to a wider random suffix.
func (s *InboundService) generateBabyID(ctx context.Context) (string, error) {
	for i := 0; i < babyIDAttempts; i++ {
		id := fmt.Sprintf("LT-%03d", rand.Intn(999)+1)
		_, err := s.babyRepo.GetByID(ctx, id)
		if err == idb.ErrBabyNotFound {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("LT-%06d", rand.Intn(1000000)), nil
}

func scheduleLines(records []*immunization.ScheduleRecord) []string {
	lines := make([]string, 0, len(records))
	for i, rec := range records {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, rec.DoseCode, rec.DueDate.Format("02-01-2006")))
	}
	return lines
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
