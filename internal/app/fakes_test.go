package app

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"immunization_reminder_bot/internal/domain/baby"
	"immunization_reminder_bot/internal/domain/immunization"
	"immunization_reminder_bot/internal/domain/worker"
	idb "immunization_reminder_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// --- in-memory baby repository ---

type fakeBabyRepo struct {
	mu     sync.Mutex
	babies map[string]*baby.Baby
}

func newFakeBabyRepo() *fakeBabyRepo {
	return &fakeBabyRepo{babies: make(map[string]*baby.Baby)}
}

func (r *fakeBabyRepo) Create(_ context.Context, b *baby.Baby) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.babies[b.ID]; ok {
		return idb.ErrDuplicateBabyID
	}
	cp := *b
	r.babies[b.ID] = &cp
	return nil
}

func (r *fakeBabyRepo) GetByID(_ context.Context, id string) (*baby.Baby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.babies[id]
	if !ok {
		return nil, idb.ErrBabyNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBabyRepo) FindByIdentity(_ context.Context, name, motherName string, birthDate time.Time) (*baby.Baby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.babies {
		if strings.EqualFold(b.Name, name) && strings.EqualFold(b.MotherName, motherName) && b.BirthDate.Equal(birthDate) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, idb.ErrBabyNotFound
}

func (r *fakeBabyRepo) ListAll(_ context.Context) ([]*baby.Baby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*baby.Baby, 0, len(r.babies))
	for _, b := range r.babies {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

// --- in-memory health worker repository ---

type fakeWorkerRepo struct {
	mu      sync.Mutex
	nextID  int64
	workers map[string]*worker.Worker
}

func newFakeWorkerRepo() *fakeWorkerRepo {
	return &fakeWorkerRepo{workers: make(map[string]*worker.Worker)}
}

func (r *fakeWorkerRepo) Create(_ context.Context, w *worker.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workers[w.Phone]; ok {
		return idb.ErrDuplicateWorkerPhone
	}
	r.nextID++
	w.ID = r.nextID
	cp := *w
	r.workers[w.Phone] = &cp
	return nil
}

func (r *fakeWorkerRepo) GetByPhone(_ context.Context, phone string) (*worker.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[phone]
	if !ok {
		return nil, idb.ErrWorkerNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWorkerRepo) Update(_ context.Context, w *worker.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workers[w.Phone]; !ok {
		return idb.ErrWorkerNotFound
	}
	cp := *w
	r.workers[w.Phone] = &cp
	return nil
}

func (r *fakeWorkerRepo) ListActive(_ context.Context) ([]*worker.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*worker.Worker, 0, len(r.workers))
	for _, w := range r.workers {
		if w.IsActive {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeWorkerRepo) ListAll(_ context.Context) ([]*worker.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*worker.Worker, 0, len(r.workers))
	for _, w := range r.workers {
		cp := *w
		out = append(out, &cp)
	}
	return out, nil
}

// --- in-memory schedule repository ---

type fakeScheduleRepo struct {
	mu          sync.Mutex
	nextID      int64
	records     map[int64]*immunization.ScheduleRecord
	outcomes    []*immunization.ReminderOutcome
	escalations []*immunization.Escalation
	casDenials  int
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{records: make(map[int64]*immunization.ScheduleRecord)}
}

func (r *fakeScheduleRepo) BulkCreateSchedules(_ context.Context, records []*immunization.ScheduleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.nextID++
		rec.ID = r.nextID
		cp := *rec
		r.records[rec.ID] = &cp
	}
	return nil
}

func (r *fakeScheduleRepo) GetScheduleByID(_ context.Context, id int64) (*immunization.ScheduleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, idb.ErrScheduleNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeScheduleRepo) GetOpenSchedule(_ context.Context, babyID, doseCode string) (*immunization.ScheduleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.BabyID == babyID && rec.DoseCode == doseCode && rec.Status != immunization.StatusDone {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, idb.ErrScheduleNotFound
}

func (r *fakeScheduleRepo) ListSchedulesByBaby(_ context.Context, babyID string) ([]*immunization.ScheduleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*immunization.ScheduleRecord, 0)
	for _, rec := range r.records {
		if rec.BabyID == babyID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) CountCompletedForBaby(_ context.Context, babyID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, rec := range r.records {
		if rec.BabyID == babyID && rec.Status == immunization.StatusDone {
			count++
		}
	}
	return count, nil
}

func (r *fakeScheduleRepo) ListDueCandidates(_ context.Context, horizon, _ time.Time) ([]*immunization.ScheduleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*immunization.ScheduleRecord, 0)
	for _, rec := range r.records {
		if rec.Status != immunization.StatusDone && !rec.DueDate.After(horizon) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) MarkOverdue(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rec := range r.records {
		if rec.Status == immunization.StatusPending && rec.DueDate.Before(before) {
			rec.Status = immunization.StatusOverdue
			n++
		}
	}
	return n, nil
}

func (r *fakeScheduleRepo) CompareAndSetStatus(_ context.Context, id int64, expected, next immunization.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.casDenials > 0 {
		r.casDenials--
		return false, nil
	}
	rec, ok := r.records[id]
	if !ok || rec.Status != expected {
		return false, nil
	}
	rec.Status = next
	return true, nil
}

func (r *fakeScheduleRepo) MarkReminded(_ context.Context, id int64, expected immunization.Status, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.Status != expected {
		return false, nil
	}
	rec.Status = immunization.StatusReminded
	rec.LastRemindedAt.Time = at
	rec.LastRemindedAt.Valid = true
	return true, nil
}

func (r *fakeScheduleRepo) AppendOutcome(_ context.Context, outcome *immunization.ReminderOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *outcome
	r.outcomes = append(r.outcomes, &cp)
	return nil
}

func (r *fakeScheduleRepo) CreateEscalation(_ context.Context, esc *immunization.Escalation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *esc
	r.escalations = append(r.escalations, &cp)
	return nil
}

func (r *fakeScheduleRepo) ListEscalations(_ context.Context, limit int) ([]*immunization.Escalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*immunization.Escalation, 0, len(r.escalations))
	for i := len(r.escalations) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.escalations[i]
		out = append(out, &cp)
	}
	return out, nil
}

// --- fake SMS sender ---

type sentMessage struct {
	To   string
	Body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	fail func(to string) error
}

func (s *fakeSender) Send(_ context.Context, to, body string) error {
	if s.fail != nil {
		if err := s.fail(to); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{To: to, Body: body})
	return nil
}

// --- fake run locker ---

type fakeLocker struct {
	mu      sync.Mutex
	held    bool
	denied  bool
	lockErr error
	locks   int
	unlocks int
}

func (l *fakeLocker) TryLock(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lockErr != nil {
		return false, l.lockErr
	}
	if l.denied || l.held {
		return false, nil
	}
	l.held = true
	l.locks++
	return true, nil
}

func (l *fakeLocker) Unlock(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.unlocks++
	return nil
}
