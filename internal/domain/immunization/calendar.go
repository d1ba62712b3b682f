package immunization

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Dose is a single entry of the immunization calendar: a vaccine dose
// given at a fixed offset from birth. Requires names the dose code that
// must be completed first, empty if none.
type Dose struct {
	Code       string
	OffsetDays int
	Label      string
	Requires   string
}

var ErrBirthDateInFuture = fmt.Errorf("birth date is in the future")

// Calendar is the immutable vaccination calendar loaded at process start.
type Calendar struct {
	doses []Dose
}

// NewCalendar validates the dose table and returns a calendar with doses
// ordered ascending by offset, ties broken by code.
func NewCalendar(doses []Dose) (*Calendar, error) {
	if len(doses) == 0 {
		return nil, fmt.Errorf("calendar has no doses")
	}

	seen := make(map[string]bool, len(doses))
	for _, d := range doses {
		code := strings.ToUpper(strings.TrimSpace(d.Code))
		if code == "" {
			return nil, fmt.Errorf("calendar dose with empty code")
		}
		if d.OffsetDays < 0 {
			return nil, fmt.Errorf("calendar dose %s has negative offset", code)
		}
		if seen[code] {
			return nil, fmt.Errorf("calendar dose %s defined twice", code)
		}
		seen[code] = true
	}
	for _, d := range doses {
		if d.Requires == "" {
			continue
		}
		if !seen[strings.ToUpper(d.Requires)] {
			return nil, fmt.Errorf("calendar dose %s requires unknown dose %s", d.Code, d.Requires)
		}
	}

	ordered := make([]Dose, len(doses))
	copy(ordered, doses)
	for i := range ordered {
		ordered[i].Code = strings.ToUpper(strings.TrimSpace(ordered[i].Code))
		ordered[i].Requires = strings.ToUpper(strings.TrimSpace(ordered[i].Requires))
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].OffsetDays != ordered[j].OffsetDays {
			return ordered[i].OffsetDays < ordered[j].OffsetDays
		}
		return ordered[i].Code < ordered[j].Code
	})

	return &Calendar{doses: ordered}, nil
}

// DefaultCalendar returns the Indonesian infant immunization program used
// by the Puskesmas deployments.
func DefaultCalendar() *Calendar {
	c, err := NewCalendar([]Dose{
		{Code: "BCG", OffsetDays: 0, Label: "Vaksin BCG (tuberkulosis)"},
		{Code: "HB-1", OffsetDays: 30, Label: "Vaksin Hepatitis B dosis pertama"},
		{Code: "POLIO-1", OffsetDays: 60, Label: "Vaksin Polio dosis pertama"},
		{Code: "DPT-1", OffsetDays: 60, Label: "Vaksin DPT dosis pertama"},
		{Code: "POLIO-2", OffsetDays: 90, Label: "Vaksin Polio dosis kedua", Requires: "POLIO-1"},
		{Code: "DPT-2", OffsetDays: 90, Label: "Vaksin DPT dosis kedua", Requires: "DPT-1"},
		{Code: "POLIO-3", OffsetDays: 120, Label: "Vaksin Polio dosis ketiga", Requires: "POLIO-2"},
		{Code: "DPT-3", OffsetDays: 120, Label: "Vaksin DPT dosis ketiga", Requires: "DPT-2"},
		{Code: "CAMPAK", OffsetDays: 270, Label: "Vaksin Campak"},
	})
	if err != nil {
		panic(err) // table above is fixed at compile time
	}
	return c
}

// Doses returns the ordered dose table.
func (c *Calendar) Doses() []Dose {
	out := make([]Dose, len(c.doses))
	copy(out, c.doses)
	return out
}

// Lookup finds a dose by code, case-insensitively.
func (c *Calendar) Lookup(code string) (Dose, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, d := range c.doses {
		if d.Code == code {
			return d, true
		}
	}
	return Dose{}, false
}

// Len returns the number of doses in the calendar.
func (c *Calendar) Len() int { return len(c.doses) }

// Generate computes the full schedule for a baby born on birthDate. The
// result is unsaved: one record per calendar dose, due date = birth +
// offset, PENDING unless the due date already passed relative to today.
// Records come out ordered ascending by offset, ties by dose code.
func (c *Calendar) Generate(babyID string, birthDate, today time.Time) ([]*ScheduleRecord, error) {
	birth := DateOnly(birthDate)
	now := DateOnly(today)
	if birth.After(now) {
		return nil, ErrBirthDateInFuture
	}

	records := make([]*ScheduleRecord, 0, len(c.doses))
	for _, d := range c.doses {
		due := birth.AddDate(0, 0, d.OffsetDays)
		status := StatusPending
		if due.Before(now) {
			status = StatusOverdue
		}
		records = append(records, &ScheduleRecord{
			BabyID:   babyID,
			DoseCode: d.Code,
			DueDate:  due,
			Status:   status,
		})
	}
	return records, nil
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
