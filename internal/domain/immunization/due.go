package immunization

import "time"

// DueConfig tunes reminder selection.
type DueConfig struct {
	LookaheadDays     int
	CooldownHours     int
	MaxAttemptsPerDay int
}

// SelectDue filters schedule records down to those that should receive a
// reminder now. Overdue records are always candidates regardless of the
// lookahead window; DONE records never are; a record reminded within the
// cooldown window is held back. Records whose per-day attempt budget is
// spent are returned separately so the caller can escalate them.
//
// The function is pure: "now" is injected and identical inputs always
// yield identical outputs.
func SelectDue(records []*ScheduleRecord, now time.Time, cfg DueConfig) (due, exhausted []*ScheduleRecord) {
	today := DateOnly(now)
	horizon := today.AddDate(0, 0, cfg.LookaheadDays)
	cooldown := time.Duration(cfg.CooldownHours) * time.Hour

	for _, r := range records {
		if r.Status == StatusDone {
			continue
		}
		overdue := r.DueDate.Before(today)
		inWindow := !r.DueDate.Before(today) && !r.DueDate.After(horizon)
		if !overdue && !inWindow {
			continue
		}
		if r.LastRemindedAt.Valid && now.Sub(r.LastRemindedAt.Time) < cooldown {
			continue
		}
		if cfg.MaxAttemptsPerDay > 0 && r.AttemptsToday >= cfg.MaxAttemptsPerDay {
			exhausted = append(exhausted, r)
			continue
		}
		due = append(due, r)
	}
	return due, exhausted
}
