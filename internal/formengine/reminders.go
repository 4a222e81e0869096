package formengine

import (
	"errors"
	"math"
)

var (
	ErrDuplicateReminderDay = errors.New("Los recordatorios no pueden caer el mismo día")
	ErrInvalidPercent       = errors.New("El porcentaje debe estar entre 1 y 100")
)

// ReminderPlan derives two renewal reminders from a validity period. Each
// reminder fires a percentage of the validity before expiry.
type ReminderPlan struct {
	ValidityDays  int
	FirstPercent  float64
	SecondPercent float64
}

// Days returns how many days before expiry each reminder fires.
func (p ReminderPlan) Days() (first, second int) {
	return reminderDay(p.ValidityDays, p.FirstPercent), reminderDay(p.ValidityDays, p.SecondPercent)
}

func reminderDay(validity int, pct float64) int {
	return int(math.Round(float64(validity) * pct / 100))
}

// Check rejects percentages outside (0,100] and plans whose two reminders land
// on the same day.
func (p ReminderPlan) Check() error {
	for _, pct := range []float64{p.FirstPercent, p.SecondPercent} {
		if math.IsNaN(pct) || pct <= 0 || pct > 100 {
			return ErrInvalidPercent
		}
	}
	first, second := p.Days()
	if first == second {
		return ErrDuplicateReminderDay
	}
	return nil
}

// ReminderPlanner holds a plan being edited and re-checks it after every change
// to any of its inputs.
type ReminderPlanner struct {
	plan ReminderPlan
	err  error
}

func NewReminderPlanner(plan ReminderPlan) *ReminderPlanner {
	p := &ReminderPlanner{plan: plan}
	p.err = plan.Check()
	return p
}

func (p *ReminderPlanner) SetValidityDays(days int) error {
	p.plan.ValidityDays = days
	return p.recheck()
}

func (p *ReminderPlanner) SetFirstPercent(pct float64) error {
	p.plan.FirstPercent = pct
	return p.recheck()
}

func (p *ReminderPlanner) SetSecondPercent(pct float64) error {
	p.plan.SecondPercent = pct
	return p.recheck()
}

func (p *ReminderPlanner) recheck() error {
	p.err = p.plan.Check()
	return p.err
}

func (p *ReminderPlanner) Plan() ReminderPlan { return p.plan }

// Err is the outcome of the most recent check.
func (p *ReminderPlanner) Err() error { return p.err }
