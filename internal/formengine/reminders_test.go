package formengine

import (
	"errors"
	"testing"
)

func TestReminderPlan_Days(t *testing.T) {
	first, second := ReminderPlan{ValidityDays: 365, FirstPercent: 10, SecondPercent: 5}.Days()
	if first != 37 || second != 18 {
		t.Fatalf("days = %d, %d; want 37, 18", first, second)
	}
}

func TestReminderPlan_Check(t *testing.T) {
	tests := []struct {
		name string
		plan ReminderPlan
		want error
	}{
		{"distinct days", ReminderPlan{ValidityDays: 30, FirstPercent: 50, SecondPercent: 10}, nil},
		{"same percent", ReminderPlan{ValidityDays: 30, FirstPercent: 20, SecondPercent: 20}, ErrDuplicateReminderDay},
		{"rounds onto same day", ReminderPlan{ValidityDays: 10, FirstPercent: 12, SecondPercent: 8}, ErrDuplicateReminderDay},
		{"zero percent", ReminderPlan{ValidityDays: 10, FirstPercent: 0, SecondPercent: 8}, ErrInvalidPercent},
		{"over hundred", ReminderPlan{ValidityDays: 10, FirstPercent: 120, SecondPercent: 8}, ErrInvalidPercent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Check()
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReminderPlanner_RechecksOnEveryEdit(t *testing.T) {
	p := NewReminderPlanner(ReminderPlan{ValidityDays: 100, FirstPercent: 30, SecondPercent: 10})
	if p.Err() != nil {
		t.Fatalf("initial plan valid, got %v", p.Err())
	}

	if err := p.SetSecondPercent(30); !errors.Is(err, ErrDuplicateReminderDay) {
		t.Fatalf("second edit: err = %v", err)
	}
	if !errors.Is(p.Err(), ErrDuplicateReminderDay) {
		t.Fatal("planner must keep the latest outcome")
	}

	if err := p.SetFirstPercent(40); err != nil {
		t.Fatalf("first edit resolves the clash: %v", err)
	}

	// Shrinking the base quantity can make distinct percentages collide.
	if err := p.SetValidityDays(2); !errors.Is(err, ErrDuplicateReminderDay) {
		t.Fatalf("validity edit: err = %v", err)
	}
	if p.Plan().ValidityDays != 2 {
		t.Fatal("plan not updated")
	}
}
