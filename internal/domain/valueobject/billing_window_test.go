package valueobject

import (
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestComputeBillingWindow(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		dueDay     int
		reference  time.Time
		wantOpens  time.Time
		wantCloses time.Time
		wantDue    time.Time
	}{
		{
			name:       "reference after closing moves to next cycle",
			closingDay: 5,
			dueDay:     12,
			reference:  date(2024, time.March, 6),
			wantOpens:  date(2024, time.March, 6),
			wantCloses: date(2024, time.April, 5),
			wantDue:    date(2024, time.April, 12),
		},
		{
			name:       "reference on closing day stays in current cycle",
			closingDay: 5,
			dueDay:     12,
			reference:  date(2024, time.March, 5),
			wantOpens:  date(2024, time.February, 6),
			wantCloses: date(2024, time.March, 5),
			wantDue:    date(2024, time.March, 12),
		},
		{
			name:       "closing 31 clamps to leap february",
			closingDay: 31,
			dueDay:     10,
			reference:  date(2024, time.February, 15),
			wantOpens:  date(2024, time.February, 1),
			wantCloses: date(2024, time.February, 29),
			wantDue:    date(2024, time.March, 10),
		},
		{
			name:       "closing 31 clamps to non-leap february",
			closingDay: 31,
			dueDay:     10,
			reference:  date(2023, time.February, 28),
			wantOpens:  date(2023, time.February, 1),
			wantCloses: date(2023, time.February, 28),
			wantDue:    date(2023, time.March, 10),
		},
		{
			name:       "closing 31 in a 30-day month",
			closingDay: 31,
			dueDay:     31,
			reference:  date(2024, time.April, 10),
			wantOpens:  date(2024, time.April, 1),
			wantCloses: date(2024, time.April, 30),
			wantDue:    date(2024, time.May, 31),
		},
		{
			name:       "due day clamps in the due month",
			closingDay: 3,
			dueDay:     30,
			reference:  date(2024, time.February, 2),
			wantOpens:  date(2024, time.January, 4),
			wantCloses: date(2024, time.February, 3),
			wantDue:    date(2024, time.February, 29),
		},
		{
			name:       "december reference wraps the cycle into january",
			closingDay: 20,
			dueDay:     28,
			reference:  date(2024, time.December, 21),
			wantOpens:  date(2024, time.December, 21),
			wantCloses: date(2025, time.January, 20),
			wantDue:    date(2025, time.January, 28),
		},
		{
			name:       "december cycle with due in next month wraps the year",
			closingDay: 25,
			dueDay:     5,
			reference:  date(2024, time.December, 1),
			wantOpens:  date(2024, time.November, 26),
			wantCloses: date(2024, time.December, 25),
			wantDue:    date(2025, time.January, 5),
		},
		{
			name:       "january cycle opens in previous year",
			closingDay: 10,
			dueDay:     15,
			reference:  date(2025, time.January, 3),
			wantOpens:  date(2024, time.December, 11),
			wantCloses: date(2025, time.January, 10),
			wantDue:    date(2025, time.January, 15),
		},
		{
			name:       "due equal to closing falls in following month",
			closingDay: 15,
			dueDay:     15,
			reference:  date(2024, time.June, 1),
			wantOpens:  date(2024, time.May, 16),
			wantCloses: date(2024, time.June, 15),
			wantDue:    date(2024, time.July, 15),
		},
		{
			name:       "closing 30 opens on the 31st of a long month",
			closingDay: 30,
			dueDay:     7,
			reference:  date(2024, time.January, 31),
			wantOpens:  date(2024, time.January, 31),
			wantCloses: date(2024, time.February, 29),
			wantDue:    date(2024, time.March, 7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBillingWindow(tt.closingDay, tt.dueDay, tt.reference)

			if !got.OpensOn.Equal(tt.wantOpens) {
				t.Errorf("OpensOn = %s, want %s", got.OpensOn.Format(time.DateOnly), tt.wantOpens.Format(time.DateOnly))
			}
			if !got.ClosesOn.Equal(tt.wantCloses) {
				t.Errorf("ClosesOn = %s, want %s", got.ClosesOn.Format(time.DateOnly), tt.wantCloses.Format(time.DateOnly))
			}
			if !got.DueOn.Equal(tt.wantDue) {
				t.Errorf("DueOn = %s, want %s", got.DueOn.Format(time.DateOnly), tt.wantDue.Format(time.DateOnly))
			}
			if !got.Contains(tt.reference) {
				t.Errorf("window %s..%s does not contain reference %s",
					got.OpensOn.Format(time.DateOnly), got.ClosesOn.Format(time.DateOnly), tt.reference.Format(time.DateOnly))
			}
		})
	}
}

func TestComputeBillingWindow_OrderingAndDeterminism(t *testing.T) {
	start := date(2023, time.January, 1)
	end := date(2025, time.December, 31)

	for closing := MinCycleDay; closing <= MaxCycleDay; closing++ {
		for due := MinCycleDay; due <= MaxCycleDay; due += 3 {
			for ref := start; !ref.After(end); ref = ref.AddDate(0, 0, 11) {
				first := ComputeBillingWindow(closing, due, ref)
				second := ComputeBillingWindow(closing, due, ref)
				if first != second {
					t.Fatalf("non-deterministic window for closing=%d due=%d ref=%s", closing, due, ref.Format(time.DateOnly))
				}

				if !first.OpensOn.Before(first.ClosesOn) {
					t.Fatalf("opens_on %s not before closes_on %s (closing=%d due=%d ref=%s)",
						first.OpensOn.Format(time.DateOnly), first.ClosesOn.Format(time.DateOnly), closing, due, ref.Format(time.DateOnly))
				}
				if first.DueOn.Before(first.ClosesOn) {
					t.Fatalf("due_on %s before closes_on %s (closing=%d due=%d ref=%s)",
						first.DueOn.Format(time.DateOnly), first.ClosesOn.Format(time.DateOnly), closing, due, ref.Format(time.DateOnly))
				}
				if !first.Contains(ref) {
					t.Fatalf("window does not contain reference (closing=%d due=%d ref=%s)", closing, due, ref.Format(time.DateOnly))
				}

				previous := ComputeBillingWindow(closing, due, first.OpensOn.AddDate(0, 0, -1))
				if !previous.ClosesOn.AddDate(0, 0, 1).Equal(first.OpensOn) {
					t.Fatalf("cycles are not contiguous (closing=%d ref=%s)", closing, ref.Format(time.DateOnly))
				}
			}
		}
	}
}

func TestBillingCycleConfig_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		config BillingCycleConfig
		want   bool
	}{
		{"valid", BillingCycleConfig{ClosingDay: 5, DueDay: 12}, true},
		{"bounds", BillingCycleConfig{ClosingDay: 1, DueDay: 31}, true},
		{"zero closing", BillingCycleConfig{ClosingDay: 0, DueDay: 12}, false},
		{"due too large", BillingCycleConfig{ClosingDay: 5, DueDay: 32}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}
