package events

import (
	"testing"

	"github.com/iwvelando/debt-planner/pkg/datetime"
)

func TestEvent_FormDateList(t *testing.T) {
	start := datetime.MustParse("2025-01")
	horizon := datetime.MustParse("2030-01")

	tests := []struct {
		name        string
		event       Event
		expectCount int
		expectFirst string
		expectLast  string
		expectError bool
	}{
		{
			name: "Monthly event for 1 year",
			event: Event{
				Name:      "Monthly Bonus",
				StartDate: "2025-01",
				EndDate:   "2025-12",
				Frequency: 1,
			},
			expectCount: 12,
			expectFirst: "2025-01",
			expectLast:  "2025-12",
		},
		{
			name: "Quarterly event for 1 year",
			event: Event{
				Name:      "Quarterly Payment",
				StartDate: "2025-01",
				EndDate:   "2025-12",
				Frequency: 3,
			},
			expectCount: 4,
			expectFirst: "2025-01",
			expectLast:  "2025-10",
		},
		{
			name: "Annual event ending exactly on a firing date",
			event: Event{
				Name:      "Annual Bonus",
				StartDate: "2025-01",
				EndDate:   "2027-01",
				Frequency: 12,
			},
			expectCount: 3,
			expectFirst: "2025-01",
			expectLast:  "2027-01",
		},
		{
			name: "One-time event",
			event: Event{
				Name:      "Tax Refund",
				StartDate: "2025-06-15",
			},
			expectCount: 1,
			expectFirst: "2025-06",
			expectLast:  "2025-06",
		},
		{
			name: "No start date uses plan start",
			event: Event{
				Name:      "Current Event",
				EndDate:   "2025-03",
				Frequency: 1,
			},
			expectCount: 3,
			expectFirst: "2025-01",
			expectLast:  "2025-03",
		},
		{
			name: "No end date runs to horizon",
			event: Event{
				Name:      "Until Horizon",
				StartDate: "2025-01",
				Frequency: 12,
			},
			expectCount: 6,
			expectFirst: "2025-01",
			expectLast:  "2030-01",
		},
		{
			name: "Invalid start date",
			event: Event{
				Name:      "Invalid Event",
				StartDate: "invalid-date",
			},
			expectError: true,
		},
		{
			name: "Invalid end date",
			event: Event{
				Name:      "Invalid End Event",
				StartDate: "2025-01",
				EndDate:   "invalid-date",
				Frequency: 1,
			},
			expectError: true,
		},
		{
			name: "End before start",
			event: Event{
				Name:      "Backwards",
				StartDate: "2025-06",
				EndDate:   "2025-01",
				Frequency: 1,
			},
			expectError: true,
		},
		{
			name: "Negative frequency",
			event: Event{
				Name:      "Negative",
				StartDate: "2025-06",
				Frequency: -1,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.FormDateList(start, horizon)

			if tt.expectError {
				if err == nil {
					t.Errorf("FormDateList() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("FormDateList() error = %v", err)
			}

			dates := tt.event.DateList
			if len(dates) != tt.expectCount {
				t.Fatalf("FormDateList() expected %d dates, got %d", tt.expectCount, len(dates))
			}
			if dates[0].String() != tt.expectFirst || dates[len(dates)-1].String() != tt.expectLast {
				t.Errorf("FormDateList() range = %s..%s, expected %s..%s",
					dates[0], dates[len(dates)-1], tt.expectFirst, tt.expectLast)
			}
		})
	}
}

func TestProcessor_Expand(t *testing.T) {
	processor := NewProcessor()
	start := datetime.MustParse("2025-01")

	events := []Event{
		{Name: "Bonus", Amount: 1000, StartDate: "2025-06", EndDate: "2026-06", Frequency: 12},
		{Name: "Refund", Amount: 250, StartDate: "2025-03"},
	}

	fundings, err := processor.Expand(events, start, start.Add(60))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(fundings) != 3 {
		t.Fatalf("Expand() expected 3 fundings, got %d", len(fundings))
	}
	if fundings[0].Notes != "Refund" || fundings[0].Date.String() != "2025-03" {
		t.Errorf("fundings not ordered by date: %+v", fundings)
	}
	if events[0].DateList != nil {
		t.Errorf("Expand() must not modify its input events")
	}

	if _, err := processor.Expand([]Event{{Name: "Bad", Amount: -5}}, start, start); err == nil {
		t.Errorf("Expand() expected error for negative amount")
	}
}

func TestSchedule(t *testing.T) {
	jan := datetime.MustParse("2025-01")
	schedule := NewSchedule([]Funding{
		{Date: jan.Add(2), Amount: 100.10},
		{Date: jan.Add(2), Amount: 200.20},
		{Date: jan.Add(5), Amount: 50},
	})

	if got := schedule.Amount(jan.Add(2)); got != 300.3 {
		t.Errorf("Amount() = %v, expected same-month fundings summed to 300.3", got)
	}
	if got := schedule.Amount(jan); got != 0 {
		t.Errorf("Amount() = %v, expected 0 for month without funding", got)
	}
	if got := schedule.LargestAfter(jan); got != 300.3 {
		t.Errorf("LargestAfter() = %v, expected 300.3", got)
	}
	if got := schedule.LargestAfter(jan.Add(4)); got != 50 {
		t.Errorf("LargestAfter() = %v, expected 50", got)
	}
	if got := schedule.LargestAfter(jan.Add(5)); got != 0 {
		t.Errorf("LargestAfter() = %v, expected 0 past the last funding", got)
	}
	if got := schedule.Total(); got != 350.3 {
		t.Errorf("Total() = %v, expected 350.3", got)
	}
}
