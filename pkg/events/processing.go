// Package events turns one-time and recurring funding events into the
// per-month funding schedule consumed by the simulation engine.
package events

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
)

// Funding is a one-time lump sum applied to the accelerated plan in the
// calendar month of Date.
type Funding struct {
	Date   datetime.Month `json:"date"`
	Amount float64        `json:"amount"`
	Notes  string         `json:"notes,omitempty"`
}

// Event is a funding event as written in a plan. A zero Frequency makes it
// one-time; otherwise it repeats every Frequency months through EndDate.
type Event struct {
	Name      string
	Amount    float64
	StartDate string
	EndDate   string
	Frequency int // months
	DateList  []datetime.Month
}

// Processor handles event processing operations
type Processor struct{}

// NewProcessor creates a new event processor
func NewProcessor() *Processor {
	return &Processor{}
}

// Expand converts events into one-time fundings ordered by date. Events are
// not modified.
func (p *Processor) Expand(events []Event, start, horizon datetime.Month) ([]Funding, error) {
	var fundings []Funding
	for i := range events {
		event := events[i]
		if event.Amount < 0 {
			return nil, fmt.Errorf("funding %q: amount cannot be negative", event.Name)
		}
		if err := event.FormDateList(start, horizon); err != nil {
			return nil, err
		}
		for _, date := range event.DateList {
			fundings = append(fundings, Funding{Date: date, Amount: event.Amount, Notes: event.Name})
		}
	}
	sort.SliceStable(fundings, func(i, j int) bool {
		return fundings[i].Date < fundings[j].Date
	})
	return fundings, nil
}

// FormDateList fills DateList with every month the event fires. An empty
// StartDate means start; an empty EndDate means horizon for recurring events.
func (event *Event) FormDateList(start, horizon datetime.Month) error {
	startDate := start
	if strings.TrimSpace(event.StartDate) != "" {
		parsed, err := datetime.Parse(event.StartDate)
		if err != nil {
			return fmt.Errorf("funding %q: start date: %w", event.Name, err)
		}
		startDate = parsed
	}

	if event.Frequency < 0 {
		return fmt.Errorf("funding %q: frequency cannot be negative", event.Name)
	}
	if event.Frequency == 0 {
		event.DateList = []datetime.Month{startDate}
		return nil
	}

	endDate := horizon
	if strings.TrimSpace(event.EndDate) != "" {
		parsed, err := datetime.Parse(event.EndDate)
		if err != nil {
			return fmt.Errorf("funding %q: end date: %w", event.Name, err)
		}
		endDate = parsed
	}
	if endDate.Before(startDate) {
		return fmt.Errorf("funding %q: end date %s is before start date %s", event.Name, endDate, startDate)
	}

	// Identify all dates where an event takes place and aggregate them in
	// dateList.
	dateList := []datetime.Month{startDate}
	for {
		nextDate := dateList[len(dateList)-1].Add(event.Frequency)
		if endDate.Before(nextDate) {
			break
		}
		dateList = append(dateList, nextDate)
	}
	event.DateList = dateList

	return nil
}

// Schedule is the total funding per calendar month.
type Schedule map[datetime.Month]float64

// NewSchedule sums fundings that share a calendar month.
func NewSchedule(fundings []Funding) Schedule {
	s := make(Schedule, len(fundings))
	for _, f := range fundings {
		s[f.Date] = mathutil.Round(s[f.Date] + f.Amount)
	}
	return s
}

// Amount returns the funding for month m.
func (s Schedule) Amount(m datetime.Month) float64 {
	return s[m]
}

// LargestAfter returns the largest single-month funding dated after m, or 0.
func (s Schedule) LargestAfter(m datetime.Month) float64 {
	var largest float64
	for date, amount := range s {
		if m.Before(date) && amount > largest {
			largest = amount
		}
	}
	return largest
}

// Total sums every funding in the schedule.
func (s Schedule) Total() float64 {
	amounts := make([]float64, 0, len(s))
	for _, amount := range s {
		amounts = append(amounts, amount)
	}
	return mathutil.Sum(amounts...)
}
