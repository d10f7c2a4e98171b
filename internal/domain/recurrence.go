package domain

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Frequency is the recurrence pattern type.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
	FrequencyCustom  Frequency = "custom"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// RecurrencePattern describes how new task instances should be stamped out
// from a template. The generation engine itself runs as a separate service;
// this model only guarantees the write-time constraints hold.
type RecurrencePattern struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	TaskTemplate    map[string]any `json:"task_template"`
	Frequency       Frequency      `json:"frequency"`
	Interval        int            `json:"interval"`
	DaysOfWeek      []int          `json:"days_of_week,omitempty"` // 0=Mon .. 6=Sun
	DayOfMonth      *int           `json:"day_of_month,omitempty"`
	EndDate         *time.Time     `json:"end_date,omitempty"`
	MaxOccurrences  *int           `json:"max_occurrences,omitempty"`
	Timezone        string         `json:"timezone"`
	LastGeneratedAt *time.Time     `json:"last_generated_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Validate checks the pattern's write-time constraints: a known frequency, a
// positive interval, at most one end condition, sane day fields, a loadable
// timezone, and for custom patterns a parseable cron expression under the
// template's "cron" key.
func (p *RecurrencePattern) Validate() error {
	if !p.Frequency.Valid() {
		return &ValidationError{Field: "frequency", Reason: "must be one of daily, weekly, monthly, yearly, custom"}
	}
	if p.Interval <= 0 {
		return &ValidationError{Field: "interval", Reason: "must be a positive integer"}
	}
	if p.EndDate != nil && p.MaxOccurrences != nil {
		return &ValidationError{Field: "end_date", Reason: "end_date and max_occurrences are mutually exclusive"}
	}
	if p.MaxOccurrences != nil && *p.MaxOccurrences <= 0 {
		return &ValidationError{Field: "max_occurrences", Reason: "must be a positive integer"}
	}
	if len(p.TaskTemplate) == 0 {
		return &ValidationError{Field: "task_template", Reason: "must not be empty"}
	}
	for _, d := range p.DaysOfWeek {
		if d < 0 || d > 6 {
			return &ValidationError{Field: "days_of_week", Reason: "values must be 0 (Monday) through 6 (Sunday)"}
		}
	}
	if p.DayOfMonth != nil && (*p.DayOfMonth < 1 || *p.DayOfMonth > 31) {
		return &ValidationError{Field: "day_of_month", Reason: "must be 1-31"}
	}
	if p.Timezone == "" {
		return &ValidationError{Field: "timezone", Reason: "must not be empty"}
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return &ValidationError{Field: "timezone", Reason: "unknown timezone"}
	}
	if p.Frequency == FrequencyCustom {
		expr, _ := p.TaskTemplate["cron"].(string)
		if expr == "" {
			return &ValidationError{Field: "task_template", Reason: "custom frequency requires a 'cron' expression in the template"}
		}
		if _, err := cron.ParseStandard(expr); err != nil {
			return &ValidationError{Field: "task_template", Reason: "invalid cron expression"}
		}
	}
	return nil
}
