package schema

import "time"

// PeriodCount is the number of events that fell into one period bucket.
type PeriodCount struct {
	Period string `json:"period" yaml:"period"`
	Count  int    `json:"count" yaml:"count"`
}

// Report is the aggregated view of a list of events.
type Report struct {
	Total          int           `json:"total" yaml:"total"`
	ActiveDays     int           `json:"active_days" yaml:"active_days"`
	AveragePerDay  float64       `json:"average_per_day" yaml:"average_per_day"`
	BusiestMonth   PeriodCount   `json:"busiest_month" yaml:"busiest_month"`
	BusiestWeekday PeriodCount   `json:"busiest_weekday" yaml:"busiest_weekday"`
	Months         []PeriodCount `json:"months" yaml:"months"`
	Weekdays       []PeriodCount `json:"weekdays" yaml:"weekdays"`
	Days           []PeriodCount `json:"days" yaml:"days"`
	First          time.Time     `json:"first,omitzero" yaml:"first,omitempty"`
	Last           time.Time     `json:"last,omitzero" yaml:"last,omitempty"`
}
