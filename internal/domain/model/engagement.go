package model

import "time"

// EngagementSample is one point of an ordered time series; samples are never
// mutated after creation.
type EngagementSample struct {
	PeriodLabel       string `json:"period_label"`
	EngagementPercent int    `json:"engagement_percent"`
}

type TrendLevel string

const (
	TrendOK       TrendLevel = "ok"
	TrendWarning  TrendLevel = "warning"
	TrendCritical TrendLevel = "critical"
)

type TrendReport struct {
	Level        TrendLevel `json:"level"`
	LatestDelta  int        `json:"latest_delta"`
	OverallDelta int        `json:"overall_delta"`
	Suggestions  []string   `json:"suggestions,omitempty"`
}

// InactiveEntity is one row of an inactivity scan.
type InactiveEntity struct {
	ID             string     `json:"id"`
	DisplayName    string     `json:"display_name"`
	Role           string     `json:"role"`
	LastActiveAt   *time.Time `json:"last_active_at,omitempty"`
	MonthsInactive int        `json:"months_inactive"`
}

// InactivityReport list and count are derived together and always agree.
type InactivityReport struct {
	Inactive []InactiveEntity `json:"inactive"`
	Count    int              `json:"count"`
}
