package service

import (
	"context"
	"math"
	"strings"
	"time"

	"engagement_hub/internal/common"
	"engagement_hub/internal/domain/model"
	"engagement_hub/internal/domain/repository"

	"github.com/google/uuid"
)

const (
	trendWarningFloor  = 70
	trendCriticalFloor = 50
	// sustainedDeclinePeriods consecutive drops classify critical even above
	// the critical floor.
	sustainedDeclinePeriods = 3

	hoursPerMonth = 24 * 30.44
)

// EngagementService derives activity ratios, trend classifications, and
// inactivity reports. All derivations are pure over a snapshot; missing
// optional fields get documented defaults instead of errors.
type EngagementService struct {
	store                     *repository.Store
	inactivityThresholdMonths int
	now                       Clock
}

func NewEngagementService(store *repository.Store, inactivityThresholdMonths int, now Clock) *EngagementService {
	if inactivityThresholdMonths <= 0 {
		inactivityThresholdMonths = 6
	}
	if now == nil {
		now = time.Now
	}
	return &EngagementService{store: store, inactivityThresholdMonths: inactivityThresholdMonths, now: now}
}

// ClassifyEngagementTrend inspects an ordered percent series. Fewer than two
// points is insufficient data, which is ok with no suggestions, not an
// error.
func ClassifyEngagementTrend(series []int) model.TrendReport {
	if len(series) < 2 {
		return model.TrendReport{Level: model.TrendOK}
	}

	latest := series[len(series)-1]
	report := model.TrendReport{
		LatestDelta:  latest - series[len(series)-2],
		OverallDelta: latest - series[0],
	}

	declining := 0
	for i := len(series) - 1; i > 0; i-- {
		if series[i] >= series[i-1] {
			break
		}
		declining++
	}

	switch {
	case latest < trendCriticalFloor || declining >= sustainedDeclinePeriods:
		report.Level = model.TrendCritical
		report.Suggestions = []string{
			"Launch a re-engagement campaign targeting inactive members",
			"Schedule a town hall to surface blockers",
			"Review event cadence and mentorship matching volume",
		}
	case latest < trendWarningFloor:
		report.Level = model.TrendWarning
		report.Suggestions = []string{
			"Increase outreach frequency for the current period",
			"Highlight upcoming competitions and lectures to members",
		}
	default:
		report.Level = model.TrendOK
	}
	return report
}

// RecordSample appends one period to the stored series.
func (s *EngagementService) RecordSample(ctx context.Context, sample model.EngagementSample) error {
	if strings.TrimSpace(sample.PeriodLabel) == "" {
		return common.Errorf("period_label is required: %w", common.ErrValidation)
	}
	return s.store.Update(func(tx *repository.WriteTx) error {
		tx.AppendSample(sample)
		return nil
	})
}

// Trend classifies the stored series.
func (s *EngagementService) Trend(ctx context.Context) (model.TrendReport, error) {
	var series []int
	err := s.store.View(func(tx *repository.ReadTx) error {
		for _, sample := range tx.Samples() {
			series = append(series, sample.EngagementPercent)
		}
		return nil
	})
	if err != nil {
		return model.TrendReport{}, err
	}
	return ClassifyEngagementTrend(series), nil
}

// monthsInactive converts elapsed time to whole months, rounded. A missing
// timestamp defaults to 1, never an error.
func monthsInactive(lastActiveAt *time.Time, now time.Time) int {
	if lastActiveAt == nil {
		return 1
	}
	months := int(math.Round(now.Sub(*lastActiveAt).Hours() / hoursPerMonth))
	if months < 0 {
		return 0
	}
	return months
}

// DetectInactive scans the given users for inactivity. The returned count
// always equals the length of the returned list.
func DetectInactive(users []model.User, now time.Time, thresholdMonths int) model.InactivityReport {
	report := model.InactivityReport{Inactive: []model.InactiveEntity{}}
	for _, u := range users {
		months := monthsInactive(u.LastActiveAt, now)
		if months < thresholdMonths {
			continue
		}
		report.Inactive = append(report.Inactive, model.InactiveEntity{
			ID:             u.ID,
			DisplayName:    u.DisplayName,
			Role:           u.Role,
			LastActiveAt:   u.LastActiveAt,
			MonthsInactive: months,
		})
	}
	report.Count = len(report.Inactive)
	return report
}

// DetectInactiveAlumni targets alumni for re-engagement.
func (s *EngagementService) DetectInactiveAlumni(ctx context.Context) (model.InactivityReport, error) {
	var alumni []model.User
	err := s.store.View(func(tx *repository.ReadTx) error {
		for _, u := range tx.ListUsers() {
			if u.Role == model.RoleAlumni {
				alumni = append(alumni, u)
			}
		}
		return nil
	})
	if err != nil {
		return model.InactivityReport{}, err
	}
	return DetectInactive(alumni, s.now(), s.inactivityThresholdMonths), nil
}

// ComputeEngagementPercent returns the rounded active ratio, or nil when
// there is nothing to measure. Unknown is not zero.
func ComputeEngagementPercent(activeCount, inactiveCount int) *int {
	total := activeCount + inactiveCount
	if total == 0 {
		return nil
	}
	pct := int(math.Round(float64(activeCount) / float64(total) * 100))
	return &pct
}

type EngagementSummary struct {
	ActiveCount       int  `json:"active_count"`
	InactiveCount     int  `json:"inactive_count"`
	EngagementPercent *int `json:"engagement_percent,omitempty"`
}

// Summary derives the active/inactive split over all users from one
// snapshot, so the counts and the percent can never disagree.
func (s *EngagementService) Summary(ctx context.Context) (EngagementSummary, error) {
	var users []model.User
	err := s.store.View(func(tx *repository.ReadTx) error {
		users = tx.ListUsers()
		return nil
	})
	if err != nil {
		return EngagementSummary{}, err
	}

	report := DetectInactive(users, s.now(), s.inactivityThresholdMonths)
	summary := EngagementSummary{
		ActiveCount:   len(users) - report.Count,
		InactiveCount: report.Count,
	}
	summary.EngagementPercent = ComputeEngagementPercent(summary.ActiveCount, summary.InactiveCount)
	return summary, nil
}

type CreateEventInput struct {
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	Date       string   `json:"date"`
	SpeakerIDs []string `json:"speaker_ids"`
}

func (s *EngagementService) CreateEvent(ctx context.Context, in CreateEventInput) (*model.Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, common.Errorf("event title is required: %w", common.ErrValidation)
	}
	date, _, ok := parseDeadline(in.Date)
	if !ok {
		return nil, common.Errorf("event date %q is not parseable: %w", in.Date, common.ErrValidation)
	}
	event := &model.Event{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(in.Title),
		Tags:       dedupeTags(in.Tags),
		Date:       date,
		SpeakerIDs: in.SpeakerIDs,
		CreatedAt:  s.now(),
	}
	err := s.store.Update(func(tx *repository.WriteTx) error {
		tx.PutEvent(event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// RSVP registers a viewer for an event and stamps their activity.
func (s *EngagementService) RSVP(ctx context.Context, eventID, userID string) (*model.Event, error) {
	return s.markEvent(eventID, userID, false)
}

// CheckIn records attendance and stamps the attendee's activity.
func (s *EngagementService) CheckIn(ctx context.Context, eventID, userID string) (*model.Event, error) {
	return s.markEvent(eventID, userID, true)
}

func (s *EngagementService) markEvent(eventID, userID string, attended bool) (*model.Event, error) {
	now := s.now()
	var event *model.Event
	err := s.store.Update(func(tx *repository.WriteTx) error {
		e, err := tx.GetEvent(eventID)
		if err != nil {
			return err
		}
		u, err := tx.GetUser(userID)
		if err != nil {
			return common.Errorf("user %s: %w", userID, common.ErrNotFound)
		}
		if attended {
			if !containsString(e.AttendeeIDs, userID) {
				e.AttendeeIDs = append(e.AttendeeIDs, userID)
			}
		} else {
			if !containsString(e.RSVPUserIDs, userID) {
				e.RSVPUserIDs = append(e.RSVPUserIDs, userID)
			}
		}
		tx.PutEvent(e)

		u.LastActiveAt = &now
		u.UpdatedAt = now
		tx.PutUser(u)
		event = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// BuildAttendanceReport derives turnout for one event. TurnoutRate is nil
// when nobody RSVPed; undefined is not zero.
func (s *EngagementService) BuildAttendanceReport(ctx context.Context, eventID string) (*model.AttendanceReport, error) {
	var event *model.Event
	err := s.store.View(func(tx *repository.ReadTx) error {
		e, err := tx.GetEvent(eventID)
		if err != nil {
			return err
		}
		event = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &model.AttendanceReport{
		EventID:         event.ID,
		RSVPCount:       len(event.RSVPUserIDs),
		AttendanceCount: len(event.AttendeeIDs),
	}
	if report.RSVPCount > 0 {
		rate := int(math.Round(float64(report.AttendanceCount) / float64(report.RSVPCount) * 100))
		report.TurnoutRate = &rate
	}
	return report, nil
}
