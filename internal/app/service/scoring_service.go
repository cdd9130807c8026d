package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"engagement_hub/internal/common"
	"engagement_hub/internal/domain/model"
	"engagement_hub/internal/domain/repository"

	"github.com/google/uuid"
)

// Rubric maps each scoring criterion to its maximum value. Maxima must sum
// to model.MaxTeamScore.
type Rubric map[string]float64

func DefaultRubric() Rubric {
	return Rubric{
		"presentation": 10,
		"analysis":     15,
		"innovation":   15,
		"feasibility":  10,
	}
}

// ScoringService records judge scores and derives leaderboards. A score is
// always replaced wholesale: a judge revising a score overwrites the prior
// breakdown rather than accumulating onto it.
type ScoringService struct {
	store   *repository.Store
	emitter NotificationEmitter
	rubric  Rubric
	now     Clock
}

func NewScoringService(store *repository.Store, emitter NotificationEmitter, rubric Rubric, now Clock) *ScoringService {
	if rubric == nil {
		rubric = DefaultRubric()
	}
	if now == nil {
		now = time.Now
	}
	return &ScoringService{store: store, emitter: emitter, rubric: rubric, now: now}
}

type CreateTeamInput struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func (s *ScoringService) CreateTeam(ctx context.Context, in CreateTeamInput) (*model.Team, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, common.Errorf("team name is required: %w", common.ErrValidation)
	}
	now := s.now()
	team := &model.Team{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Members:   in.Members,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.store.Update(func(tx *repository.WriteTx) error {
		tx.PutTeam(team)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// RecordSubmissionFile appends an uploaded file to the team's submission and
// flips the submitted flag.
func (s *ScoringService) RecordSubmissionFile(ctx context.Context, teamID, fileName string) (*model.Team, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, common.Errorf("file name is required: %w", common.ErrValidation)
	}
	now := s.now()
	var team *model.Team
	err := s.store.Update(func(tx *repository.WriteTx) error {
		t, err := tx.GetTeam(teamID)
		if err != nil {
			return err
		}
		t.Submission.Files = append(t.Submission.Files, model.SubmissionFile{Name: fileName, UploadedAt: now})
		t.Submission.FileSubmitted = true
		t.UpdatedAt = now
		tx.PutTeam(t)
		team = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// RecordScore validates the breakdown against the rubric and overwrites the
// team's score. Last write wins; repeated calls with the same payload leave
// the same total, never a doubled one.
func (s *ScoringService) RecordScore(ctx context.Context, teamID string, breakdown map[string]float64, feedback string) (*model.Team, error) {
	if len(breakdown) == 0 {
		return nil, common.Errorf("score breakdown is required: %w", common.ErrValidation)
	}

	total := 0.0
	for criterion, value := range breakdown {
		max, known := s.rubric[criterion]
		if !known {
			return nil, common.Errorf("unknown scoring criterion %q: %w", criterion, common.ErrValidation)
		}
		if value < 0 || value > max {
			return nil, common.Errorf("criterion %q value %.2f outside [0, %.2f]: %w", criterion, value, max, common.ErrValidation)
		}
		total += value
	}
	if total < 0 {
		total = 0
	}
	if total > model.MaxTeamScore {
		total = model.MaxTeamScore
	}

	now := s.now()
	var team *model.Team
	err := s.store.Update(func(tx *repository.WriteTx) error {
		t, err := tx.GetTeam(teamID)
		if err != nil {
			return err
		}
		score := total
		t.Score = &score
		t.ScoreBreakdown = make(map[string]float64, len(breakdown))
		for k, v := range breakdown {
			t.ScoreBreakdown[k] = v
		}
		t.Feedback = feedback
		t.ScoredAt = &now
		t.UpdatedAt = now
		tx.PutTeam(t)
		team = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(model.NotificationScorePosted, team.ID, map[string]string{
		"team_id": team.ID,
	})
	return team, nil
}

// ComputeLeaderboard is a pure projection: score descending, unscored teams
// after all scored ones, ties broken by team id ascending. It is stable and
// side-effect free, so repeated calls on the same input yield identical
// orderings.
func ComputeLeaderboard(teams []model.Team) []model.LeaderboardEntry {
	ranked := make([]model.Team, len(teams))
	copy(ranked, teams)

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ranked[i].Score, ranked[j].Score
		switch {
		case si != nil && sj == nil:
			return true
		case si == nil && sj != nil:
			return false
		case si != nil && sj != nil && *si != *sj:
			return *si > *sj
		default:
			return ranked[i].ID < ranked[j].ID
		}
	})

	entries := make([]model.LeaderboardEntry, 0, len(ranked))
	for i, t := range ranked {
		entry := model.LeaderboardEntry{
			Rank:          i + 1,
			TeamID:        t.ID,
			TeamName:      t.Name,
			FileSubmitted: t.Submission.FileSubmitted,
		}
		if t.Score != nil {
			score := *t.Score
			entry.Score = &score
		}
		entries = append(entries, entry)
	}
	return entries
}

// Leaderboard projects the current team set. It reads a snapshot and stores
// nothing; calling it repeatedly has no side effects.
func (s *ScoringService) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	var teams []model.Team
	err := s.store.View(func(tx *repository.ReadTx) error {
		teams = tx.ListTeams()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ComputeLeaderboard(teams), nil
}
