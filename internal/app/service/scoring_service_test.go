package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"engagement_hub/internal/common"
	"engagement_hub/internal/domain/model"
	"engagement_hub/internal/domain/repository"
)

func newScoringFixture(t *testing.T) (*ScoringService, *repository.Store, *fakeEmitter) {
	t.Helper()
	store := repository.NewStore()
	emitter := &fakeEmitter{}
	svc := NewScoringService(store, emitter, nil, fixedClock(testNow))
	return svc, store, emitter
}

func TestCreateTeam(t *testing.T) {
	svc, _, _ := newScoringFixture(t)

	team, err := svc.CreateTeam(context.Background(), CreateTeamInput{Name: "  Quant Squad ", Members: []string{"u1", "u2"}})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if team.Name != "Quant Squad" {
		t.Fatalf("name = %q, want trimmed", team.Name)
	}
	if team.Score != nil {
		t.Fatalf("new team already scored: %v", *team.Score)
	}

	if _, err := svc.CreateTeam(context.Background(), CreateTeamInput{Name: "   "}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("blank name err = %v, want ErrValidation", err)
	}
}

func TestRecordScore(t *testing.T) {
	svc, store, emitter := newScoringFixture(t)
	seedTeam(store, model.Team{ID: "team-1", Name: "Alpha"})

	breakdown := map[string]float64{
		"presentation": 9,
		"analysis":     8,
		"innovation":   7,
		"feasibility":  8,
	}
	team, err := svc.RecordScore(context.Background(), "team-1", breakdown, "solid work")
	if err != nil {
		t.Fatalf("RecordScore: %v", err)
	}
	if team.Score == nil || *team.Score != 32 {
		t.Fatalf("score = %v, want 32", team.Score)
	}
	if !reflect.DeepEqual(team.ScoreBreakdown, breakdown) {
		t.Fatalf("breakdown = %v", team.ScoreBreakdown)
	}
	if got := emitter.count(model.NotificationScorePosted); got != 1 {
		t.Fatalf("score notifications = %d, want 1", got)
	}
}

// A judge revising a score replaces it wholesale; the new total must not
// accumulate onto the old one.
func TestRecordScoreOverwrites(t *testing.T) {
	svc, _, _ := newScoringFixture(t)
	team, err := svc.CreateTeam(context.Background(), CreateTeamInput{Name: "Alpha"})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}

	if _, err := svc.RecordScore(context.Background(), team.ID, map[string]float64{"presentation": 9, "analysis": 8, "innovation": 7, "feasibility": 8}, ""); err != nil {
		t.Fatalf("first score: %v", err)
	}
	revised, err := svc.RecordScore(context.Background(), team.ID, map[string]float64{"presentation": 5, "analysis": 5}, "revised down")
	if err != nil {
		t.Fatalf("revised score: %v", err)
	}
	if *revised.Score != 10 {
		t.Fatalf("revised score = %v, want 10 (not 42)", *revised.Score)
	}
	if len(revised.ScoreBreakdown) != 2 {
		t.Fatalf("revised breakdown kept stale criteria: %v", revised.ScoreBreakdown)
	}
	if revised.Feedback != "revised down" {
		t.Fatalf("feedback = %q", revised.Feedback)
	}
}

func TestRecordScoreValidation(t *testing.T) {
	svc, store, _ := newScoringFixture(t)
	seedTeam(store, model.Team{ID: "team-1", Name: "Alpha"})

	cases := []struct {
		name      string
		breakdown map[string]float64
	}{
		{"empty breakdown", nil},
		{"unknown criterion", map[string]float64{"vibes": 5}},
		{"above criterion max", map[string]float64{"presentation": 11}},
		{"negative value", map[string]float64{"analysis": -1}},
	}
	for _, c := range cases {
		if _, err := svc.RecordScore(context.Background(), "team-1", c.breakdown, ""); !errors.Is(err, common.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", c.name, err)
		}
	}

	if _, err := svc.RecordScore(context.Background(), "ghost", map[string]float64{"presentation": 5}, ""); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("unknown team err = %v, want ErrNotFound", err)
	}
}

func TestRecordSubmissionFile(t *testing.T) {
	svc, store, _ := newScoringFixture(t)
	seedTeam(store, model.Team{ID: "team-1", Name: "Alpha"})

	team, err := svc.RecordSubmissionFile(context.Background(), "team-1", "pitch-deck.pdf")
	if err != nil {
		t.Fatalf("RecordSubmissionFile: %v", err)
	}
	if !team.Submission.FileSubmitted || len(team.Submission.Files) != 1 {
		t.Fatalf("submission = %+v", team.Submission)
	}

	team, err = svc.RecordSubmissionFile(context.Background(), "team-1", "model.xlsx")
	if err != nil {
		t.Fatalf("second file: %v", err)
	}
	if len(team.Submission.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(team.Submission.Files))
	}

	if _, err := svc.RecordSubmissionFile(context.Background(), "team-1", " "); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("blank file err = %v, want ErrValidation", err)
	}
}

func scoreOf(v float64) *float64 { return &v }

func TestComputeLeaderboard(t *testing.T) {
	teams := []model.Team{
		{ID: "t-unscored", Name: "Late"},
		{ID: "t-low", Name: "Low", Score: scoreOf(12)},
		{ID: "t-high", Name: "High", Score: scoreOf(45), Submission: model.TeamSubmission{FileSubmitted: true}},
		{ID: "t-tie-b", Name: "TieB", Score: scoreOf(30)},
		{ID: "t-tie-a", Name: "TieA", Score: scoreOf(30)},
	}

	entries := ComputeLeaderboard(teams)
	wantOrder := []string{"t-high", "t-tie-a", "t-tie-b", "t-low", "t-unscored"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(entries), len(wantOrder))
	}
	for i, id := range wantOrder {
		if entries[i].TeamID != id {
			t.Fatalf("position %d = %q, want %q", i, entries[i].TeamID, id)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("rank at %d = %d, want %d", i, entries[i].Rank, i+1)
		}
	}
	if entries[0].Score == nil || *entries[0].Score != 45 || !entries[0].FileSubmitted {
		t.Fatalf("top entry = %+v", entries[0])
	}
	if entries[4].Score != nil {
		t.Fatalf("unscored entry has score %v", *entries[4].Score)
	}

	// Pure projection: same input, same output.
	again := ComputeLeaderboard(teams)
	if !reflect.DeepEqual(entries, again) {
		t.Fatalf("leaderboard not deterministic")
	}
	// The input slice must not be reordered.
	if teams[0].ID != "t-unscored" {
		t.Fatalf("input slice mutated: first = %q", teams[0].ID)
	}
}

func TestLeaderboardAfterScoring(t *testing.T) {
	svc, store, _ := newScoringFixture(t)
	seedTeam(store, model.Team{ID: "team-a", Name: "A"})
	seedTeam(store, model.Team{ID: "team-b", Name: "B"})

	if _, err := svc.RecordScore(context.Background(), "team-b", map[string]float64{"presentation": 10, "analysis": 15, "innovation": 15, "feasibility": 10}, ""); err != nil {
		t.Fatalf("RecordScore: %v", err)
	}

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if entries[0].TeamID != "team-b" || *entries[0].Score != model.MaxTeamScore {
		t.Fatalf("leader = %+v", entries[0])
	}
	if entries[1].TeamID != "team-a" || entries[1].Score != nil {
		t.Fatalf("runner-up = %+v", entries[1])
	}
}
