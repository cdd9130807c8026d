package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"engagement_hub/internal/common"
	"engagement_hub/internal/domain/model"
	"engagement_hub/internal/domain/repository"
)

const testFollowUpInterval = 7 * 24 * time.Hour

func newMatchingFixture(t *testing.T) (*MatchingService, *repository.Store, *fakeEmitter) {
	t.Helper()
	store := repository.NewStore()
	emitter := &fakeEmitter{}
	svc := NewMatchingService(store, emitter, testFollowUpInterval, fixedClock(testNow))
	return svc, store, emitter
}

func TestComputeJudgeMatches(t *testing.T) {
	required := []string{"AI", "Finance"}
	pool := []model.Stakeholder{
		{ID: "1", Expertise: []string{"AI", "ML"}},
		{ID: "2", Expertise: []string{"Finance", "AI"}},
		{ID: "3", Expertise: []string{"Blockchain"}},
	}

	matches := ComputeJudgeMatches(required, pool)
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Stakeholder.ID != "2" || len(matches[0].MatchedSkills) != 2 {
		t.Fatalf("first match = %s with %v, want id 2 with 2 skills", matches[0].Stakeholder.ID, matches[0].MatchedSkills)
	}
	if matches[1].Stakeholder.ID != "1" || len(matches[1].MatchedSkills) != 1 {
		t.Fatalf("second match = %s with %v, want id 1 with 1 skill", matches[1].Stakeholder.ID, matches[1].MatchedSkills)
	}
}

func TestComputeJudgeMatchesTieOrder(t *testing.T) {
	required := []string{"AI"}
	pool := []model.Stakeholder{
		{ID: "zeta", Expertise: []string{"AI"}},
		{ID: "alpha", Expertise: []string{"AI"}},
	}
	matches := ComputeJudgeMatches(required, pool)
	if matches[0].Stakeholder.ID != "alpha" || matches[1].Stakeholder.ID != "zeta" {
		t.Fatalf("tie order = [%s %s], want id ascending", matches[0].Stakeholder.ID, matches[1].Stakeholder.ID)
	}
}

func TestComputeJudgeMatchesEmptyIntersection(t *testing.T) {
	if got := ComputeJudgeMatches([]string{"AI"}, []model.Stakeholder{{ID: "1", Expertise: []string{"Art"}}}); len(got) != 0 {
		t.Fatalf("matches = %v, want none", got)
	}
}

func seedJudges(store *repository.Store) {
	seedUser(store, model.User{ID: "judge-1", DisplayName: "One", Role: model.RoleJudge, IsJudge: true, Expertise: []string{"AI", "ML"}})
	seedUser(store, model.User{ID: "judge-2", DisplayName: "Two", Role: model.RoleJudge, IsJudge: true, Expertise: []string{"Finance", "AI"}})
	seedUser(store, model.User{ID: "judge-3", DisplayName: "Three", Role: model.RoleJudge, IsJudge: true, Expertise: []string{"Blockchain"}})
}

func TestCreateCompetitionWithInvitations(t *testing.T) {
	svc, store, emitter := newMatchingFixture(t)
	seedJudges(store)

	result, err := svc.CreateCompetitionWithInvitations(context.Background(), CreateCompetitionInput{
		Name:              "FinTech Challenge",
		Deadline:          "2030-01-15",
		RequiredExpertise: []string{"AI", "Finance"},
	})
	if err != nil {
		t.Fatalf("CreateCompetitionWithInvitations: %v", err)
	}
	if result.InvitationsCreated != 2 {
		t.Fatalf("invitationsCreated = %d, want 2", result.InvitationsCreated)
	}
	if result.Invitations[0].StakeholderID != "judge-2" || result.Invitations[1].StakeholderID != "judge-1" {
		t.Fatalf("invitation order = [%s %s], want [judge-2 judge-1]",
			result.Invitations[0].StakeholderID, result.Invitations[1].StakeholderID)
	}
	if result.Competition.Slug != "fintech-challenge" {
		t.Fatalf("slug = %q", result.Competition.Slug)
	}
	for _, inv := range result.Invitations {
		if len(inv.MatchedSkills) == 0 {
			t.Fatalf("invitation %s has empty matched skills", inv.ID)
		}
	}
	// one outbound notification per match
	if got := emitter.count(model.NotificationJudgeInvited); got != 2 {
		t.Fatalf("invite notifications = %d, want 2", got)
	}
}

func TestCreateCompetitionValidation(t *testing.T) {
	svc, _, _ := newMatchingFixture(t)

	cases := []struct {
		name string
		in   CreateCompetitionInput
	}{
		{"empty name", CreateCompetitionInput{Deadline: "2030-01-15", RequiredExpertise: []string{"AI"}}},
		{"bad deadline", CreateCompetitionInput{Name: "X", Deadline: "soon", RequiredExpertise: []string{"AI"}}},
		{"past deadline", CreateCompetitionInput{Name: "X", Deadline: "2020-01-01", RequiredExpertise: []string{"AI"}}},
		{"no expertise", CreateCompetitionInput{Name: "X", Deadline: "2030-01-15"}},
		{"blank expertise", CreateCompetitionInput{Name: "X", Deadline: "2030-01-15", RequiredExpertise: []string{"  "}}},
	}
	for _, c := range cases {
		if _, err := svc.CreateCompetitionWithInvitations(context.Background(), c.in); !errors.Is(err, common.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", c.name, err)
		}
	}
}

func TestCreateCompetitionZeroInvitationsIsNotAnError(t *testing.T) {
	svc, _, _ := newMatchingFixture(t)

	result, err := svc.CreateCompetitionWithInvitations(context.Background(), CreateCompetitionInput{
		Name:              "Niche Contest",
		Deadline:          "2030-01-15",
		RequiredExpertise: []string{"Quantum Basket Weaving"},
	})
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if result.InvitationsCreated != 0 {
		t.Fatalf("invitationsCreated = %d, want 0", result.InvitationsCreated)
	}
}

func TestCreateCompetitionDeduplicatesInvitations(t *testing.T) {
	svc, store, emitter := newMatchingFixture(t)
	seedJudges(store)

	first, err := svc.CreateCompetitionWithInvitations(context.Background(), CreateCompetitionInput{
		Name:              "FinTech Challenge",
		Deadline:          "2030-01-15",
		RequiredExpertise: []string{"AI", "Finance"},
	})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Same competition again, with a pool that has since grown.
	seedUser(store, model.User{ID: "judge-4", DisplayName: "Four", Role: model.RoleJudge, IsJudge: true, Expertise: []string{"Finance"}})

	second, err := svc.CreateCompetitionWithInvitations(context.Background(), CreateCompetitionInput{
		ID:                first.Competition.ID,
		Name:              "FinTech Challenge",
		Deadline:          "2030-01-15",
		RequiredExpertise: []string{"AI", "Finance"},
	})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.InvitationsCreated != 1 {
		t.Fatalf("second call created = %d, want 1 (only the new judge)", second.InvitationsCreated)
	}

	pairs := make(map[string]int)
	_ = store.View(func(tx *repository.ReadTx) error {
		for _, inv := range tx.ListInvitations() {
			pairs[inv.CompetitionID+"/"+inv.StakeholderID]++
		}
		return nil
	})
	for pair, n := range pairs {
		if n != 1 {
			t.Fatalf("pair %s has %d invitations, want 1", pair, n)
		}
	}
	if got := emitter.count(model.NotificationJudgeInvited); got != 3 {
		t.Fatalf("total invite notifications = %d, want 3", got)
	}
}

// A top-up call for an existing competition matches against the stored
// expertise set, never the caller's: MatchedSkills stays a subset of the
// competition's own RequiredExpertise.
func TestTopUpMatchesAgainstStoredExpertise(t *testing.T) {
	svc, store, _ := newMatchingFixture(t)
	seedUser(store, model.User{ID: "judge-ai", DisplayName: "AI", Role: model.RoleJudge, IsJudge: true, Expertise: []string{"AI"}})

	first, err := svc.CreateCompetitionWithInvitations(context.Background(), CreateCompetitionInput{
		Name:              "AI Challenge",
		Deadline:          "2030-01-15",
		RequiredExpertise: []string{"AI"},
	})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.InvitationsCreated != 1 {
		t.Fatalf("first call created = %d, want 1", first.InvitationsCreated)
	}

	// The pool grows with an Art expert and a second AI expert; the top-up
	// arrives with a different expertise set.
	seedUser(store, model.User{ID: "judge-art", DisplayName: "Art", Role: model.RoleJudge, IsJudge: true, Expertise: []string{"Art"}})
	seedUser(store, model.User{ID: "judge-ai-2", DisplayName: "AI Two", Role: model.RoleJudge, IsJudge: true, Expertise: []string{"AI"}})

	second, err := svc.CreateCompetitionWithInvitations(context.Background(), CreateCompetitionInput{
		ID:                first.Competition.ID,
		Name:              "AI Challenge",
		Deadline:          "2030-01-15",
		RequiredExpertise: []string{"Art"},
	})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.InvitationsCreated != 1 {
		t.Fatalf("second call created = %d, want 1 (the new AI judge only)", second.InvitationsCreated)
	}
	if second.Invitations[0].StakeholderID != "judge-ai-2" {
		t.Fatalf("top-up invited %s, want judge-ai-2", second.Invitations[0].StakeholderID)
	}
	if second.Competition.RequiredExpertise[0] != "AI" {
		t.Fatalf("stored expertise mutated: %v", second.Competition.RequiredExpertise)
	}

	_ = store.View(func(tx *repository.ReadTx) error {
		for _, inv := range tx.ListInvitations() {
			for _, skill := range inv.MatchedSkills {
				if skill != "AI" {
					t.Fatalf("invitation %s carries skill %q outside the competition's expertise", inv.ID, skill)
				}
			}
		}
		if _, ok := tx.InvitationForPair(first.Competition.ID, "judge-art"); ok {
			t.Fatalf("non-matching judge-art was invited")
		}
		return nil
	})
}

func TestCreateCompetitionDeadlineForms(t *testing.T) {
	svc, _, _ := newMatchingFixture(t)

	// testNow is 12:00 UTC: a timestamp earlier the same day is already past,
	// while a bare date for that day still stands.
	cases := []struct {
		name     string
		deadline string
		wantErr  bool
	}{
		{"timestamp earlier today", "2024-05-10T01:00:00Z", true},
		{"timestamp later today", "2024-05-10T18:00:00Z", false},
		{"date today", "2024-05-10", false},
		{"date yesterday", "2024-05-09", true},
	}
	for _, c := range cases {
		_, err := svc.CreateCompetitionWithInvitations(context.Background(), CreateCompetitionInput{
			Name:              "Deadline " + c.name,
			Deadline:          c.deadline,
			RequiredExpertise: []string{"AI"},
		})
		if c.wantErr && !errors.Is(err, common.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", c.name, err)
		}
		if !c.wantErr && err != nil {
			t.Errorf("%s: err = %v, want nil", c.name, err)
		}
	}
}

func seedInvitation(store *repository.Store, inv model.JudgeInvitation) {
	_ = store.Update(func(tx *repository.WriteTx) error {
		tx.PutInvitation(&inv)
		return nil
	})
}

func TestScheduleFollowUp(t *testing.T) {
	svc, store, emitter := newMatchingFixture(t)
	seedInvitation(store, model.JudgeInvitation{
		ID: "inv-1", CompetitionID: "comp-1", StakeholderID: "judge-1",
		Status: model.InvitationPending, MatchedSkills: []string{"AI"},
		SentAt: testNow, LastEmailSentAt: testNow,
	})

	// Too early: untouched.
	inv, err := svc.ScheduleFollowUp(context.Background(), "inv-1", testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("early follow-up: %v", err)
	}
	if inv.FollowUpCount != 0 {
		t.Fatalf("early follow-up count = %d, want 0", inv.FollowUpCount)
	}

	// Due: increments and re-stamps.
	due := testNow.Add(testFollowUpInterval + time.Hour)
	inv, err = svc.ScheduleFollowUp(context.Background(), "inv-1", due)
	if err != nil {
		t.Fatalf("due follow-up: %v", err)
	}
	if inv.FollowUpCount != 1 || !inv.LastEmailSentAt.Equal(due) {
		t.Fatalf("after first follow-up: count=%d lastSent=%v", inv.FollowUpCount, inv.LastEmailSentAt)
	}

	due2 := due.Add(testFollowUpInterval + time.Hour)
	inv, err = svc.ScheduleFollowUp(context.Background(), "inv-1", due2)
	if err != nil {
		t.Fatalf("second follow-up: %v", err)
	}
	if inv.FollowUpCount != 2 {
		t.Fatalf("count = %d, want 2", inv.FollowUpCount)
	}

	// Past the cap: silent no-op.
	due3 := due2.Add(testFollowUpInterval + time.Hour)
	inv, err = svc.ScheduleFollowUp(context.Background(), "inv-1", due3)
	if err != nil {
		t.Fatalf("capped follow-up: %v", err)
	}
	if inv.FollowUpCount != 2 || !inv.LastEmailSentAt.Equal(due2) {
		t.Fatalf("capped invitation mutated: count=%d lastSent=%v", inv.FollowUpCount, inv.LastEmailSentAt)
	}
	if got := emitter.count(model.NotificationInviteFollowUp); got != 2 {
		t.Fatalf("follow-up notifications = %d, want 2", got)
	}
}

func TestScheduleFollowUpSkipsResponded(t *testing.T) {
	svc, store, _ := newMatchingFixture(t)
	seedInvitation(store, model.JudgeInvitation{
		ID: "inv-1", CompetitionID: "comp-1", StakeholderID: "judge-1",
		Status: model.InvitationAccepted, MatchedSkills: []string{"AI"},
		SentAt: testNow, LastEmailSentAt: testNow,
	})

	inv, err := svc.ScheduleFollowUp(context.Background(), "inv-1", testNow.Add(30*24*time.Hour))
	if err != nil {
		t.Fatalf("follow-up on accepted: %v", err)
	}
	if inv.FollowUpCount != 0 {
		t.Fatalf("responded invitation followed up: count=%d", inv.FollowUpCount)
	}
}

func TestRespondToInvitation(t *testing.T) {
	svc, store, _ := newMatchingFixture(t)
	seedUser(store, model.User{ID: "judge-1", DisplayName: "One", Role: model.RoleJudge, IsJudge: true})
	_ = store.Update(func(tx *repository.WriteTx) error {
		tx.PutCompetition(&model.Competition{ID: "comp-1", Name: "C", RequiredExpertise: []string{"AI"}})
		return nil
	})
	seedInvitation(store, model.JudgeInvitation{
		ID: "inv-1", CompetitionID: "comp-1", StakeholderID: "judge-1",
		Status: model.InvitationPending, MatchedSkills: []string{"AI"},
		SentAt: testNow, LastEmailSentAt: testNow,
	})

	inv, err := svc.RespondToInvitation(context.Background(), "inv-1", true)
	if err != nil {
		t.Fatalf("RespondToInvitation: %v", err)
	}
	if inv.Status != model.InvitationAccepted || inv.RespondedAt == nil {
		t.Fatalf("invitation after accept: %+v", inv)
	}

	_ = store.View(func(tx *repository.ReadTx) error {
		comp, _ := tx.GetCompetition("comp-1")
		if len(comp.Judges) != 1 || comp.Judges[0] != "judge-1" {
			t.Fatalf("competition judges = %v, want [judge-1]", comp.Judges)
		}
		return nil
	})

	if _, err := svc.RespondToInvitation(context.Background(), "inv-1", false); !errors.Is(err, common.ErrInvalidTransition) {
		t.Fatalf("second response err = %v, want ErrInvalidTransition", err)
	}
}

func TestAcknowledgeResponse(t *testing.T) {
	svc, store, _ := newMatchingFixture(t)
	responded := testNow.Add(-time.Hour)
	seedInvitation(store, model.JudgeInvitation{
		ID: "inv-1", CompetitionID: "comp-1", StakeholderID: "judge-1",
		Status: model.InvitationDeclined, MatchedSkills: []string{"AI"},
		SentAt: testNow.Add(-48 * time.Hour), LastEmailSentAt: testNow.Add(-48 * time.Hour),
		RespondedAt: &responded,
	})

	inv, err := svc.AcknowledgeResponse(context.Background(), "inv-1")
	if err != nil {
		t.Fatalf("AcknowledgeResponse: %v", err)
	}
	if !inv.Acknowledged || inv.AcknowledgedAt == nil {
		t.Fatalf("invitation not acknowledged: %+v", inv)
	}
	firstAck := *inv.AcknowledgedAt

	// Re-acknowledging is a no-op, not an error.
	again, err := svc.AcknowledgeResponse(context.Background(), "inv-1")
	if err != nil {
		t.Fatalf("re-acknowledge: %v", err)
	}
	if !again.AcknowledgedAt.Equal(firstAck) {
		t.Fatalf("re-acknowledge moved the timestamp: %v -> %v", firstAck, again.AcknowledgedAt)
	}
}

func TestAcknowledgePendingFails(t *testing.T) {
	svc, store, _ := newMatchingFixture(t)
	seedInvitation(store, model.JudgeInvitation{
		ID: "inv-1", CompetitionID: "comp-1", StakeholderID: "judge-1",
		Status: model.InvitationPending, MatchedSkills: []string{"AI"},
		SentAt: testNow, LastEmailSentAt: testNow,
	})

	if _, err := svc.AcknowledgeResponse(context.Background(), "inv-1"); !errors.Is(err, common.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}
