package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"engagement_hub/internal/common"
	"engagement_hub/internal/domain/model"
	"engagement_hub/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// MatchingService computes judge eligibility for competitions and owns the
// invitation lifecycle, including bounded follow-ups.
type MatchingService struct {
	store            *repository.Store
	emitter          NotificationEmitter
	followUpInterval time.Duration
	now              Clock
}

func NewMatchingService(store *repository.Store, emitter NotificationEmitter, followUpInterval time.Duration, now Clock) *MatchingService {
	if now == nil {
		now = time.Now
	}
	return &MatchingService{store: store, emitter: emitter, followUpInterval: followUpInterval, now: now}
}

type JudgeMatch struct {
	Stakeholder   model.Stakeholder `json:"stakeholder"`
	MatchedSkills []string          `json:"matched_skills"`
}

// ComputeJudgeMatches intersects each candidate's expertise with the
// required set. A candidate is eligible iff the intersection is non-empty.
// Ordering is deterministic: match count descending, candidate id ascending;
// matched skills come back sorted.
func ComputeJudgeMatches(requiredExpertise []string, pool []model.Stakeholder) []JudgeMatch {
	required := make(map[string]struct{}, len(requiredExpertise))
	for _, tag := range requiredExpertise {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			required[tag] = struct{}{}
		}
	}

	var matches []JudgeMatch
	for _, cand := range pool {
		var matched []string
		seen := make(map[string]struct{})
		for _, tag := range cand.Expertise {
			tag = strings.TrimSpace(tag)
			if _, want := required[tag]; !want {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			matched = append(matched, tag)
		}
		if len(matched) == 0 {
			continue
		}
		sort.Strings(matched)
		matches = append(matches, JudgeMatch{Stakeholder: cand, MatchedSkills: matched})
	}

	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i].MatchedSkills) != len(matches[j].MatchedSkills) {
			return len(matches[i].MatchedSkills) > len(matches[j].MatchedSkills)
		}
		return matches[i].Stakeholder.ID < matches[j].Stakeholder.ID
	})
	return matches
}

type CreateCompetitionInput struct {
	// ID is optional; supplying the id of an existing competition tops up
	// its invitations instead of creating a duplicate.
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name"`
	Deadline          string   `json:"deadline"`
	RequiredExpertise []string `json:"required_expertise"`
}

type CreateCompetitionResult struct {
	Competition        *model.Competition      `json:"competition"`
	InvitationsCreated int                     `json:"invitations_created"`
	Invitations        []model.JudgeInvitation `json:"invitations"`
}

// parseDeadline accepts a bare date or a full RFC3339 timestamp. dateOnly
// tells the caller whether the input carried a time of day.
func parseDeadline(raw string) (t time.Time, dateOnly, ok bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, true
	}
	return time.Time{}, false, false
}

// CreateCompetitionWithInvitations validates the input, creates the
// competition, and emits one invitation per eligible judge. The candidate
// scan runs against a snapshot; the competition and its invitations commit
// as one short batch, re-checking the per-pair dedup invariant at commit
// time. Zero eligible judges is a valid outcome, not an error.
func (s *MatchingService) CreateCompetitionWithInvitations(ctx context.Context, in CreateCompetitionInput) (*CreateCompetitionResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, common.Errorf("competition name is required: %w", common.ErrValidation)
	}
	deadline, dateOnly, ok := parseDeadline(in.Deadline)
	if !ok {
		return nil, common.Errorf("deadline %q is not parseable: %w", in.Deadline, common.ErrValidation)
	}
	now := s.now()
	// A bare date means "any time that day", so compare against midnight;
	// a full timestamp is held to the clock as given.
	ref := now
	if dateOnly {
		ref = now.Truncate(24 * time.Hour)
	}
	if deadline.Before(ref) {
		return nil, common.Errorf("deadline %q is in the past: %w", in.Deadline, common.ErrValidation)
	}

	required := dedupeTags(in.RequiredExpertise)
	if len(required) == 0 {
		return nil, common.Errorf("required_expertise must not be empty: %w", common.ErrValidation)
	}

	// Snapshot phase: collect the judge-capable candidate pool without
	// holding the write lock through the match computation.
	var pool []model.Stakeholder
	_ = s.store.View(func(tx *repository.ReadTx) error {
		for _, u := range tx.ListUsers() {
			if u.IsJudge || u.Role == model.RoleJudge {
				pool = append(pool, model.Stakeholder{ID: u.ID, Name: u.DisplayName, Expertise: u.Expertise})
			}
		}
		return nil
	})

	matches := ComputeJudgeMatches(required, pool)

	comp := &model.Competition{
		ID:                in.ID,
		Name:              name,
		Slug:              slug.Make(name),
		Deadline:          deadline,
		RequiredExpertise: required,
		CreatedAt:         now,
	}
	if comp.ID == "" {
		comp.ID = uuid.NewString()
	}

	result := &CreateCompetitionResult{Invitations: []model.JudgeInvitation{}}
	var created []model.JudgeInvitation

	err := s.store.Update(func(tx *repository.WriteTx) error {
		if existing, err := tx.GetCompetition(comp.ID); err == nil {
			// The expertise set is fixed at creation. A top-up call must
			// match against the stored set, so invitations never carry
			// skills outside the competition's own expertise.
			comp = existing
			matches = ComputeJudgeMatches(existing.RequiredExpertise, pool)
		} else {
			tx.PutCompetition(comp)
		}

		for _, m := range matches {
			// Commit-time re-validation: the pool was scanned outside the
			// lock, so an invitation may have appeared meanwhile.
			if _, exists := tx.InvitationForPair(comp.ID, m.Stakeholder.ID); exists {
				continue
			}
			inv := model.JudgeInvitation{
				ID:              uuid.NewString(),
				CompetitionID:   comp.ID,
				StakeholderID:   m.Stakeholder.ID,
				Status:          model.InvitationPending,
				MatchedSkills:   m.MatchedSkills,
				SentAt:          now,
				LastEmailSentAt: now,
			}
			tx.PutInvitation(&inv)
			created = append(created, inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, inv := range created {
		s.emitter.Emit(model.NotificationJudgeInvited, inv.StakeholderID, map[string]string{
			"invitation_id":  inv.ID,
			"competition_id": inv.CompetitionID,
			"matched_skills": strings.Join(inv.MatchedSkills, ","),
		})
	}

	result.Competition = comp
	result.InvitationsCreated = len(created)
	result.Invitations = append(result.Invitations, created...)
	return result, nil
}

// ScheduleFollowUp re-notifies a pending invitation once the configured
// interval has elapsed since the last email, up to MaxFollowUps. Past the
// cap (or before the interval, or for responded invitations) the invitation
// is left untouched and no error is returned; the caller treats the cap as
// terminal silence.
func (s *MatchingService) ScheduleFollowUp(ctx context.Context, invitationID string, now time.Time) (*model.JudgeInvitation, error) {
	var inv *model.JudgeInvitation
	var sent bool
	err := s.store.Update(func(tx *repository.WriteTx) error {
		cur, err := tx.GetInvitation(invitationID)
		if err != nil {
			return err
		}
		inv = cur
		if cur.Status != model.InvitationPending {
			return nil
		}
		if cur.FollowUpCount >= model.MaxFollowUps {
			return nil
		}
		if now.Sub(cur.LastEmailSentAt) <= s.followUpInterval {
			return nil
		}
		cur.FollowUpCount++
		cur.LastEmailSentAt = now
		tx.PutInvitation(cur)
		inv = cur
		sent = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if sent {
		s.emitter.Emit(model.NotificationInviteFollowUp, inv.StakeholderID, map[string]string{
			"invitation_id":   inv.ID,
			"competition_id":  inv.CompetitionID,
			"follow_up_count": strconv.Itoa(inv.FollowUpCount),
		})
	}
	return inv, nil
}

// RespondToInvitation records the stakeholder's answer. Acceptance registers
// the judge on the competition exactly once.
func (s *MatchingService) RespondToInvitation(ctx context.Context, invitationID string, accept bool) (*model.JudgeInvitation, error) {
	now := s.now()
	var inv *model.JudgeInvitation
	err := s.store.Update(func(tx *repository.WriteTx) error {
		cur, err := tx.GetInvitation(invitationID)
		if err != nil {
			return err
		}
		if cur.Status != model.InvitationPending {
			return common.Errorf("invitation already %s: %w", cur.Status, common.ErrInvalidTransition)
		}
		if accept {
			cur.Status = model.InvitationAccepted
		} else {
			cur.Status = model.InvitationDeclined
		}
		cur.RespondedAt = &now
		tx.PutInvitation(cur)

		if accept {
			comp, err := tx.GetCompetition(cur.CompetitionID)
			if err == nil && !containsString(comp.Judges, cur.StakeholderID) {
				comp.Judges = append(comp.Judges, cur.StakeholderID)
				tx.PutCompetition(comp)
			}
		}
		if judge, err := tx.GetUser(cur.StakeholderID); err == nil {
			judge.LastActiveAt = &now
			judge.UpdatedAt = now
			tx.PutUser(judge)
		}
		inv = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// AcknowledgeResponse marks a responded invitation as seen by the
// organizer. Re-acknowledging is a no-op, not an error.
func (s *MatchingService) AcknowledgeResponse(ctx context.Context, invitationID string) (*model.JudgeInvitation, error) {
	now := s.now()
	var inv *model.JudgeInvitation
	err := s.store.Update(func(tx *repository.WriteTx) error {
		cur, err := tx.GetInvitation(invitationID)
		if err != nil {
			return err
		}
		if cur.Status == model.InvitationPending {
			return common.Errorf("cannot acknowledge a pending invitation: %w", common.ErrInvalidTransition)
		}
		if !cur.Acknowledged {
			cur.Acknowledged = true
			cur.AcknowledgedAt = &now
			tx.PutInvitation(cur)
		}
		inv = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ListPendingInvitations supports the follow-up sweep.
func (s *MatchingService) ListPendingInvitations(ctx context.Context) ([]model.JudgeInvitation, error) {
	var out []model.JudgeInvitation
	err := s.store.View(func(tx *repository.ReadTx) error {
		for _, inv := range tx.ListInvitations() {
			if inv.Status == model.InvitationPending {
				out = append(out, inv)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
