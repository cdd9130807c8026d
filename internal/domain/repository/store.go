package repository

import (
	"sort"
	"sync"

	"engagement_hub/internal/common"
	"engagement_hub/internal/domain/model"
)

// Store is the single source of truth for all engine entities. Every
// mutation runs as one atomic Update batch; every read runs under a View
// snapshot and can never observe a partial write. Values are deep-copied on
// the way in and out, so no caller ever holds a pointer into the store.
type Store struct {
	mu sync.RWMutex

	users            map[string]*model.User
	requests         map[string]*model.MentorshipRequest
	teams            map[string]*model.Team
	competitions     map[string]*model.Competition
	invitations      map[string]*model.JudgeInvitation
	invitationByPair map[pairKey]string
	events           map[string]*model.Event
	samples          []model.EngagementSample
}

type pairKey struct {
	competitionID string
	stakeholderID string
}

func NewStore() *Store {
	return &Store{
		users:            make(map[string]*model.User),
		requests:         make(map[string]*model.MentorshipRequest),
		teams:            make(map[string]*model.Team),
		competitions:     make(map[string]*model.Competition),
		invitations:      make(map[string]*model.JudgeInvitation),
		invitationByPair: make(map[pairKey]string),
		events:           make(map[string]*model.Event),
	}
}

// ReadTx exposes snapshot reads. It is only valid inside the closure it was
// handed to.
type ReadTx struct {
	s *Store
}

// WriteTx additionally exposes mutations. All writes made through one
// WriteTx become visible atomically when Update returns.
type WriteTx struct {
	ReadTx
}

// View runs fn against a consistent snapshot. Readers never block writers
// beyond the RWMutex read acquisition.
func (s *Store) View(fn func(tx *ReadTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&ReadTx{s: s})
}

// Update runs fn as one indivisible mutation batch.
func (s *Store) Update(fn func(tx *WriteTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&WriteTx{ReadTx{s: s}})
}

// --- users ---

func (tx *ReadTx) GetUser(id string) (*model.User, error) {
	u, ok := tx.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(u), nil
}

func (tx *ReadTx) ListUsers() []model.User {
	out := make([]model.User, 0, len(tx.s.users))
	for _, u := range tx.s.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (tx *WriteTx) PutUser(u *model.User) {
	tx.s.users[u.ID] = cloneUser(u)
}

// --- mentorship requests ---

func (tx *ReadTx) GetRequest(id string) (*model.MentorshipRequest, error) {
	r, ok := tx.s.requests[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneRequest(r), nil
}

func (tx *ReadTx) ListRequests() []model.MentorshipRequest {
	out := make([]model.MentorshipRequest, 0, len(tx.s.requests))
	for _, r := range tx.s.requests {
		out = append(out, *cloneRequest(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (tx *WriteTx) PutRequest(r *model.MentorshipRequest) {
	tx.s.requests[r.ID] = cloneRequest(r)
}

// --- teams ---

func (tx *ReadTx) GetTeam(id string) (*model.Team, error) {
	t, ok := tx.s.teams[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneTeam(t), nil
}

func (tx *ReadTx) ListTeams() []model.Team {
	out := make([]model.Team, 0, len(tx.s.teams))
	for _, t := range tx.s.teams {
		out = append(out, *cloneTeam(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (tx *WriteTx) PutTeam(t *model.Team) {
	tx.s.teams[t.ID] = cloneTeam(t)
}

// --- competitions ---

func (tx *ReadTx) GetCompetition(id string) (*model.Competition, error) {
	c, ok := tx.s.competitions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneCompetition(c), nil
}

func (tx *ReadTx) ListCompetitions() []model.Competition {
	out := make([]model.Competition, 0, len(tx.s.competitions))
	for _, c := range tx.s.competitions {
		out = append(out, *cloneCompetition(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (tx *WriteTx) PutCompetition(c *model.Competition) {
	tx.s.competitions[c.ID] = cloneCompetition(c)
}

// --- judge invitations ---

func (tx *ReadTx) GetInvitation(id string) (*model.JudgeInvitation, error) {
	inv, ok := tx.s.invitations[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneInvitation(inv), nil
}

// InvitationForPair enforces the one-invitation-per-pair invariant lookup.
func (tx *ReadTx) InvitationForPair(competitionID, stakeholderID string) (*model.JudgeInvitation, bool) {
	id, ok := tx.s.invitationByPair[pairKey{competitionID, stakeholderID}]
	if !ok {
		return nil, false
	}
	return cloneInvitation(tx.s.invitations[id]), true
}

func (tx *ReadTx) ListInvitations() []model.JudgeInvitation {
	out := make([]model.JudgeInvitation, 0, len(tx.s.invitations))
	for _, inv := range tx.s.invitations {
		out = append(out, *cloneInvitation(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (tx *WriteTx) PutInvitation(inv *model.JudgeInvitation) {
	tx.s.invitations[inv.ID] = cloneInvitation(inv)
	tx.s.invitationByPair[pairKey{inv.CompetitionID, inv.StakeholderID}] = inv.ID
}

// --- events ---

func (tx *ReadTx) GetEvent(id string) (*model.Event, error) {
	e, ok := tx.s.events[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (tx *ReadTx) ListEvents() []model.Event {
	out := make([]model.Event, 0, len(tx.s.events))
	for _, e := range tx.s.events {
		out = append(out, *cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (tx *WriteTx) PutEvent(e *model.Event) {
	tx.s.events[e.ID] = cloneEvent(e)
}

// --- engagement samples ---

func (tx *ReadTx) Samples() []model.EngagementSample {
	out := make([]model.EngagementSample, len(tx.s.samples))
	copy(out, tx.s.samples)
	return out
}

func (tx *WriteTx) AppendSample(s model.EngagementSample) {
	tx.s.samples = append(tx.s.samples, s)
}

// --- clone helpers ---

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Expertise = append([]string(nil), u.Expertise...)
	if u.LastActiveAt != nil {
		t := *u.LastActiveAt
		c.LastActiveAt = &t
	}
	return &c
}

func cloneRequest(r *model.MentorshipRequest) *model.MentorshipRequest {
	c := *r
	if r.Session != nil {
		s := *r.Session
		c.Session = &s
	}
	return &c
}

func cloneTeam(t *model.Team) *model.Team {
	c := *t
	c.Members = append([]string(nil), t.Members...)
	if t.Score != nil {
		v := *t.Score
		c.Score = &v
	}
	if t.ScoreBreakdown != nil {
		c.ScoreBreakdown = make(map[string]float64, len(t.ScoreBreakdown))
		for k, v := range t.ScoreBreakdown {
			c.ScoreBreakdown[k] = v
		}
	}
	c.Submission.Files = append([]model.SubmissionFile(nil), t.Submission.Files...)
	if t.ScoredAt != nil {
		at := *t.ScoredAt
		c.ScoredAt = &at
	}
	return &c
}

func cloneCompetition(cm *model.Competition) *model.Competition {
	c := *cm
	c.RequiredExpertise = append([]string(nil), cm.RequiredExpertise...)
	c.Judges = append([]string(nil), cm.Judges...)
	return &c
}

func cloneInvitation(inv *model.JudgeInvitation) *model.JudgeInvitation {
	c := *inv
	c.MatchedSkills = append([]string(nil), inv.MatchedSkills...)
	if inv.RespondedAt != nil {
		t := *inv.RespondedAt
		c.RespondedAt = &t
	}
	if inv.AcknowledgedAt != nil {
		t := *inv.AcknowledgedAt
		c.AcknowledgedAt = &t
	}
	return &c
}

func cloneEvent(e *model.Event) *model.Event {
	c := *e
	c.Tags = append([]string(nil), e.Tags...)
	c.SpeakerIDs = append([]string(nil), e.SpeakerIDs...)
	c.Resources = append([]model.EventResource(nil), e.Resources...)
	c.RSVPUserIDs = append([]string(nil), e.RSVPUserIDs...)
	c.AttendeeIDs = append([]string(nil), e.AttendeeIDs...)
	return &c
}
