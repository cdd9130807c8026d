package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"engagement_hub/internal/common"
	"engagement_hub/internal/domain/model"
)

// Snapshot is a full copy of the store's state, used by the external
// persistence collaborator. It is never consulted on the command path.
type Snapshot struct {
	TakenAt      time.Time                 `json:"taken_at"`
	Users        []model.User              `json:"users"`
	Requests     []model.MentorshipRequest `json:"requests"`
	Teams        []model.Team              `json:"teams"`
	Competitions []model.Competition       `json:"competitions"`
	Invitations  []model.JudgeInvitation   `json:"invitations"`
	Events       []model.Event             `json:"events"`
	Samples      []model.EngagementSample  `json:"samples"`
}

// Export copies the full store state under a single read lock.
func (s *Store) Export(now time.Time) *Snapshot {
	snap := &Snapshot{TakenAt: now}
	_ = s.View(func(tx *ReadTx) error {
		snap.Users = tx.ListUsers()
		snap.Requests = tx.ListRequests()
		snap.Teams = tx.ListTeams()
		snap.Competitions = tx.ListCompetitions()
		snap.Invitations = tx.ListInvitations()
		snap.Events = tx.ListEvents()
		snap.Samples = tx.Samples()
		return nil
	})
	return snap
}

// Import replaces the store state wholesale. Intended for boot-time restore
// only; the pair index is rebuilt from the invitation set.
func (s *Store) Import(snap *Snapshot) error {
	if snap == nil {
		return common.Errorf("nil snapshot: %w", common.ErrBadRequest)
	}
	return s.Update(func(tx *WriteTx) error {
		for i := range snap.Users {
			tx.PutUser(&snap.Users[i])
		}
		for i := range snap.Requests {
			tx.PutRequest(&snap.Requests[i])
		}
		for i := range snap.Teams {
			tx.PutTeam(&snap.Teams[i])
		}
		for i := range snap.Competitions {
			tx.PutCompetition(&snap.Competitions[i])
		}
		for i := range snap.Invitations {
			tx.PutInvitation(&snap.Invitations[i])
		}
		for i := range snap.Events {
			tx.PutEvent(&snap.Events[i])
		}
		for _, sm := range snap.Samples {
			tx.AppendSample(sm)
		}
		return nil
	})
}

type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	LoadLatest(ctx context.Context) (*Snapshot, error)
}

type pgSnapshotStore struct {
	db *sql.DB
}

func NewPgSnapshotStore(db *sql.DB) SnapshotStore {
	return &pgSnapshotStore{db: db}
}

func (r *pgSnapshotStore) Save(ctx context.Context, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return common.Errorf("pgSnapshotStore.Save marshal: %w", err)
	}
	query := `INSERT INTO engine_snapshots (taken_at, payload) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, snap.TakenAt, payload); err != nil {
		return common.Errorf("pgSnapshotStore.Save: %w", err)
	}
	return nil
}

func (r *pgSnapshotStore) LoadLatest(ctx context.Context) (*Snapshot, error) {
	query := `SELECT payload FROM engine_snapshots ORDER BY taken_at DESC LIMIT 1`
	var payload []byte
	err := r.db.QueryRowContext(ctx, query).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.Errorf("pgSnapshotStore.LoadLatest: %w", err)
	}
	snap := &Snapshot{}
	if err := json.Unmarshal(payload, snap); err != nil {
		return nil, common.Errorf("pgSnapshotStore.LoadLatest unmarshal: %w", err)
	}
	return snap, nil
}
