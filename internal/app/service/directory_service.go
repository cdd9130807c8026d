package service

import (
	"context"
	"strings"
	"time"

	"engagement_hub/internal/common"
	"engagement_hub/internal/domain/model"
	"engagement_hub/internal/domain/repository"

	"github.com/google/uuid"
)

var validRoles = map[string]struct{}{
	model.RoleStudent: {},
	model.RoleMentor:  {},
	model.RoleAlumni:  {},
	model.RoleJudge:   {},
	model.RoleSpeaker: {},
	model.RoleFaculty: {},
	model.RoleAdmin:   {},
}

// DirectoryService manages user records. Identity is issued externally;
// this only maintains the engine's view of who exists and what they can do.
type DirectoryService struct {
	store *repository.Store
	now   Clock
}

func NewDirectoryService(store *repository.Store, now Clock) *DirectoryService {
	if now == nil {
		now = time.Now
	}
	return &DirectoryService{store: store, now: now}
}

type CreateUserInput struct {
	ID            string   `json:"id,omitempty"`
	DisplayName   string   `json:"display_name"`
	Role          string   `json:"role"`
	IsMentor      bool     `json:"is_mentor"`
	IsJudge       bool     `json:"is_judge"`
	IsSpeaker     bool     `json:"is_speaker"`
	IsParticipant bool     `json:"is_participant"`
	Expertise     []string `json:"expertise"`
}

func (s *DirectoryService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if strings.TrimSpace(in.DisplayName) == "" {
		return nil, common.Errorf("display_name is required: %w", common.ErrValidation)
	}
	if _, ok := validRoles[in.Role]; !ok {
		return nil, common.Errorf("unknown role %q: %w", in.Role, common.ErrValidation)
	}

	now := s.now()
	user := &model.User{
		ID:            in.ID,
		DisplayName:   strings.TrimSpace(in.DisplayName),
		Role:          in.Role,
		IsMentor:      in.IsMentor,
		IsJudge:       in.IsJudge,
		IsSpeaker:     in.IsSpeaker,
		IsParticipant: in.IsParticipant,
		Expertise:     dedupeTags(in.Expertise),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	err := s.store.Update(func(tx *repository.WriteTx) error {
		if _, err := tx.GetUser(user.ID); err == nil {
			return common.Errorf("user %s: %w", user.ID, common.ErrDuplicate)
		}
		tx.PutUser(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

type CapabilityUpdate struct {
	IsMentor      *bool `json:"is_mentor,omitempty"`
	IsJudge       *bool `json:"is_judge,omitempty"`
	IsSpeaker     *bool `json:"is_speaker,omitempty"`
	IsParticipant *bool `json:"is_participant,omitempty"`
}

// UpdateCapabilities flips capability flags; identity fields stay immutable.
func (s *DirectoryService) UpdateCapabilities(ctx context.Context, userID string, upd CapabilityUpdate) (*model.User, error) {
	now := s.now()
	var user *model.User
	err := s.store.Update(func(tx *repository.WriteTx) error {
		u, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		if upd.IsMentor != nil {
			u.IsMentor = *upd.IsMentor
		}
		if upd.IsJudge != nil {
			u.IsJudge = *upd.IsJudge
		}
		if upd.IsSpeaker != nil {
			u.IsSpeaker = *upd.IsSpeaker
		}
		if upd.IsParticipant != nil {
			u.IsParticipant = *upd.IsParticipant
		}
		u.UpdatedAt = now
		tx.PutUser(u)
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *DirectoryService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user *model.User
	err := s.store.View(func(tx *repository.ReadTx) error {
		u, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *DirectoryService) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.store.View(func(tx *repository.ReadTx) error {
		users = tx.ListUsers()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
