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

// LifecycleService owns the mentorship-request state machine. The persisted
// transitions are pending->confirmed and pending->declined; "accepted" is a
// transient confirmation step that never reaches the store on its own.
type LifecycleService struct {
	store   *repository.Store
	emitter NotificationEmitter
	now     Clock
}

func NewLifecycleService(store *repository.Store, emitter NotificationEmitter, now Clock) *LifecycleService {
	if now == nil {
		now = time.Now
	}
	return &LifecycleService{store: store, emitter: emitter, now: now}
}

type CreateRequestInput struct {
	StudentID string `json:"student_id"`
	MentorID  string `json:"mentor_id"`
	Message   string `json:"message"`
}

func (s *LifecycleService) CreateRequest(ctx context.Context, in CreateRequestInput) (*model.MentorshipRequest, error) {
	if strings.TrimSpace(in.StudentID) == "" || strings.TrimSpace(in.MentorID) == "" {
		return nil, common.Errorf("student_id and mentor_id are required: %w", common.ErrValidation)
	}

	now := s.now()
	req := &model.MentorshipRequest{
		ID:        uuid.NewString(),
		StudentID: in.StudentID,
		MentorID:  in.MentorID,
		Message:   in.Message,
		Status:    model.RequestPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.Update(func(tx *repository.WriteTx) error {
		student, err := tx.GetUser(in.StudentID)
		if err != nil {
			return common.Errorf("student %s: %w", in.StudentID, common.ErrNotFound)
		}
		mentor, err := tx.GetUser(in.MentorID)
		if err != nil {
			return common.Errorf("mentor %s: %w", in.MentorID, common.ErrNotFound)
		}
		if !mentor.IsMentor && mentor.Role != model.RoleMentor && mentor.Role != model.RoleAlumni {
			return common.Errorf("user %s cannot receive mentorship requests: %w", in.MentorID, common.ErrValidation)
		}

		tx.PutRequest(req)

		student.LastActiveAt = &now
		student.UpdatedAt = now
		tx.PutUser(student)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(model.NotificationRequestCreated, req.MentorID, map[string]string{
		"request_id": req.ID,
		"student_id": req.StudentID,
	})
	return req, nil
}

// AcceptRequest opens the session-confirmation step. It validates the
// pending precondition but mutates nothing; the durable success state is
// written by ConfirmSession.
func (s *LifecycleService) AcceptRequest(ctx context.Context, requestID string) (*model.MentorshipRequest, error) {
	var req *model.MentorshipRequest
	err := s.store.View(func(tx *repository.ReadTx) error {
		r, err := tx.GetRequest(requestID)
		if err != nil {
			return err
		}
		if r.Status != model.RequestPending {
			return common.Errorf("cannot accept request in status %q: %w", r.Status, common.ErrInvalidTransition)
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	req.Status = model.RequestAccepted
	return req, nil
}

// ConfirmSession resolves an accepted request to confirmed and attaches the
// session details. Confirming an already-confirmed request is a no-op that
// returns the stored session; nothing is re-emitted.
func (s *LifecycleService) ConfirmSession(ctx context.Context, requestID string, session model.Session) (*model.MentorshipRequest, error) {
	if strings.TrimSpace(session.MeetingTime) == "" {
		return nil, common.Errorf("meeting_time is required: %w", common.ErrValidation)
	}

	now := s.now()
	var req *model.MentorshipRequest
	var confirmed bool
	err := s.store.Update(func(tx *repository.WriteTx) error {
		r, err := tx.GetRequest(requestID)
		if err != nil {
			return err
		}
		switch r.Status {
		case model.RequestConfirmed:
			req = r
			return nil
		case model.RequestPending, model.RequestAccepted:
			r.Status = model.RequestConfirmed
			r.Session = &session
			r.UpdatedAt = now
			tx.PutRequest(r)
			if mentor, err := tx.GetUser(r.MentorID); err == nil {
				mentor.LastActiveAt = &now
				mentor.UpdatedAt = now
				tx.PutUser(mentor)
			}
			req = r
			confirmed = true
			return nil
		default:
			return common.Errorf("cannot confirm request in status %q: %w", r.Status, common.ErrInvalidTransition)
		}
	})
	if err != nil {
		return nil, err
	}

	if confirmed {
		payload := map[string]string{
			"request_id":   req.ID,
			"meeting_time": session.MeetingTime,
			"meeting_link": session.MeetingLink,
		}
		s.emitter.Emit(model.NotificationSessionConfirmed, req.StudentID, payload)
		s.emitter.Emit(model.NotificationSessionConfirmed, req.MentorID, payload)
	}
	return req, nil
}

func (s *LifecycleService) DeclineRequest(ctx context.Context, requestID string) (*model.MentorshipRequest, error) {
	now := s.now()
	var req *model.MentorshipRequest
	err := s.store.Update(func(tx *repository.WriteTx) error {
		r, err := tx.GetRequest(requestID)
		if err != nil {
			return err
		}
		if r.Status != model.RequestPending {
			return common.Errorf("cannot decline request in status %q: %w", r.Status, common.ErrInvalidTransition)
		}
		r.Status = model.RequestDeclined
		r.UpdatedAt = now
		tx.PutRequest(r)
		if mentor, err := tx.GetUser(r.MentorID); err == nil {
			mentor.LastActiveAt = &now
			mentor.UpdatedAt = now
			tx.PutUser(mentor)
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(model.NotificationRequestDeclined, req.StudentID, map[string]string{
		"request_id": req.ID,
	})
	return req, nil
}

// ListRequestsForMentor returns the mentor's requests newest first, ties
// broken by id ascending so repeated reads are identical.
func (s *LifecycleService) ListRequestsForMentor(ctx context.Context, mentorID string, statusFilter model.RequestStatus) ([]model.MentorshipRequest, error) {
	var out []model.MentorshipRequest
	err := s.store.View(func(tx *repository.ReadTx) error {
		for _, r := range tx.ListRequests() {
			if r.MentorID != mentorID {
				continue
			}
			if statusFilter != "" && r.Status != statusFilter {
				continue
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
