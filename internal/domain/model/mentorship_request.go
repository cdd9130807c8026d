package model

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted" // transient, UI-only; resolves to confirmed
	RequestDeclined  RequestStatus = "declined"
	RequestConfirmed RequestStatus = "confirmed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestDeclined || s == RequestConfirmed
}

type Session struct {
	MeetingTime string `json:"meeting_time"`
	MeetingLink string `json:"meeting_link,omitempty"`
}

// MentorshipRequest is created by a student action; transitions are driven
// only by the mentor (or the system, for confirmation).
type MentorshipRequest struct {
	ID        string        `json:"id"`
	StudentID string        `json:"student_id"`
	MentorID  string        `json:"mentor_id"`
	Message   string        `json:"message"`
	Status    RequestStatus `json:"status"`
	Session   *Session      `json:"session,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
