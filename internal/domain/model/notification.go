package model

import "time"

const (
	NotificationRequestCreated   = "mentorship_request_created"
	NotificationSessionConfirmed = "session_confirmed"
	NotificationRequestDeclined  = "mentorship_request_declined"
	NotificationJudgeInvited     = "judge_invitation"
	NotificationInviteFollowUp   = "judge_invitation_follow_up"
	NotificationScorePosted      = "team_score_posted"
)

// Notification is the single outbound object per match or state change.
// Delivery is owned by an external collaborator; the engine only emits.
type Notification struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	RecipientID string            `json:"recipient_id"`
	Payload     map[string]string `json:"payload,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
