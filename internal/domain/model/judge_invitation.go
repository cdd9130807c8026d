package model

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// MaxFollowUps caps repeat notifications for a pending invitation. Past the
// cap the invitation is left untouched; silence is terminal.
const MaxFollowUps = 2

// JudgeInvitation: at most one per (competition, stakeholder) pair.
// MatchedSkills is always a non-empty subset of the competition's required
// expertise; an empty intersection means no invitation exists at all.
type JudgeInvitation struct {
	ID              string           `json:"id"`
	CompetitionID   string           `json:"competition_id"`
	StakeholderID   string           `json:"stakeholder_id"`
	Status          InvitationStatus `json:"status"`
	MatchedSkills   []string         `json:"matched_skills"`
	SentAt          time.Time        `json:"sent_at"`
	LastEmailSentAt time.Time        `json:"last_email_sent_at"`
	RespondedAt     *time.Time       `json:"responded_at,omitempty"`
	Acknowledged    bool             `json:"acknowledged"`
	AcknowledgedAt  *time.Time       `json:"acknowledged_at,omitempty"`
	FollowUpCount   int              `json:"follow_up_count"`
}
