package model

import (
	"time"
)

const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
	RoleAlumni  = "alumni"
	RoleJudge   = "judge"
	RoleSpeaker = "speaker"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// User identity is immutable after creation; capability flags are mutated
// by admin action only.
type User struct {
	ID            string     `json:"id"`
	DisplayName   string     `json:"display_name"`
	Role          string     `json:"role"`
	IsMentor      bool       `json:"is_mentor"`
	IsJudge       bool       `json:"is_judge"`
	IsSpeaker     bool       `json:"is_speaker"`
	IsParticipant bool       `json:"is_participant"`
	Expertise     []string   `json:"expertise,omitempty"`
	LastActiveAt  *time.Time `json:"last_active_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Stakeholder is the slice of a user the matching engine needs: an id and a
// set of declared expertise tags.
type Stakeholder struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Expertise []string `json:"expertise"`
}
