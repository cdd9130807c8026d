package model

import "time"

// MaxTeamScore bounds a team's total score; rubric maxima must sum to it.
const MaxTeamScore = 50.0

type SubmissionFile struct {
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type TeamSubmission struct {
	Files         []SubmissionFile `json:"files,omitempty"`
	FileSubmitted bool             `json:"file_submitted"`
}

// Team score, when present, equals the sum of its breakdown and never
// decreases implicitly; a judge revising a score replaces it wholesale.
type Team struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Members        []string           `json:"members"`
	Score          *float64           `json:"score,omitempty"`
	ScoreBreakdown map[string]float64 `json:"score_breakdown,omitempty"`
	Feedback       string             `json:"feedback,omitempty"`
	Submission     TeamSubmission     `json:"submission"`
	ScoredAt       *time.Time         `json:"scored_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
