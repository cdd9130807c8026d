package model

import "time"

// Competition required-expertise set is fixed at creation; Judges holds the
// ids of stakeholders whose invitations were accepted.
type Competition struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	Deadline          time.Time `json:"deadline"`
	RequiredExpertise []string  `json:"required_expertise"`
	Judges            []string  `json:"judges,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
