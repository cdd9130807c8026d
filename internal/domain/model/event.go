package model

import "time"

type EventResource struct {
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Event covers both events and lectures; lectures carry related skills in
// Tags and a speaker roster.
type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Tags        []string        `json:"tags,omitempty"`
	Date        time.Time       `json:"date"`
	SpeakerIDs  []string        `json:"speaker_ids,omitempty"`
	Resources   []EventResource `json:"resources,omitempty"`
	RSVPUserIDs []string        `json:"rsvp_user_ids,omitempty"`
	AttendeeIDs []string        `json:"attendee_ids,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AttendanceReport is derived, never stored. TurnoutRate is nil (unknown,
// not zero) when there were no RSVPs.
type AttendanceReport struct {
	EventID         string `json:"event_id"`
	RSVPCount       int    `json:"rsvp_count"`
	AttendanceCount int    `json:"attendance_count"`
	TurnoutRate     *int   `json:"turnout_rate,omitempty"`
}
