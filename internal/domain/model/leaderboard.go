package model

type LeaderboardEntry struct {
	Rank          int      `json:"rank"`
	TeamID        string   `json:"team_id"`
	TeamName      string   `json:"team_name"`
	Score         *float64 `json:"score,omitempty"`
	FileSubmitted bool     `json:"file_submitted"`
}
