package bracket

import "github.com/google/uuid"

// Standing is a derived ranking record. It is recomputed from the decided
// match set on demand and never persisted as authoritative state.
type Standing struct {
	TeamID   uuid.UUID `json:"team_id"`
	TeamName string    `json:"team_name"`
	Rank     int       `json:"rank"`

	Points int `json:"points"`
	Played int `json:"played"`
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`

	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
	GoalDiff     int `json:"goal_diff"`

	// Buchholz is the sum of all opponents' points, the Swiss tie-breaker.
	Buchholz int `json:"buchholz"`
}
