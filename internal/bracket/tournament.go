package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft        TournamentStatus = "draft"
	TournamentRegistration TournamentStatus = "registration"
	TournamentInProgress   TournamentStatus = "in_progress"
	TournamentCompleted    TournamentStatus = "completed"
)

type Format string

const (
	SingleElimination Format = "single_elimination"
	DoubleElimination Format = "double_elimination"
	Swiss             Format = "swiss"
	GroupStage        Format = "group_stage"
	Leaderboard       Format = "leaderboard"
)

// ParseFormat maps a wire value to a Format, false for anything unknown.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case SingleElimination, DoubleElimination, Swiss, GroupStage, Leaderboard:
		return Format(s), true
	}
	return "", false
}

type Tournament struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	Format    Format           `db:"format" json:"format"`
	MaxTeams  int              `db:"max_teams" json:"max_teams"`
	Status    TournamentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
