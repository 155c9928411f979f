package bracket

import "github.com/google/uuid"

type TeamState string

const (
	TeamActive TeamState = "active"
	// TeamLosersEntrant marks a team already routed into the losers bracket once.
	TeamLosersEntrant TeamState = "losers_entrant"
	TeamEliminated    TeamState = "eliminated"
)

// Team is the engine's view of a registered team: identity, display name
// and seed (1-based registration order). Registration itself is owned
// externally; teams are immutable once the graph is built, except for State.
type Team struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	Name         string    `db:"name" json:"name"`
	Seed         int       `db:"seed" json:"seed"`
	State        TeamState `db:"state" json:"state"`
}
