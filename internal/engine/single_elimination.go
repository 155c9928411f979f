package engine

import (
	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/google/uuid"
)

// buildSingleElimination produces one winners-side tree sized to the next
// power of two above the team count. Trailing slots short of a full bracket
// become byes and resolve immediately.
func buildSingleElimination(tournamentID uuid.UUID, teams []bracket.Team, maxTeams int) []bracket.Match {
	size := bracketSize(len(teams), maxTeams)

	matches := buildEliminationTree(tournamentID, bracket.WinnersSide, size)
	assignFirstRound(matches, teams)
	resolveByes(matches)

	return toValues(matches)
}
