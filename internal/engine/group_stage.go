package engine

import (
	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/google/uuid"
)

const groupSize = 4

// buildGroupStage partitions teams into groups of at most four by
// registration order and generates a full round robin inside each group:
// n*(n-1)/2 matches, all independent, all playable immediately.
func buildGroupStage(tournamentID uuid.UUID, teams []bracket.Team) []bracket.Match {
	var matches []*bracket.Match

	for start := 0; start < len(teams); start += groupSize {
		end := start + groupSize
		if end > len(teams) {
			end = len(teams)
		}
		group := teams[start:end]
		groupNumber := start/groupSize + 1

		order := 1
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				m := newMatch(tournamentID, bracket.NoSide, 1, order)
				m.GroupNumber = groupNumber
				m.SetTeam(1, group[i].ID)
				m.SetTeam(2, group[j].ID)
				matches = append(matches, m)
				order++
			}
		}

		// A leftover group of one has nobody to play; its team simply
		// stands alone in the group table.
	}

	return toValues(matches)
}
