package engine

import (
	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/HossamAbdelnaby/bracket-engine/internal/utils"
	"github.com/google/uuid"
)

const maxSwissRounds = 5

// swissTotalRounds returns how many rounds a Swiss tournament plays:
// ceil(log2(n)) + 2, capped at 5.
func swissTotalRounds(teamCount int) int {
	rounds := log2int(nextPow2(teamCount)) + 2
	if rounds > maxSwissRounds {
		return maxSwissRounds
	}
	return rounds
}

// buildSwissFirstRound pairs teams by registration order. Later rounds
// depend on scores, so they are generated one at a time as rounds complete.
func buildSwissFirstRound(tournamentID uuid.UUID, teams []bracket.Team) []bracket.Match {
	var matches []*bracket.Match
	for i := 0; i < len(teams); i += 2 {
		m := newMatch(tournamentID, bracket.NoSide, 1, i/2+1)
		m.SetTeam(1, teams[i].ID)
		if i+1 < len(teams) {
			m.SetTeam(2, teams[i+1].ID)
		}
		matches = append(matches, m)
	}
	resolveByes(matches)
	return toValues(matches)
}

type teamPair struct {
	a, b uuid.UUID
}

func orderedPair(a, b uuid.UUID) teamPair {
	if b.String() < a.String() {
		return teamPair{b, a}
	}
	return teamPair{a, b}
}

// facedPairs collects every pairing that has already been played.
func facedPairs(matches []bracket.Match) map[teamPair]bool {
	faced := make(map[teamPair]bool)
	for _, m := range matches {
		if m.Team1ID != nil && m.Team2ID != nil {
			faced[orderedPair(*m.Team1ID, *m.Team2ID)] = true
		}
	}
	return faced
}

// swissNextRound generates the pairings for the given round from current
// standings: closest-score opponents, avoiding rematches when possible. An
// odd field gives the lowest-ranked unpaired team a bye.
func swissNextRound(tournamentID uuid.UUID, teams []bracket.Team, matches []bracket.Match, round int) []bracket.Match {
	ranked := ComputeStandings(bracket.Swiss, teams, matches)
	faced := facedPairs(matches)

	paired := make(map[uuid.UUID]bool, len(ranked))
	var next []bracket.Match
	order := 1

	appendMatch := func(a, b uuid.UUID) {
		m := newMatch(tournamentID, bracket.NoSide, round, order)
		order++
		m.SetTeam(1, a)
		m.SetTeam(2, b)
		next = append(next, *m)
	}

	for i, s := range ranked {
		if paired[s.TeamID] {
			continue
		}
		// Prefer the nearest-ranked fresh opponent; fall back to the
		// nearest-ranked one when every remaining opponent is a rematch.
		opponent := -1
		fallback := -1
		for j := i + 1; j < len(ranked); j++ {
			if paired[ranked[j].TeamID] {
				continue
			}
			if fallback == -1 {
				fallback = j
			}
			if !faced[orderedPair(s.TeamID, ranked[j].TeamID)] {
				opponent = j
				break
			}
		}
		if opponent == -1 {
			opponent = fallback
		}
		if opponent == -1 {
			// Odd field: the last team standing sits the round out.
			m := newMatch(tournamentID, bracket.NoSide, round, order)
			order++
			m.SetTeam(1, s.TeamID)
			m.IsBye = true
			m.WinnerSlot = utils.Ptr(1)
			m.Status = bracket.MatchDecided
			next = append(next, *m)
			paired[s.TeamID] = true
			continue
		}
		paired[s.TeamID] = true
		paired[ranked[opponent].TeamID] = true
		appendMatch(s.TeamID, ranked[opponent].TeamID)
	}

	return next
}
