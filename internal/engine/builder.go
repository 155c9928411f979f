package engine

import (
	"fmt"
	"sort"

	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/HossamAbdelnaby/bracket-engine/internal/utils"
	"github.com/google/uuid"
)

// BuildMatches constructs the initial match graph for a tournament. It is
// pure: no IDs are looked up and nothing is persisted. Routing pointers are
// fixed here and never searched for at advancement time.
func BuildMatches(t *bracket.Tournament, teams []bracket.Team) ([]bracket.Match, error) {
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: found %d, minimum 2", ErrInsufficientTeams, len(teams))
	}
	if t.MaxTeams > 0 && len(teams) > t.MaxTeams {
		return nil, fmt.Errorf("%w: %d registered, limit %d", ErrTooManyTeams, len(teams), t.MaxTeams)
	}

	switch t.Format {
	case bracket.SingleElimination:
		return buildSingleElimination(t.ID, teams, t.MaxTeams), nil
	case bracket.DoubleElimination:
		return buildDoubleElimination(t.ID, teams, t.MaxTeams), nil
	case bracket.Swiss:
		return buildSwissFirstRound(t.ID, teams), nil
	case bracket.GroupStage:
		return buildGroupStage(t.ID, teams), nil
	case bracket.Leaderboard:
		// No matches up front; results arrive ad hoc and standings start at zero.
		return []bracket.Match{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, t.Format)
	}
}

// bracketSize picks the number of first-round slots: the next power of two
// above the registered count, capped by the configured maximum. Keeping the
// size tied to the actual count guarantees fewer byes than first-round
// matches, so no winners match starts with two empty slots unless byes
// cascade from earlier rounds.
func bracketSize(teamCount, maxTeams int) int {
	size := nextPow2(teamCount)
	if maxTeams > 1 && nextPow2(maxTeams) < size {
		size = nextPow2(maxTeams)
	}
	return size
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func nextPow2(count int) int {
	if count <= 0 {
		return 0
	}
	size := 1
	for size < count {
		size <<= 1
	}
	return size
}

func log2int(size int) int {
	n := 0
	for 1<<n < size {
		n++
	}
	return n
}

func newMatch(tournamentID uuid.UUID, side bracket.BracketSide, round, order int) *bracket.Match {
	return &bracket.Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		BracketSide:  side,
		RoundNumber:  round,
		MatchOrder:   order,
		Status:       bracket.MatchPending,
	}
}

// buildEliminationTree generates one elimination bracket of the given size
// with winner pointers wired between rounds. Significantly easier to start
// from the last round and work backwards.
func buildEliminationTree(tournamentID uuid.UUID, side bracket.BracketSide, size int) []*bracket.Match {
	totalRounds := log2int(size)
	var matches []*bracket.Match

	nextRoundIDs := make(map[int]uuid.UUID)

	for r := totalRounds; r >= 1; r-- {
		matchesInRound := size >> r
		currentRoundIDs := make(map[int]uuid.UUID)

		for i := 0; i < matchesInRound; i++ {
			matchOrder := i + 1
			m := newMatch(tournamentID, side, r, matchOrder)

			if r < totalRounds {
				parentID := nextRoundIDs[(matchOrder+1)/2]
				m.WinnerNextMatchID = &parentID
				if matchOrder%2 != 0 {
					m.WinnerNextSlot = utils.Ptr(1)
				} else {
					m.WinnerNextSlot = utils.Ptr(2)
				}
			}

			matches = append(matches, m)
			currentRoundIDs[matchOrder] = m.ID
		}
		nextRoundIDs = currentRoundIDs
	}

	return matches
}

// assignFirstRound places teams into round-1 slots by registration order:
// the team at index i goes to match i/2, slot 1 if i is even, slot 2 if
// odd. Deterministic so re-running on the same input is idempotent; unfilled
// slots trail the field and become byes.
func assignFirstRound(matches []*bracket.Match, teams []bracket.Team) {
	round1 := make([]*bracket.Match, 0)
	for _, m := range matches {
		if m.BracketSide != bracket.LosersSide && m.BracketSide != bracket.FinalsSide && m.RoundNumber == 1 {
			round1 = append(round1, m)
		}
	}
	sort.Slice(round1, func(i, j int) bool { return round1[i].MatchOrder < round1[j].MatchOrder })

	for i, team := range teams {
		if i/2 >= len(round1) {
			break
		}
		round1[i/2].SetTeam(i%2+1, team.ID)
	}
}

type slotRef struct {
	matchID uuid.UUID
	slot    int
}

// feedEdge identifies the pointer on a source match that fills a slot.
type feedEdge struct {
	from   *bracket.Match
	winner bool
}

func (e feedEdge) retarget(matchID *uuid.UUID, slot *int) {
	if e.winner {
		e.from.WinnerNextMatchID = matchID
		e.from.WinnerNextSlot = slot
	} else {
		e.from.LoserNextMatchID = matchID
		e.from.LoserNextSlot = slot
	}
}

// resolveByes decides every match that can never receive two teams. A slot
// is dead when it is empty and either nothing feeds it or its feeder can
// never produce a team. Dead slots cascade forward: a match fed only by
// byes becomes a bye with no occupant, and a match with one dead slot and
// one live feeder is bypassed by rewiring the feeder past it.
func resolveByes(matches []*bracket.Match) {
	byID := make(map[uuid.UUID]*bracket.Match, len(matches))
	feeders := make(map[slotRef]feedEdge)
	for _, m := range matches {
		byID[m.ID] = m
		if m.WinnerNextMatchID != nil && m.WinnerNextSlot != nil {
			feeders[slotRef{*m.WinnerNextMatchID, *m.WinnerNextSlot}] = feedEdge{m, true}
		}
		if m.LoserNextMatchID != nil && m.LoserNextSlot != nil {
			feeders[slotRef{*m.LoserNextMatchID, *m.LoserNextSlot}] = feedEdge{m, false}
		}
	}

	dead := make(map[slotRef]bool)
	markDead := func(id *uuid.UUID, slot *int) {
		if id != nil && slot != nil {
			dead[slotRef{*id, *slot}] = true
		}
	}

	// Pointers only ever run forward in this order, so one sweep settles
	// every cascade.
	ordered := make([]*bracket.Match, len(matches))
	copy(ordered, matches)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if sideRank(a.BracketSide) != sideRank(b.BracketSide) {
			return sideRank(a.BracketSide) < sideRank(b.BracketSide)
		}
		if a.RoundNumber != b.RoundNumber {
			return a.RoundNumber < b.RoundNumber
		}
		return a.MatchOrder < b.MatchOrder
	})

	for _, m := range ordered {
		if m.Status == bracket.MatchDecided {
			continue
		}
		r1, r2 := slotRef{m.ID, 1}, slotRef{m.ID, 2}
		_, fed1 := feeders[r1]
		_, fed2 := feeders[r2]
		d1 := m.Team1ID == nil && (!fed1 || dead[r1])
		d2 := m.Team2ID == nil && (!fed2 || dead[r2])

		switch {
		case m.Team1ID != nil && m.Team2ID != nil:
			m.Status = bracket.MatchReady
		case m.Team1ID != nil && d2:
			decideBye(m, 1, byID, markDead)
		case m.Team2ID != nil && d1:
			decideBye(m, 2, byID, markDead)
		case m.Team1ID == nil && m.Team2ID == nil && d1 && d2:
			// Nothing will ever occupy this match: it advances nobody.
			m.IsBye = true
			m.Status = bracket.MatchDecided
			markDead(m.WinnerNextMatchID, m.WinnerNextSlot)
			markDead(m.LoserNextMatchID, m.LoserNextSlot)
		case m.Team1ID == nil && m.Team2ID == nil && (d1 || d2):
			// One side will never arrive; whoever reaches the live slot
			// would win unopposed, so route the live feeder straight past
			// this match.
			live := r1
			if d1 {
				live = r2
			}
			edge, ok := feeders[live]
			if !ok || m.WinnerNextMatchID == nil {
				continue
			}
			edge.retarget(m.WinnerNextMatchID, m.WinnerNextSlot)
			feeders[slotRef{*m.WinnerNextMatchID, *m.WinnerNextSlot}] = edge
			m.IsBye = true
			m.Status = bracket.MatchDecided
			markDead(m.LoserNextMatchID, m.LoserNextSlot)
		}
	}
}

// decideBye resolves a single-occupant match immediately, advancing the
// sole team without waiting for a score. A bye produces no loser.
func decideBye(m *bracket.Match, winnerSlot int, byID map[uuid.UUID]*bracket.Match, markDead func(*uuid.UUID, *int)) {
	m.IsBye = true
	m.WinnerSlot = utils.Ptr(winnerSlot)
	m.Status = bracket.MatchDecided

	if m.WinnerNextMatchID != nil && m.WinnerNextSlot != nil {
		if next, ok := byID[*m.WinnerNextMatchID]; ok {
			next.SetTeam(*m.WinnerNextSlot, *m.TeamInSlot(winnerSlot))
		}
	}
	markDead(m.LoserNextMatchID, m.LoserNextSlot)
}

func sideRank(side bracket.BracketSide) int {
	switch side {
	case bracket.LosersSide:
		return 1
	case bracket.FinalsSide:
		return 2
	default:
		return 0
	}
}

func toValues(matches []*bracket.Match) []bracket.Match {
	out := make([]bracket.Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, *m)
	}
	return out
}
