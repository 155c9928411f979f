package engine

import (
	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/HossamAbdelnaby/bracket-engine/internal/utils"
	"github.com/google/uuid"
)

// buildDoubleElimination builds a full winners bracket, a losers bracket
// that re-seats every winners-side loser exactly once, and a grand final
// between the two bracket champions.
//
// For a winners bracket of W rounds the losers bracket has 2*(W-1) rounds
// arranged in stages: each stage opens with a survivor round pairing
// losers-bracket winners against each other and closes with an intake round
// where the next winners round's losers drop in. Winners round 1 losers
// pair up directly in losers round 1; the loser of winners round r >= 2
// drops into losers round 2*(r-1), slot 2.
func buildDoubleElimination(tournamentID uuid.UUID, teams []bracket.Team, maxTeams int) []bracket.Match {
	size := bracketSize(len(teams), maxTeams)
	totalWinnersRounds := log2int(size)

	winners := buildEliminationTree(tournamentID, bracket.WinnersSide, size)
	winnersByRound := make(map[int][]*bracket.Match)
	for _, m := range winners {
		winnersByRound[m.RoundNumber] = append(winnersByRound[m.RoundNumber], m)
	}

	grandFinal := newMatch(tournamentID, bracket.FinalsSide, 1, 1)

	var losers []*bracket.Match
	var losersFinal *bracket.Match

	if totalWinnersRounds == 1 {
		// Degenerate two-team bracket: the single losers-round match can
		// never see a second team, so bye resolution collapses it and
		// routes the final's loser straight into a grand-final rematch.
		lb := newMatch(tournamentID, bracket.LosersSide, 1, 1)
		losers = append(losers, lb)
		losersFinal = lb

		wbFinal := winnersByRound[1][0]
		wbFinal.LoserNextMatchID = &lb.ID
		wbFinal.LoserNextSlot = utils.Ptr(1)
	} else {
		losersByRound := make(map[int][]*bracket.Match)
		for stage := 1; stage < totalWinnersRounds; stage++ {
			matchesInStage := size >> (stage + 1)
			for _, round := range []int{2*stage - 1, 2 * stage} {
				for order := 1; order <= matchesInStage; order++ {
					m := newMatch(tournamentID, bracket.LosersSide, round, order)
					losers = append(losers, m)
					losersByRound[round] = append(losersByRound[round], m)
				}
			}
		}
		lastRound := 2 * (totalWinnersRounds - 1)
		losersFinal = losersByRound[lastRound][0]

		// Winners round 1 losers pair up in losers round 1.
		for _, wb := range winnersByRound[1] {
			target := losersByRound[1][(wb.MatchOrder-1)/2]
			wb.LoserNextMatchID = &target.ID
			if wb.MatchOrder%2 != 0 {
				wb.LoserNextSlot = utils.Ptr(1)
			} else {
				wb.LoserNextSlot = utils.Ptr(2)
			}
		}

		// Later winners losers drop into the intake round of their stage.
		for r := 2; r <= totalWinnersRounds; r++ {
			intake := losersByRound[2*(r-1)]
			for _, wb := range winnersByRound[r] {
				target := intake[wb.MatchOrder-1]
				wb.LoserNextMatchID = &target.ID
				wb.LoserNextSlot = utils.Ptr(2)
			}
		}

		// Internal losers wiring: survivor round winners meet the intake
		// drop-in one-to-one; intake winners fold into the next stage.
		for round := 1; round <= lastRound; round++ {
			for _, lb := range losersByRound[round] {
				if round%2 != 0 {
					target := losersByRound[round+1][lb.MatchOrder-1]
					lb.WinnerNextMatchID = &target.ID
					lb.WinnerNextSlot = utils.Ptr(1)
				} else if round < lastRound {
					target := losersByRound[round+1][(lb.MatchOrder-1)/2]
					lb.WinnerNextMatchID = &target.ID
					if lb.MatchOrder%2 != 0 {
						lb.WinnerNextSlot = utils.Ptr(1)
					} else {
						lb.WinnerNextSlot = utils.Ptr(2)
					}
				}
			}
		}
	}

	wbFinal := winnersByRound[totalWinnersRounds][0]
	wbFinal.WinnerNextMatchID = &grandFinal.ID
	wbFinal.WinnerNextSlot = utils.Ptr(1)

	losersFinal.WinnerNextMatchID = &grandFinal.ID
	losersFinal.WinnerNextSlot = utils.Ptr(2)

	all := append(winners, losers...)
	all = append(all, grandFinal)

	assignFirstRound(all, teams)
	resolveByes(all)

	return toValues(all)
}
