package bracket

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// GraphView groups a tournament's flat match list by bracket side and
// round so API consumers can reconstruct the graph without re-sorting.
type GraphView struct {
	WBRounds       map[int][]Match    `json:"winners_rounds"`
	WBRoundNums    []int              `json:"winners_round_numbers"`
	WBRoundNames   map[int]string     `json:"winners_round_names"`
	LBRounds       map[int][]Match    `json:"losers_rounds"`
	LBRoundNums    []int              `json:"losers_round_numbers"`
	FinalRounds    map[int][]Match    `json:"final_rounds"`
	FinalRoundNums []int              `json:"final_round_numbers"`
	TeamMap        map[uuid.UUID]Team `json:"teams"`
}

// BuildGraphView partitions matches by side, keyed and sorted by round,
// each round ordered by match order. Winners-side rounds carry display
// names ("Quarterfinal", "Semifinal", "Final"); flat formats number their
// rounds instead.
func BuildGraphView(teams []Team, matches []Match) GraphView {
	teamMap := make(map[uuid.UUID]Team)
	for _, t := range teams {
		teamMap[t.ID] = t
	}

	wbRounds := make(map[int][]Match)
	lbRounds := make(map[int][]Match)
	finalRounds := make(map[int][]Match)

	var wbRoundNums, lbRoundNums, finalRoundNums []int

	elimination := false
	for _, m := range matches {
		switch m.BracketSide {
		case LosersSide:
			if _, exists := lbRounds[m.RoundNumber]; !exists {
				lbRoundNums = append(lbRoundNums, m.RoundNumber)
			}
			lbRounds[m.RoundNumber] = append(lbRounds[m.RoundNumber], m)
		case FinalsSide:
			if _, exists := finalRounds[m.RoundNumber]; !exists {
				finalRoundNums = append(finalRoundNums, m.RoundNumber)
			}
			finalRounds[m.RoundNumber] = append(finalRounds[m.RoundNumber], m)
		default:
			// winners side and flat (none) brackets share the main column
			if m.BracketSide == WinnersSide {
				elimination = true
			}
			if _, exists := wbRounds[m.RoundNumber]; !exists {
				wbRoundNums = append(wbRoundNums, m.RoundNumber)
			}
			wbRounds[m.RoundNumber] = append(wbRounds[m.RoundNumber], m)
		}
	}

	sort.Ints(wbRoundNums)
	sort.Ints(lbRoundNums)
	sort.Ints(finalRoundNums)

	sortRounds(wbRounds, wbRoundNums)
	sortRounds(lbRounds, lbRoundNums)
	sortRounds(finalRounds, finalRoundNums)

	wbRoundNames := make(map[int]string, len(wbRoundNums))
	for _, r := range wbRoundNums {
		if elimination {
			wbRoundNames[r] = RoundName(r, wbRoundNums[len(wbRoundNums)-1])
		} else {
			wbRoundNames[r] = fmt.Sprintf("Round %d", r)
		}
	}

	return GraphView{
		WBRounds:       wbRounds,
		WBRoundNums:    wbRoundNums,
		WBRoundNames:   wbRoundNames,
		LBRounds:       lbRounds,
		LBRoundNums:    lbRoundNums,
		FinalRounds:    finalRounds,
		FinalRoundNums: finalRoundNums,
		TeamMap:        teamMap,
	}
}

func sortRounds(rounds map[int][]Match, roundNums []int) {
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			if rounds[r][i].GroupNumber != rounds[r][j].GroupNumber {
				return rounds[r][i].GroupNumber < rounds[r][j].GroupNumber
			}
			return rounds[r][i].MatchOrder < rounds[r][j].MatchOrder
		})
	}
}
