package engine

import (
	"sort"

	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/google/uuid"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// ComputeStandings derives a totally ordered ranking from the decided match
// set. It never mutates match state and is deterministic: points desc, then
// the format's tie-breaker desc (Buchholz for Swiss, goal difference
// otherwise), then team name asc.
func ComputeStandings(format bracket.Format, teams []bracket.Team, matches []bracket.Match) []bracket.Standing {
	index := make(map[uuid.UUID]*bracket.Standing, len(teams))
	for _, t := range teams {
		index[t.ID] = &bracket.Standing{TeamID: t.ID, TeamName: t.Name}
	}

	opponents := make(map[uuid.UUID][]uuid.UUID)

	for _, m := range matches {
		if m.Status != bracket.MatchDecided {
			continue
		}
		s1 := lookup(index, m.Team1ID)
		s2 := lookup(index, m.Team2ID)

		if s1 != nil && s2 != nil {
			opponents[s1.TeamID] = append(opponents[s1.TeamID], s2.TeamID)
			opponents[s2.TeamID] = append(opponents[s2.TeamID], s1.TeamID)
		}

		applyResult(s1, &m)
		applyResult(s2, &m)
	}

	standings := make([]bracket.Standing, 0, len(teams))
	for _, t := range teams {
		entry := index[t.ID]
		for _, opp := range opponents[t.ID] {
			entry.Buchholz += index[opp].Points
		}
		entry.GoalDiff = entry.GoalsFor - entry.GoalsAgainst
		standings = append(standings, *entry)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		ta, tb := tieBreak(format, a), tieBreak(format, b)
		if ta != tb {
			return ta > tb
		}
		return a.TeamName < b.TeamName
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings
}

func tieBreak(format bracket.Format, s bracket.Standing) int {
	if format == bracket.Swiss {
		return s.Buchholz
	}
	return s.GoalDiff
}

func lookup(index map[uuid.UUID]*bracket.Standing, id *uuid.UUID) *bracket.Standing {
	if id == nil {
		return nil
	}
	return index[*id]
}

// applyResult credits one side of a decided match. Byes count as a win for
// the sole occupant; the empty side contributes nothing.
func applyResult(entry *bracket.Standing, m *bracket.Match) {
	if entry == nil {
		return
	}
	entry.Played++

	mine, theirs := m.Score1, m.Score2
	ownSlot := 1
	if m.Team2ID != nil && *m.Team2ID == entry.TeamID {
		mine, theirs = m.Score2, m.Score1
		ownSlot = 2
	}
	if mine != nil {
		entry.GoalsFor += *mine
	}
	if theirs != nil {
		entry.GoalsAgainst += *theirs
	}

	switch {
	case m.IsDraw:
		entry.Draws++
		entry.Points += pointsDraw
	case m.WinnerSlot != nil && *m.WinnerSlot == ownSlot:
		entry.Wins++
		entry.Points += pointsWin
	case m.WinnerSlot != nil:
		entry.Losses++
	}
}
