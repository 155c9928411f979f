package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	// MatchPending means at least one slot is still waiting on an earlier result.
	MatchPending MatchStatus = "pending"
	MatchReady   MatchStatus = "ready"
	MatchDecided MatchStatus = "decided"
)

type BracketSide string

const (
	WinnersSide BracketSide = "winners"
	LosersSide  BracketSide = "losers"
	FinalsSide  BracketSide = "finals"
	// NoSide is used by formats without elimination sides (Swiss, groups, leaderboard).
	NoSide BracketSide = "none"
)

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	// Position in the tournament for reconstructing the graph
	BracketSide BracketSide `db:"bracket_side" json:"bracket_side"`
	GroupNumber int         `db:"group_number" json:"group_number,omitempty"`
	RoundNumber int         `db:"round_number" json:"round_number"`
	MatchOrder  int         `db:"match_order" json:"match_order"`

	Team1ID *uuid.UUID `db:"team_1_id" json:"team_1_id"`
	Team2ID *uuid.UUID `db:"team_2_id" json:"team_2_id"`

	Score1 *int `db:"score_1" json:"score_1"`
	Score2 *int `db:"score_2" json:"score_2"`

	Status     MatchStatus `db:"status" json:"status"`
	WinnerSlot *int        `db:"winner_slot" json:"winner_slot"`
	IsBye      bool        `db:"is_bye" json:"is_bye"`
	IsDraw     bool        `db:"is_draw" json:"is_draw"`

	// Routing pointers, fixed at build time and never searched for during
	// advancement. A nil pointer means the winner (or loser) goes nowhere.
	WinnerNextMatchID *uuid.UUID `db:"winner_next_match_id" json:"winner_next_match_id"`
	WinnerNextSlot    *int       `db:"winner_next_slot" json:"winner_next_slot"`

	LoserNextMatchID *uuid.UUID `db:"loser_next_match_id" json:"loser_next_match_id"`
	LoserNextSlot    *int       `db:"loser_next_slot" json:"loser_next_slot"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TeamInSlot returns the occupant of slot 1 or 2, nil for an empty slot.
func (m *Match) TeamInSlot(slot int) *uuid.UUID {
	if slot == 1 {
		return m.Team1ID
	}
	return m.Team2ID
}

// SetTeam places a team into a slot and promotes the match to ready once
// both slots hold concrete teams. Decided matches are never reopened.
func (m *Match) SetTeam(slot int, teamID uuid.UUID) {
	id := teamID
	if slot == 1 {
		m.Team1ID = &id
	} else {
		m.Team2ID = &id
	}
	if m.Status == MatchPending && m.Team1ID != nil && m.Team2ID != nil {
		m.Status = MatchReady
	}
}

// HasTeam reports whether the given team occupies either slot.
func (m *Match) HasTeam(teamID uuid.UUID) bool {
	return (m.Team1ID != nil && *m.Team1ID == teamID) ||
		(m.Team2ID != nil && *m.Team2ID == teamID)
}

// WinnerID returns the winning team, nil while undecided or for a draw.
func (m *Match) WinnerID() *uuid.UUID {
	if m.Status != MatchDecided || m.WinnerSlot == nil {
		return nil
	}
	return m.TeamInSlot(*m.WinnerSlot)
}

// LoserID returns the losing team, nil while undecided, for a draw, or for
// a bye with a single occupant.
func (m *Match) LoserID() *uuid.UUID {
	if m.Status != MatchDecided || m.WinnerSlot == nil {
		return nil
	}
	return m.TeamInSlot(3 - *m.WinnerSlot)
}
