package engine

import (
	"context"
	"testing"

	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/HossamAbdelnaby/bracket-engine/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDoubleEliminationFourTeams(t *testing.T) {
	tournamentID := uuid.New()
	tournament := &bracket.Tournament{ID: tournamentID, Format: bracket.DoubleElimination, MaxTeams: 8}
	teams := makeTeams(tournamentID, 4)

	matches, err := BuildMatches(tournament, teams)
	require.NoError(t, err)
	require.Len(t, matches, 6)
	assert.Equal(t, 3, countBySide(matches, bracket.WinnersSide))
	assert.Equal(t, 2, countBySide(matches, bracket.LosersSide))
	assert.Equal(t, 1, countBySide(matches, bracket.FinalsSide))

	wb1 := findMatch(t, matches, bracket.WinnersSide, 1, 1)
	wb2 := findMatch(t, matches, bracket.WinnersSide, 1, 2)
	wbFinal := findMatch(t, matches, bracket.WinnersSide, 2, 1)
	lb1 := findMatch(t, matches, bracket.LosersSide, 1, 1)
	lbFinal := findMatch(t, matches, bracket.LosersSide, 2, 1)
	grandFinal := findMatch(t, matches, bracket.FinalsSide, 1, 1)

	// Round 1 losers pair up in the losers bracket.
	require.NotNil(t, wb1.LoserNextMatchID)
	assert.Equal(t, lb1.ID, *wb1.LoserNextMatchID)
	assert.Equal(t, 1, *wb1.LoserNextSlot)
	require.NotNil(t, wb2.LoserNextMatchID)
	assert.Equal(t, lb1.ID, *wb2.LoserNextMatchID)
	assert.Equal(t, 2, *wb2.LoserNextSlot)

	// The winners final loser drops into the losers final, against the
	// survivor of the early losers round.
	require.NotNil(t, wbFinal.LoserNextMatchID)
	assert.Equal(t, lbFinal.ID, *wbFinal.LoserNextMatchID)
	assert.Equal(t, 2, *wbFinal.LoserNextSlot)
	require.NotNil(t, lb1.WinnerNextMatchID)
	assert.Equal(t, lbFinal.ID, *lb1.WinnerNextMatchID)
	assert.Equal(t, 1, *lb1.WinnerNextSlot)

	// Both bracket champions converge on the grand final.
	require.NotNil(t, wbFinal.WinnerNextMatchID)
	assert.Equal(t, grandFinal.ID, *wbFinal.WinnerNextMatchID)
	assert.Equal(t, 1, *wbFinal.WinnerNextSlot)
	require.NotNil(t, lbFinal.WinnerNextMatchID)
	assert.Equal(t, grandFinal.ID, *lbFinal.WinnerNextMatchID)
	assert.Equal(t, 2, *lbFinal.WinnerNextSlot)

	// Losers bracket losers and the grand final loser go nowhere.
	assert.Nil(t, lb1.LoserNextMatchID)
	assert.Nil(t, lbFinal.LoserNextMatchID)
	assert.Nil(t, grandFinal.LoserNextMatchID)
	assert.Nil(t, grandFinal.WinnerNextMatchID)

	assertNoStrandedSlots(t, matches)
}

func TestBuildDoubleEliminationEightTeams(t *testing.T) {
	tournamentID := uuid.New()
	tournament := &bracket.Tournament{ID: tournamentID, Format: bracket.DoubleElimination, MaxTeams: 8}
	teams := makeTeams(tournamentID, 8)

	matches, err := BuildMatches(tournament, teams)
	require.NoError(t, err)

	// 7 winners matches, 6 losers matches over 4 rounds, 1 grand final.
	require.Len(t, matches, 14)
	assert.Equal(t, 7, countBySide(matches, bracket.WinnersSide))
	assert.Equal(t, 6, countBySide(matches, bracket.LosersSide))
	assert.Equal(t, 1, countBySide(matches, bracket.FinalsSide))

	// Every winners-side match routes its loser somewhere; losers matches
	// never do.
	for _, m := range matches {
		switch m.BracketSide {
		case bracket.WinnersSide:
			assert.NotNil(t, m.LoserNextMatchID, "winners round %d match %d must drop its loser", m.RoundNumber, m.MatchOrder)
		case bracket.LosersSide, bracket.FinalsSide:
			assert.Nil(t, m.LoserNextMatchID)
		}
	}

	// Semifinal losers drop into the stage-1 intake round, slot 2.
	lbIntake1 := findMatch(t, matches, bracket.LosersSide, 2, 1)
	lbIntake2 := findMatch(t, matches, bracket.LosersSide, 2, 2)
	semi1 := findMatch(t, matches, bracket.WinnersSide, 2, 1)
	semi2 := findMatch(t, matches, bracket.WinnersSide, 2, 2)
	assert.Equal(t, lbIntake1.ID, *semi1.LoserNextMatchID)
	assert.Equal(t, 2, *semi1.LoserNextSlot)
	assert.Equal(t, lbIntake2.ID, *semi2.LoserNextMatchID)
	assert.Equal(t, 2, *semi2.LoserNextSlot)

	assertNoStrandedSlots(t, matches)
}

func TestBuildDoubleEliminationTwoTeams(t *testing.T) {
	tournamentID := uuid.New()
	tournament := &bracket.Tournament{ID: tournamentID, Format: bracket.DoubleElimination, MaxTeams: 8}
	teams := makeTeams(tournamentID, 2)

	matches, err := BuildMatches(tournament, teams)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	wbFinal := findMatch(t, matches, bracket.WinnersSide, 1, 1)
	lb := findMatch(t, matches, bracket.LosersSide, 1, 1)
	grandFinal := findMatch(t, matches, bracket.FinalsSide, 1, 1)

	assert.Equal(t, bracket.MatchReady, wbFinal.Status)

	// The opponentless losers round collapses into an empty bye and the
	// final's loser is routed straight into a grand-final rematch.
	assert.True(t, lb.IsBye)
	assert.Equal(t, bracket.MatchDecided, lb.Status)
	assert.Nil(t, lb.Team1ID)
	assert.Nil(t, lb.Team2ID)
	assert.Nil(t, lb.WinnerID())

	require.NotNil(t, wbFinal.LoserNextMatchID)
	assert.Equal(t, grandFinal.ID, *wbFinal.LoserNextMatchID)
	assert.Equal(t, 2, *wbFinal.LoserNextSlot)

	assertNoStrandedSlots(t, matches)
}

func TestDoubleEliminationTwoTeamRematch(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	st := store.New(db)
	tournamentService := NewTournamentService(db, st)
	matchService := NewMatchService(db, st, nil)
	ctx := context.Background()

	data, err := tournamentService.CreateTournament(ctx, "Best Of Rivals", bracket.DoubleElimination, 8, teamNames(2))
	require.NoError(t, err)
	require.Len(t, data.Matches, 3)

	teams := data.Teams
	tournamentID := data.Tournament.ID
	wbFinal := findMatch(t, data.Matches, bracket.WinnersSide, 1, 1)
	grandFinal := findMatch(t, data.Matches, bracket.FinalsSide, 1, 1)

	// One report seats both teams in the grand final: the winner through
	// the winners pointer, the loser through its rematch routing.
	outcome, err := matchService.ReportResult(ctx, tournamentID, wbFinal.ID, ResultInput{
		Score1: 2, Score2: 1, WinnerID: &teams[0].ID,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.AdvancedTo)
	assert.Equal(t, grandFinal.ID, *outcome.AdvancedTo)
	require.NotNil(t, outcome.DroppedTo)
	assert.Equal(t, grandFinal.ID, *outcome.DroppedTo)
	assert.False(t, outcome.TournamentCompleted)

	updatedGF, err := st.GetMatch(ctx, grandFinal.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchReady, updatedGF.Status)
	require.NotNil(t, updatedGF.Team1ID)
	require.NotNil(t, updatedGF.Team2ID)
	assert.Equal(t, teams[0].ID, *updatedGF.Team1ID)
	assert.Equal(t, teams[1].ID, *updatedGF.Team2ID)

	outcome, err = matchService.ReportResult(ctx, tournamentID, grandFinal.ID, ResultInput{
		Score1: 3, Score2: 0, WinnerID: &teams[1].ID,
	})
	require.NoError(t, err)
	assert.True(t, outcome.TournamentCompleted)
}

func TestBuildDoubleEliminationFiveTeamsByes(t *testing.T) {
	tournamentID := uuid.New()
	tournament := &bracket.Tournament{ID: tournamentID, Format: bracket.DoubleElimination, MaxTeams: 8}
	teams := makeTeams(tournamentID, 5)

	matches, err := BuildMatches(tournament, teams)
	require.NoError(t, err)

	// Team 5 sits out round 1 and is already seated in the winners semifinal.
	wb3 := findMatch(t, matches, bracket.WinnersSide, 1, 3)
	assert.True(t, wb3.IsBye)
	require.NotNil(t, wb3.WinnerID())
	assert.Equal(t, teams[4].ID, *wb3.WinnerID())

	// The semifinal fed only by that bye cascades into a bye as well.
	semi2 := findMatch(t, matches, bracket.WinnersSide, 2, 2)
	assert.Equal(t, bracket.MatchDecided, semi2.Status)
	assert.True(t, semi2.IsBye)
	assert.True(t, semi2.HasTeam(teams[4].ID))

	// Byes feed no losers: the losers-side slots downstream of empty round-1
	// matches must themselves resolve as byes rather than wait forever.
	assertNoStrandedSlots(t, matches)
}

func TestDoubleEliminationFullRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	st := store.New(db)
	tournamentService := NewTournamentService(db, st)
	matchService := NewMatchService(db, st, nil)
	ctx := context.Background()

	data, err := tournamentService.CreateTournament(ctx, "Redemption Arc", bracket.DoubleElimination, 8, teamNames(4))
	require.NoError(t, err)
	require.Len(t, data.Matches, 6)

	teams := data.Teams
	tournamentID := data.Tournament.ID
	wb1 := findMatch(t, data.Matches, bracket.WinnersSide, 1, 1)
	wb2 := findMatch(t, data.Matches, bracket.WinnersSide, 1, 2)
	wbFinal := findMatch(t, data.Matches, bracket.WinnersSide, 2, 1)
	lb1 := findMatch(t, data.Matches, bracket.LosersSide, 1, 1)
	lbFinal := findMatch(t, data.Matches, bracket.LosersSide, 2, 1)
	grandFinal := findMatch(t, data.Matches, bracket.FinalsSide, 1, 1)

	teamState := func(teamID uuid.UUID) bracket.TeamState {
		t.Helper()
		stored, err := st.GetTeams(ctx, tournamentID.String())
		require.NoError(t, err)
		for _, team := range stored {
			if team.ID == teamID {
				return team.State
			}
		}
		t.Fatalf("team %s not found", teamID)
		return ""
	}

	// Team 1 beats Team 2; the loser drops, it is not eliminated yet.
	outcome, err := matchService.ReportResult(ctx, tournamentID, wb1.ID, ResultInput{Score1: 2, Score2: 1, WinnerID: &teams[0].ID})
	require.NoError(t, err)
	require.NotNil(t, outcome.DroppedTo)
	assert.Equal(t, lb1.ID, *outcome.DroppedTo)
	assert.Equal(t, bracket.TeamLosersEntrant, teamState(teams[1].ID))

	// Team 3 beats Team 4.
	_, err = matchService.ReportResult(ctx, tournamentID, wb2.ID, ResultInput{Score1: 3, Score2: 0, WinnerID: &teams[2].ID})
	require.NoError(t, err)

	updatedLB1, err := st.GetMatch(ctx, lb1.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchReady, updatedLB1.Status)
	assert.True(t, updatedLB1.HasTeam(teams[1].ID))
	assert.True(t, updatedLB1.HasTeam(teams[3].ID))

	// Winners final: Team 1 beats Team 3. Team 3 gets its second chance.
	outcome, err = matchService.ReportResult(ctx, tournamentID, wbFinal.ID, ResultInput{Score1: 1, Score2: 0, WinnerID: &teams[0].ID})
	require.NoError(t, err)
	require.NotNil(t, outcome.AdvancedTo)
	assert.Equal(t, grandFinal.ID, *outcome.AdvancedTo)
	require.NotNil(t, outcome.DroppedTo)
	assert.Equal(t, lbFinal.ID, *outcome.DroppedTo)
	assert.Equal(t, bracket.TeamLosersEntrant, teamState(teams[2].ID))

	// Losers round: Team 2 beats Team 4. A second loss eliminates Team 4.
	_, err = matchService.ReportResult(ctx, tournamentID, lb1.ID, ResultInput{Score1: 2, Score2: 0, WinnerID: &teams[1].ID})
	require.NoError(t, err)
	assert.Equal(t, bracket.TeamEliminated, teamState(teams[3].ID))

	// Losers final: Team 3 beats Team 2 and earns the grand final.
	_, err = matchService.ReportResult(ctx, tournamentID, lbFinal.ID, ResultInput{Score1: 2, Score2: 1, WinnerID: &teams[2].ID})
	require.NoError(t, err)
	assert.Equal(t, bracket.TeamEliminated, teamState(teams[1].ID))

	updatedGF, err := st.GetMatch(ctx, grandFinal.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchReady, updatedGF.Status)
	assert.True(t, updatedGF.HasTeam(teams[0].ID))
	assert.True(t, updatedGF.HasTeam(teams[2].ID))

	// Grand final decides the tournament.
	outcome, err = matchService.ReportResult(ctx, tournamentID, grandFinal.ID, ResultInput{Score1: 3, Score2: 2, WinnerID: &teams[0].ID})
	require.NoError(t, err)
	assert.True(t, outcome.TournamentCompleted)

	tournament, err := st.GetTournament(ctx, tournamentID.String())
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, tournament.Status)
}
