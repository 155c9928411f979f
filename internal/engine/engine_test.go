package engine

import (
	"fmt"
	"testing"

	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

// makeTeams builds n teams seeded in registration order, named "Team 1"..."Team n".
func makeTeams(tournamentID uuid.UUID, n int) []bracket.Team {
	teams := make([]bracket.Team, 0, n)
	for i := 1; i <= n; i++ {
		teams = append(teams, bracket.Team{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         fmt.Sprintf("Team %d", i),
			Seed:         i,
			State:        bracket.TeamActive,
		})
	}
	return teams
}

func teamNames(n int) []string {
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		names = append(names, fmt.Sprintf("Team %d", i))
	}
	return names
}

// findMatch locates a match by graph position. Fails the test when absent.
func findMatch(t *testing.T, matches []bracket.Match, side bracket.BracketSide, round, order int) *bracket.Match {
	t.Helper()
	for i := range matches {
		m := &matches[i]
		if m.BracketSide == side && m.RoundNumber == round && m.MatchOrder == order {
			return m
		}
	}
	t.Fatalf("no match at side=%s round=%d order=%d", side, round, order)
	return nil
}

// findMatchWithTeams locates an undecided-or-decided match containing both teams.
func findMatchWithTeams(t *testing.T, matches []bracket.Match, a, b uuid.UUID) *bracket.Match {
	t.Helper()
	for i := range matches {
		m := &matches[i]
		if m.HasTeam(a) && m.HasTeam(b) {
			return m
		}
	}
	t.Fatalf("no match pairing %s and %s", a, b)
	return nil
}

func countBySide(matches []bracket.Match, side bracket.BracketSide) int {
	n := 0
	for _, m := range matches {
		if m.BracketSide == side {
			n++
		}
	}
	return n
}

// assertNoStrandedSlots verifies that every empty slot of every undecided
// match still has an undecided feeder pointing at it. At build time byes are
// the only decided matches, so a violation means a team could get stuck
// waiting on a result that will never arrive.
func assertNoStrandedSlots(t *testing.T, matches []bracket.Match) {
	t.Helper()

	type ref struct {
		matchID uuid.UUID
		slot    int
	}
	liveFeeds := make(map[ref]bool)
	for _, m := range matches {
		if m.Status == bracket.MatchDecided {
			continue
		}
		if m.WinnerNextMatchID != nil && m.WinnerNextSlot != nil {
			liveFeeds[ref{*m.WinnerNextMatchID, *m.WinnerNextSlot}] = true
		}
		if m.LoserNextMatchID != nil && m.LoserNextSlot != nil {
			liveFeeds[ref{*m.LoserNextMatchID, *m.LoserNextSlot}] = true
		}
	}

	for _, m := range matches {
		if m.Status == bracket.MatchDecided {
			continue
		}
		if m.Team1ID == nil && !liveFeeds[ref{m.ID, 1}] {
			t.Errorf("match %s (side=%s round=%d order=%d) slot 1 is empty with no live feeder",
				m.ID, m.BracketSide, m.RoundNumber, m.MatchOrder)
		}
		if m.Team2ID == nil && !liveFeeds[ref{m.ID, 2}] {
			t.Errorf("match %s (side=%s round=%d order=%d) slot 2 is empty with no live feeder",
				m.ID, m.BracketSide, m.RoundNumber, m.MatchOrder)
		}
	}
}
