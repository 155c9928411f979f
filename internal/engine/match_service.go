package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/HossamAbdelnaby/bracket-engine/internal/store"
	"github.com/HossamAbdelnaby/bracket-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MatchService applies match results to a tournament's graph. All mutation
// for one tournament is serialized: a per-tournament mutex wraps the whole
// read-validate-mutate-route transaction, so two results that target the
// same downstream match can never interleave.
type MatchService struct {
	db       *sqlx.DB
	store    *store.Store
	notifier Notifier
	locks    sync.Map // tournament id -> *sync.Mutex
}

func NewMatchService(db *sqlx.DB, st *store.Store, notifier Notifier) *MatchService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &MatchService{db: db, store: st, notifier: notifier}
}

type ResultInput struct {
	Score1   int
	Score2   int
	WinnerID *uuid.UUID
}

type ResultOutcome struct {
	Match               *bracket.Match  `json:"match"`
	TournamentCompleted bool            `json:"tournament_completed"`
	AdvancedTo          *uuid.UUID      `json:"advanced_to"`
	DroppedTo           *uuid.UUID      `json:"dropped_to"`
	NewMatches          []bracket.Match `json:"new_matches,omitempty"`
}

func (s *MatchService) lock(tournamentID uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(tournamentID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ReportResult records a match result and routes the winner and loser
// through the graph. The declared winner is authoritative; scores are
// informational only. Either the whole report applies or none of it does.
func (s *MatchService) ReportResult(ctx context.Context, tournamentID, matchID uuid.UUID, in ResultInput) (*ResultOutcome, error) {
	unlock := s.lock(tournamentID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament.Status == bracket.TournamentCompleted {
		return nil, ErrTournamentFinished
	}

	match, err := s.store.GetMatchTx(ctx, tx, matchID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match.TournamentID != tournamentID {
		return nil, ErrMatchNotFound
	}

	if match.Status == bracket.MatchDecided {
		return nil, ErrMatchAlreadyDecided
	}
	if match.Status != bracket.MatchReady {
		return nil, ErrMatchNotReady
	}
	if in.Score1 < 0 || in.Score2 < 0 {
		return nil, ErrInvalidScore
	}

	if in.WinnerID != nil {
		switch {
		case match.Team1ID != nil && *match.Team1ID == *in.WinnerID:
			match.WinnerSlot = utils.Ptr(1)
		case match.Team2ID != nil && *match.Team2ID == *in.WinnerID:
			match.WinnerSlot = utils.Ptr(2)
		default:
			return nil, ErrWinnerNotInMatch
		}
	} else {
		// Draws exist only where nothing depends on a winner moving on.
		if match.WinnerNextMatchID != nil || match.LoserNextMatchID != nil ||
			(tournament.Format != bracket.GroupStage && tournament.Format != bracket.Leaderboard) {
			return nil, ErrWinnerRequired
		}
		match.IsDraw = true
	}

	match.Score1 = utils.Ptr(in.Score1)
	match.Score2 = utils.Ptr(in.Score2)
	match.Status = bracket.MatchDecided

	if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	outcome := &ResultOutcome{Match: match}

	if winnerID := match.WinnerID(); winnerID != nil && match.WinnerNextMatchID != nil && match.WinnerNextSlot != nil {
		next, err := s.routeTeam(ctx, tx, *match.WinnerNextMatchID, *match.WinnerNextSlot, *winnerID)
		if err != nil {
			return nil, err
		}
		outcome.AdvancedTo = &next.ID
	}

	if loserID := match.LoserID(); loserID != nil {
		switch {
		case match.LoserNextMatchID != nil && match.LoserNextSlot != nil:
			next, err := s.routeTeam(ctx, tx, *match.LoserNextMatchID, *match.LoserNextSlot, *loserID)
			if err != nil {
				return nil, err
			}
			outcome.DroppedTo = &next.ID
			if err := s.store.UpdateTeamStateTx(ctx, tx, *loserID, bracket.TeamLosersEntrant); err != nil {
				return nil, fmt.Errorf("failed to mark losers entrant: %w", err)
			}
		case match.BracketSide == bracket.WinnersSide || match.BracketSide == bracket.LosersSide:
			// Second loss in double elimination, or the only loss in
			// single elimination: out of the tournament.
			if err := s.store.UpdateTeamStateTx(ctx, tx, *loserID, bracket.TeamEliminated); err != nil {
				return nil, fmt.Errorf("failed to mark eliminated: %w", err)
			}
		}
	}

	if tournament.Format == bracket.Swiss {
		generated, err := s.maybeGenerateSwissRound(ctx, tx, tournament)
		if err != nil {
			return nil, err
		}
		outcome.NewMatches = generated
	}

	completed, err := s.checkCompletion(ctx, tx, tournament)
	if err != nil {
		return nil, err
	}
	outcome.TournamentCompleted = completed

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.notifier.MatchUpdated(tournamentID, matchID)
	if completed || outcome.AdvancedTo != nil || outcome.DroppedTo != nil || len(outcome.NewMatches) > 0 {
		s.notifier.BracketUpdated(tournamentID)
	}

	return outcome, nil
}

// routeTeam places a team into a fixed downstream slot. A missing target or
// an occupied slot is a broken graph and aborts the whole report.
func (s *MatchService) routeTeam(ctx context.Context, tx *sqlx.Tx, targetID uuid.UUID, slot int, teamID uuid.UUID) (*bracket.Match, error) {
	next, err := s.store.GetMatchTx(ctx, tx, targetID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: match %s", ErrBrokenBracket, targetID)
		}
		return nil, fmt.Errorf("failed to get next match: %w", err)
	}

	if occupant := next.TeamInSlot(slot); occupant != nil && *occupant != teamID {
		return nil, fmt.Errorf("%w: slot %d of match %s already taken", ErrBrokenBracket, slot, targetID)
	}
	if other := next.TeamInSlot(3 - slot); other != nil && *other == teamID {
		return nil, fmt.Errorf("%w: match %s", ErrSameTeam, targetID)
	}

	next.SetTeam(slot, teamID)
	if err := s.store.UpdateMatch(ctx, tx, next); err != nil {
		return nil, fmt.Errorf("failed to update next match: %w", err)
	}
	return next, nil
}

// maybeGenerateSwissRound creates the next round's pairings once every
// match of the current round is decided and rounds remain to play.
func (s *MatchService) maybeGenerateSwissRound(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) ([]bracket.Match, error) {
	matches, err := s.store.GetMatchesTx(ctx, tx, tournament.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	currentRound := 0
	for _, m := range matches {
		if m.Status != bracket.MatchDecided {
			return nil, nil
		}
		if m.RoundNumber > currentRound {
			currentRound = m.RoundNumber
		}
	}

	teams, err := s.store.GetTeamsTx(ctx, tx, tournament.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if currentRound >= swissTotalRounds(len(teams)) {
		return nil, nil
	}

	next := swissNextRound(tournament.ID, teams, matches, currentRound+1)
	if err := s.store.CreateMatches(ctx, tx, next); err != nil {
		return nil, fmt.Errorf("failed to create round %d: %w", currentRound+1, err)
	}
	return next, nil
}

// checkCompletion flips the tournament to completed once every match is
// decided or a bye. Leaderboard tournaments accumulate ad hoc results and
// are closed administratively, never by the engine.
func (s *MatchService) checkCompletion(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) (bool, error) {
	if tournament.Format == bracket.Leaderboard {
		return false, nil
	}

	matches, err := s.store.GetMatchesTx(ctx, tx, tournament.ID.String())
	if err != nil {
		return false, fmt.Errorf("failed to list matches: %w", err)
	}
	for _, m := range matches {
		if m.Status != bracket.MatchDecided {
			return false, nil
		}
	}

	if err := s.store.UpdateTournamentStatusTx(ctx, tx, tournament.ID.String(), bracket.TournamentCompleted); err != nil {
		return false, fmt.Errorf("failed to update tournament status: %w", err)
	}
	return true, nil
}

// ReportLeaderboardResult appends an ad hoc, already-decided match between
// two registered teams, so leaderboard standings stay derivable from the
// match set alone.
func (s *MatchService) ReportLeaderboardResult(ctx context.Context, tournamentID uuid.UUID, in LeaderboardResultInput) (*bracket.Match, error) {
	unlock := s.lock(tournamentID)
	defer unlock()

	if in.Score1 < 0 || in.Score2 < 0 {
		return nil, ErrInvalidScore
	}
	if in.Team1ID == in.Team2ID {
		return nil, ErrSameTeam
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament.Format != bracket.Leaderboard {
		return nil, fmt.Errorf("%w: ad hoc results are leaderboard-only", ErrUnsupportedFormat)
	}
	if tournament.Status == bracket.TournamentCompleted {
		return nil, ErrTournamentFinished
	}

	teams, err := s.store.GetTeamsTx(ctx, tx, tournamentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	registered := make(map[uuid.UUID]bool, len(teams))
	for _, t := range teams {
		registered[t.ID] = true
	}
	if !registered[in.Team1ID] || !registered[in.Team2ID] {
		return nil, ErrTeamNotFound
	}

	matches, err := s.store.GetMatchesTx(ctx, tx, tournamentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	m := newMatch(tournamentID, bracket.NoSide, 1, len(matches)+1)
	m.SetTeam(1, in.Team1ID)
	m.SetTeam(2, in.Team2ID)
	m.Score1 = utils.Ptr(in.Score1)
	m.Score2 = utils.Ptr(in.Score2)
	if in.WinnerID != nil {
		switch *in.WinnerID {
		case in.Team1ID:
			m.WinnerSlot = utils.Ptr(1)
		case in.Team2ID:
			m.WinnerSlot = utils.Ptr(2)
		default:
			return nil, ErrWinnerNotInMatch
		}
	} else {
		m.IsDraw = true
	}
	m.Status = bracket.MatchDecided

	if err := s.store.CreateMatches(ctx, tx, []bracket.Match{*m}); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.notifier.MatchUpdated(tournamentID, m.ID)
	return m, nil
}

type LeaderboardResultInput struct {
	Team1ID  uuid.UUID
	Team2ID  uuid.UUID
	Score1   int
	Score2   int
	WinnerID *uuid.UUID
}
