package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/HossamAbdelnaby/bracket-engine/internal/store"
	"github.com/HossamAbdelnaby/bracket-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	db    *sqlx.DB
	store *store.Store
}

func NewTournamentService(db *sqlx.DB, st *store.Store) *TournamentService {
	return &TournamentService{db: db, store: st}
}

type TournamentData struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Teams      []bracket.Team      `json:"teams"`
	Matches    []bracket.Match     `json:"matches"`
}

// CreateTournament registers the team list in input order, builds the
// match graph for the format and persists everything in one transaction.
// The tournament starts in progress; byes are already resolved.
func (s *TournamentService) CreateTournament(ctx context.Context, name string, format bracket.Format, maxTeams int, teamNames []string) (*TournamentData, error) {
	tournament := &bracket.Tournament{
		ID:       uuid.New(),
		Name:     name,
		Format:   format,
		MaxTeams: maxTeams,
		Status:   bracket.TournamentInProgress,
	}

	var teams []bracket.Team
	seed := 0
	for _, raw := range teamNames {
		trimmed := utils.StringOrNil(raw)
		if trimmed == nil {
			continue
		}
		seed++
		teams = append(teams, bracket.Team{
			ID:           uuid.New(),
			TournamentID: tournament.ID,
			Name:         *trimmed,
			Seed:         seed,
			State:        bracket.TeamActive,
		})
	}

	matches, err := BuildMatches(tournament, teams)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := s.store.CreateTeams(ctx, tx, teams); err != nil {
		return nil, fmt.Errorf("failed to create teams: %w", err)
	}
	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &TournamentData{Tournament: tournament, Teams: teams, Matches: matches}, nil
}

// GetTournamentData loads a consistent read-only snapshot, fetching teams
// and matches in parallel.
func (s *TournamentService) GetTournamentData(ctx context.Context, id string) (*TournamentData, error) {
	data := &TournamentData{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tournament, err := s.store.GetTournament(gCtx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to get tournament: %w", err)
		}
		data.Tournament = tournament
		return nil
	})

	g.Go(func() error {
		teams, err := s.store.GetTeams(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get teams: %w", err)
		}
		data.Teams = teams
		return nil
	})

	g.Go(func() error {
		matches, err := s.store.GetMatches(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get matches: %w", err)
		}
		data.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// GetStandings computes the current ranking from the decided match set.
func (s *TournamentService) GetStandings(ctx context.Context, id string) ([]bracket.Standing, error) {
	data, err := s.GetTournamentData(ctx, id)
	if err != nil {
		return nil, err
	}
	return ComputeStandings(data.Tournament.Format, data.Teams, data.Matches), nil
}
