package store

import (
	"context"

	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateTournament(ctx context.Context, tx *sqlx.Tx, t *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, format, max_teams, status)
        VALUES (:id, :name, :format, :max_teams, :status)`, t)
	return err
}

func (s *Store) CreateTeams(ctx context.Context, tx *sqlx.Tx, teams []bracket.Team) error {
	if len(teams) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO teams (id, tournament_id, name, seed, state)
            VALUES (:id, :tournament_id, :name, :seed, :state)`, teams)
	return err
}

func (s *Store) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, tournament_id, bracket_side, group_number, round_number, match_order,
            team_1_id, team_2_id, score_1, score_2, status, winner_slot, is_bye, is_draw,
            winner_next_match_id, winner_next_slot, loser_next_match_id, loser_next_slot)
        VALUES (:id, :tournament_id, :bracket_side, :group_number, :round_number, :match_order,
            :team_1_id, :team_2_id, :score_1, :score_2, :status, :winner_slot, :is_bye, :is_draw,
            :winner_next_match_id, :winner_next_slot, :loser_next_match_id, :loser_next_slot)`, matches)
	return err
}

func (s *Store) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	var t bracket.Tournament
	err := s.db.GetContext(ctx, &t, "SELECT * FROM tournaments WHERE id = ?", id)
	return &t, err
}

func (s *Store) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Tournament, error) {
	var t bracket.Tournament
	err := tx.GetContext(ctx, &t, "SELECT * FROM tournaments WHERE id = ?", id)
	return &t, err
}

func (s *Store) GetTeams(ctx context.Context, tournamentID string) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := s.db.SelectContext(ctx, &teams, "SELECT * FROM teams WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return teams, err
}

func (s *Store) GetTeamsTx(ctx context.Context, tx *sqlx.Tx, tournamentID string) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := tx.SelectContext(ctx, &teams, "SELECT * FROM teams WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return teams, err
}

func (s *Store) GetMatches(ctx context.Context, tournamentID string) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, "SELECT * FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, match_order ASC", tournamentID)
	return matches, err
}

func (s *Store) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID string) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := tx.SelectContext(ctx, &matches, "SELECT * FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, match_order ASC", tournamentID)
	return matches, err
}

func (s *Store) GetMatch(ctx context.Context, id string) (*bracket.Match, error) {
	var m bracket.Match
	err := s.db.GetContext(ctx, &m, "SELECT * FROM matches WHERE id = ?", id)
	return &m, err
}

func (s *Store) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Match, error) {
	var m bracket.Match
	err := tx.GetContext(ctx, &m, "SELECT * FROM matches WHERE id = ?", id)
	return &m, err
}

func (s *Store) UpdateMatch(ctx context.Context, tx *sqlx.Tx, m *bracket.Match) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE matches SET
            team_1_id = :team_1_id,
            team_2_id = :team_2_id,
            score_1 = :score_1,
            score_2 = :score_2,
            status = :status,
            winner_slot = :winner_slot,
            is_bye = :is_bye,
            is_draw = :is_draw,
            winner_next_match_id = :winner_next_match_id,
            winner_next_slot = :winner_next_slot,
            loser_next_match_id = :loser_next_match_id,
            loser_next_slot = :loser_next_slot
        WHERE id = :id`, m)
	return err
}

func (s *Store) UpdateTeamStateTx(ctx context.Context, tx *sqlx.Tx, teamID uuid.UUID, state bracket.TeamState) error {
	_, err := tx.ExecContext(ctx, "UPDATE teams SET state = ? WHERE id = ?", state, teamID)
	return err
}

func (s *Store) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id string, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	return err
}
