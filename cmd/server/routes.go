package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HossamAbdelnaby/bracket-engine/internal/bracket"
	"github.com/HossamAbdelnaby/bracket-engine/internal/engine"
	"github.com/HossamAbdelnaby/bracket-engine/internal/httputil"
	"github.com/HossamAbdelnaby/bracket-engine/internal/live"
	"github.com/HossamAbdelnaby/bracket-engine/internal/store"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type createTournamentRequest struct {
	Name     string   `json:"name"`
	Format   string   `json:"format"`
	MaxTeams int      `json:"max_teams"`
	Teams    []string `json:"teams"`
}

type resultRequest struct {
	Score1   int        `json:"score1"`
	Score2   int        `json:"score2"`
	WinnerID *uuid.UUID `json:"winner_id"`
}

type leaderboardResultRequest struct {
	Team1ID  uuid.UUID  `json:"team1_id"`
	Team2ID  uuid.UUID  `json:"team2_id"`
	Score1   int        `json:"score1"`
	Score2   int        `json:"score2"`
	WinnerID *uuid.UUID `json:"winner_id"`
}

func newRouter(database *sqlx.DB, hub *live.Hub) http.Handler {
	st := store.New(database)
	tournaments := engine.NewTournamentService(database, st)
	matches := engine.NewMatchService(database, st, hub)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		var req createTournamentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}
		if req.Name == "" {
			httputil.BadRequest(w, "Tournament name is required", nil)
			return
		}
		format, ok := bracket.ParseFormat(req.Format)
		if !ok {
			httputil.BadRequest(w, "Unknown bracket format", nil)
			return
		}

		data, err := tournaments.CreateTournament(r.Context(), req.Name, format, req.MaxTeams, req.Teams)
		if err != nil {
			respondEngineError(w, "Failed to create tournament", err)
			return
		}
		httputil.JSON(w, http.StatusCreated, data)
	})

	r.Get("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
		data, err := tournaments.GetTournamentData(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondEngineError(w, "Failed to get tournament", err)
			return
		}
		httputil.JSON(w, http.StatusOK, data)
	})

	r.Get("/tournaments/{id}/bracket", func(w http.ResponseWriter, r *http.Request) {
		data, err := tournaments.GetTournamentData(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondEngineError(w, "Failed to get tournament", err)
			return
		}
		httputil.JSON(w, http.StatusOK, bracket.BuildGraphView(data.Teams, data.Matches))
	})

	r.Get("/tournaments/{id}/standings", func(w http.ResponseWriter, r *http.Request) {
		standings, err := tournaments.GetStandings(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondEngineError(w, "Failed to get standings", err)
			return
		}
		httputil.JSON(w, http.StatusOK, standings)
	})

	r.Put("/tournaments/{id}/matches/{matchID}/result", func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.BadRequest(w, "Invalid tournament ID", err)
			return
		}
		matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
		if err != nil {
			httputil.BadRequest(w, "Invalid match ID", err)
			return
		}
		var req resultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}

		outcome, err := matches.ReportResult(r.Context(), tournamentID, matchID, engine.ResultInput{
			Score1:   req.Score1,
			Score2:   req.Score2,
			WinnerID: req.WinnerID,
		})
		if err != nil {
			respondEngineError(w, "Failed to report result", err)
			return
		}
		httputil.JSON(w, http.StatusOK, outcome)
	})

	r.Post("/tournaments/{id}/results", func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.BadRequest(w, "Invalid tournament ID", err)
			return
		}
		var req leaderboardResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}

		match, err := matches.ReportLeaderboardResult(r.Context(), tournamentID, engine.LeaderboardResultInput{
			Team1ID:  req.Team1ID,
			Team2ID:  req.Team2ID,
			Score1:   req.Score1,
			Score2:   req.Score2,
			WinnerID: req.WinnerID,
		})
		if err != nil {
			respondEngineError(w, "Failed to report result", err)
			return
		}
		httputil.JSON(w, http.StatusCreated, match)
	})

	r.Get("/ws/tournaments/{tournamentID}", hub.ServeWs)

	return r
}

// respondEngineError maps engine sentinels onto the API's error contract:
// 400 for validation, 404 for missing resources, 409 for state conflicts
// and 500 for everything unexpected.
func respondEngineError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, engine.ErrTournamentNotFound),
		errors.Is(err, engine.ErrMatchNotFound),
		errors.Is(err, engine.ErrTeamNotFound):
		httputil.NotFound(w, err.Error(), err)
	case errors.Is(err, engine.ErrInsufficientTeams),
		errors.Is(err, engine.ErrTooManyTeams),
		errors.Is(err, engine.ErrInvalidScore),
		errors.Is(err, engine.ErrWinnerRequired),
		errors.Is(err, engine.ErrWinnerNotInMatch),
		errors.Is(err, engine.ErrMatchNotReady),
		errors.Is(err, engine.ErrSameTeam),
		errors.Is(err, engine.ErrUnsupportedFormat):
		httputil.BadRequest(w, err.Error(), err)
	case errors.Is(err, engine.ErrMatchAlreadyDecided),
		errors.Is(err, engine.ErrTournamentFinished),
		errors.Is(err, engine.ErrBrokenBracket):
		httputil.Conflict(w, err.Error(), err)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}
