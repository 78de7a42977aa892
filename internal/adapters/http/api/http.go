// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clefscore/clef/internal/domain/dedupe"
	"github.com/clefscore/clef/internal/domain/model"
	"github.com/clefscore/clef/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Account operations.
	Register(ctx context.Context, username, password string) (model.User, error)
	Authenticate(ctx context.Context, username, password string) (model.User, error)
	UserByID(ctx context.Context, id string) (model.User, error)

	// SubmitRound persists a round for later replay.
	SubmitRound(ctx context.Context, r model.RoundRecord) error

	// Enqueue schedules a rating recompute. Returns false on backpressure.
	Enqueue(ctx context.Context, userID string) bool

	// Read operations.
	RatingReport(ctx context.Context, userID string) (types.RatingReport, error)
	StatsReport(ctx context.Context, userID string) (types.StatsReport, error)
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, userID string) (Entry, error)
}

// TokenIssuer mints and validates bearer tokens.
type TokenIssuer interface {
	Issue(userID string) (token string, expiresIn int64, err error)
	Validate(token string) (userID string, err error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	authHandler        *AuthHandler
	roundsHandler      *RoundsHandler
	ratingHandler      *RatingHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	tokens             TokenIssuer
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, tokens TokenIssuer, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		authHandler:        NewAuthHandler(deps, tokens),
		roundsHandler:      NewRoundsHandler(deps),
		ratingHandler:      NewRatingHandler(deps),
		statsHandler:       NewStatsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
		tokens:             tokens,
	}
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	r.Get("/rank/{user_id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", MetricsMiddleware(s.authHandler.HandleRegister, "register"))
		r.Post("/login", MetricsMiddleware(s.authHandler.HandleLogin, "login"))

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(s.tokens))
			r.Get("/me", MetricsMiddleware(s.authHandler.HandleMe, "me"))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.tokens))
		r.Post("/rounds", MetricsMiddleware(s.roundsHandler.HandlePostRound, "rounds"))
		r.Get("/rating", MetricsMiddleware(s.ratingHandler.HandleGetRating, "rating"))
		r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleGetStats, "stats"))
	})
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	RoundID   string `json:"round_id,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
