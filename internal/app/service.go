// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/clefscore/clef/internal/adapters/mq/queue"
	workerpool "github.com/clefscore/clef/internal/adapters/mq/worker"
	"github.com/clefscore/clef/internal/adapters/repository"
	"github.com/clefscore/clef/internal/adapters/security"
	"github.com/clefscore/clef/internal/domain/dedupe"
	"github.com/clefscore/clef/internal/domain/model"
	"github.com/clefscore/clef/internal/domain/rating"
	"github.com/clefscore/clef/internal/domain/types"
	"github.com/clefscore/clef/pkg/logger"
	"github.com/clefscore/clef/pkg/metrics"
)

// Store bundles the persistence surface the service needs.
type Store interface {
	repository.UserStore
	repository.RoundStore
}

// Service implements the API dependencies for the rating system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      Store
	board      repository.Board
	deduper    dedupe.Deduper
	jobQueue   jobqueue.Queue
	engine     *rating.Engine
	hasher     security.Hasher
	workerPool *workerpool.Pool

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	bcryptCost    int
	recentRounds  int
	ratingOptions []rating.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of replay workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithRecentRounds sets how many rounds the stats view includes.
func WithRecentRounds(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentRounds = n
		}
	}
}

// WithRatingOptions forwards options to the rating engine.
func WithRatingOptions(opts ...rating.Option) Option {
	return func(s *Service) {
		s.ratingOptions = opts
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    10_000,
		dedupeSize:   50_000,
		recentRounds: 50,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting rating service")

	s.board = repository.NewInMemoryBoard()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
	)
	s.engine = rating.New(s.ratingOptions...)
	s.hasher = security.NewBcryptHasher(s.bcryptCost)

	compute := func(rounds []model.RoundRecord) (float64, int, error) {
		res, err := s.engine.Compute(rounds)
		if err != nil {
			return 0, 0, err
		}
		return res.Final, res.Skipped, nil
	}
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s.store, s.board, compute)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping rating service")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	s.started = false
	s.logger.Info(ctx, "rating service stopped")
}

// SeenAndRecord atomically checks whether a round id was seen and records
// it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a round id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of round ids currently tracked.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Register creates a new user with a hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (model.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return model.User{}, err
	}
	s.logger.Info(ctx, "user registered",
		logger.String("user_id", u.ID),
		logger.String("username", u.Username),
	)
	return u, nil
}

// Authenticate verifies a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	u, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// UserByID looks up a user profile.
func (s *Service) UserByID(ctx context.Context, id string) (model.User, error) {
	return s.store.UserByID(ctx, id)
}

// SubmitRound persists a round for later replay.
func (s *Service) SubmitRound(ctx context.Context, r model.RoundRecord) error {
	return s.store.AppendRound(ctx, r)
}

// Enqueue schedules a rating recompute for a user. Returns false on
// backpressure.
func (s *Service) Enqueue(ctx context.Context, userID string) bool {
	return s.jobQueue.Enqueue(ctx, jobqueue.Job{UserID: userID})
}

// RatingReport replays the user's history and returns the current rating
// with the full series.
func (s *Service) RatingReport(ctx context.Context, userID string) (types.RatingReport, error) {
	history, err := s.store.RoundsByUser(ctx, userID)
	if err != nil {
		return types.RatingReport{}, fmt.Errorf("load history: %w", err)
	}
	res, err := s.engine.Compute(history)
	if err != nil {
		return types.RatingReport{}, fmt.Errorf("replay history: %w", err)
	}
	return types.RatingReport{
		Rating:  int(math.Round(res.Final)),
		History: res.Series,
	}, nil
}

// StatsReport aggregates the user's history and annotates the most recent
// rounds with the rating each one produced.
func (s *Service) StatsReport(ctx context.Context, userID string) (types.StatsReport, error) {
	stats, err := s.store.Stats(ctx, userID)
	if err != nil {
		return types.StatsReport{}, fmt.Errorf("aggregate stats: %w", err)
	}
	history, err := s.store.RoundsByUser(ctx, userID)
	if err != nil {
		return types.StatsReport{}, fmt.Errorf("load history: %w", err)
	}

	// Replay once, keyed by round id, so recent rounds can be annotated
	// regardless of display order.
	points := make(map[string]model.RatingPoint, len(history))
	st := s.engine.NewState()
	for _, r := range history {
		next, pt, ratable, err := s.engine.Step(st, r)
		if err != nil {
			return types.StatsReport{}, fmt.Errorf("replay history: %w", err)
		}
		st = next
		if ratable {
			points[r.ID] = pt
		}
	}

	recent, err := s.store.RecentRounds(ctx, userID, s.recentRounds)
	if err != nil {
		return types.StatsReport{}, fmt.Errorf("load recent rounds: %w", err)
	}
	rows := make([]types.RecentRound, 0, len(recent))
	for _, r := range recent {
		row := types.RecentRound{
			RoundID:    r.ID,
			OccurredAt: r.OccurredAt,
			NetScore:   r.NetScore,
			Difficulty: r.Difficulty,
		}
		if r.QuestionCount > 0 {
			qc := r.QuestionCount
			row.QuestionCount = &qc
		}
		if pt, ok := points[r.ID]; ok {
			row.Rated = true
			ratingAfter, delta := pt.Rating, pt.Delta
			row.Rating = &ratingAfter
			row.Delta = &delta
		}
		rows = append(rows, row)
	}

	return types.StatsReport{Stats: stats, Recent: rows}, nil
}

// TopN returns the best n standings rows.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.board.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	metrics.UpdateBoardSize(s.board.Count(ctx))
	return entries, nil
}

// Rank returns the standings row for one user.
func (s *Service) Rank(ctx context.Context, userID string) (types.Entry, error) {
	return s.board.Rank(ctx, userID)
}
