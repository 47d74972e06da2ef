package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mybglist/mybglist-server/internal/cache"
	domainerrors "github.com/mybglist/mybglist-server/internal/errors"
	"github.com/mybglist/mybglist-server/internal/id"
	"github.com/mybglist/mybglist-server/internal/ingest"
	"github.com/mybglist/mybglist-server/internal/query"
)

// SeedStore is the storage a seed run needs.
type SeedStore interface {
	ingest.SnapshotLoader
	ingest.Committer
	CountBoardGames(ctx context.Context) (int, error)
	CountDomains(ctx context.Context) (int, error)
	CountMechanics(ctx context.Context) (int, error)
}

// SeedResult reports a finished run. The three totals are row counts in the
// database after commit, not the number of rows inserted by this run.
type SeedResult struct {
	BoardGames  int
	Domains     int
	Mechanics   int
	SkippedRows int
	RunID       string
	Duration    time.Duration
}

// SeedService imports the board game dataset. Only one run may be in flight.
type SeedService struct {
	store       SeedStore
	cache       *cache.Cache
	logger      *slog.Logger
	datasetPath string
	policy      ingest.LinkPolicy

	open func(path string) (ingest.Source, error)
	now  func() time.Time

	mu sync.Mutex
}

// SeedOption configures a SeedService.
type SeedOption func(*SeedService)

// WithSourceOpener replaces the dataset opener, which defaults to ingest.Open.
func WithSourceOpener(open func(path string) (ingest.Source, error)) SeedOption {
	return func(s *SeedService) { s.open = open }
}

// NewSeedService creates a seed service reading datasetPath.
func NewSeedService(st SeedStore, c *cache.Cache, datasetPath string, policy ingest.LinkPolicy, logger *slog.Logger, opts ...SeedOption) *SeedService {
	s := &SeedService{
		store:       st,
		cache:       c,
		logger:      logger,
		datasetPath: datasetPath,
		policy:      policy,
		open:        ingest.Open,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads the dataset, stages every new row and commits them in one
// transaction. A concurrent call fails with a conflict instead of waiting.
func (s *SeedService) Run(ctx context.Context) (*SeedResult, error) {
	if !s.mu.TryLock() {
		return nil, domainerrors.Conflict("seed already in progress")
	}
	defer s.mu.Unlock()

	started := s.now()
	runID := id.RunID()
	log := s.logger.With("run_id", runID)
	log.Info("seed started", "dataset", s.datasetPath, "link_policy", s.policy.String())

	src, err := s.open(s.datasetPath)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "cannot open dataset")
	}
	defer src.Close()

	snap, err := ingest.LoadSnapshot(ctx, s.store)
	if err != nil {
		return nil, storageError(err)
	}

	rec := ingest.NewReconciler(snap, started, s.policy)
	err = ingest.Drain(ctx, src, rec, func(r ingest.Record, reason ingest.SkipReason) {
		log.Debug("row skipped", "line", r.Line, "reason", string(reason))
	})
	if err != nil {
		return nil, s.runError(err, "cannot read dataset")
	}

	batch := rec.Batch()
	if err := s.store.CommitBatch(ctx, batch); err != nil {
		log.Error("seed rolled back", "error", err)
		return nil, storageError(err)
	}
	if err := s.cache.Invalidate(string(query.EntityBoardGame), string(query.EntityDomain), string(query.EntityMechanic)); err != nil {
		log.Warn("cache invalidation failed", "error", err)
	}

	res := &SeedResult{SkippedRows: batch.Skipped, RunID: runID}
	if res.BoardGames, err = s.store.CountBoardGames(ctx); err != nil {
		return nil, storageError(err)
	}
	if res.Domains, err = s.store.CountDomains(ctx); err != nil {
		return nil, storageError(err)
	}
	if res.Mechanics, err = s.store.CountMechanics(ctx); err != nil {
		return nil, storageError(err)
	}
	res.Duration = s.now().Sub(started)

	log.Info("seed finished",
		"new_board_games", len(batch.BoardGames),
		"new_domains", len(batch.Domains),
		"new_mechanics", len(batch.Mechanics),
		"skipped", batch.Skipped,
		"duration", res.Duration,
	)
	return res, nil
}

func (s *SeedService) runError(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domainerrors.Wrap(fmt.Errorf("%s: %w", s.datasetPath, err), domainerrors.CodeInternal, msg)
}
