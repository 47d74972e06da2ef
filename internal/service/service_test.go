package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mybglist/mybglist-server/internal/cache"
	"github.com/mybglist/mybglist-server/internal/domain"
	"github.com/mybglist/mybglist-server/internal/ingest"
	"github.com/mybglist/mybglist-server/internal/query"
	"github.com/mybglist/mybglist-server/internal/store/sqlite"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.Open("", time.Minute, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// seedCatalog commits games linked to the named domains.
func seedCatalog(t *testing.T, s *sqlite.Store, games ...domain.BoardGame) {
	t.Helper()
	b := &ingest.Batch{Now: testNow}
	for _, g := range games {
		g.InitTimestamps(testNow)
		b.BoardGames = append(b.BoardGames, g)
	}
	for _, name := range []string{"Strategy Games", "Family Games"} {
		d := domain.Domain{Name: name}
		d.InitTimestamps(testNow)
		b.Domains = append(b.Domains, d)
	}
	if len(games) > 0 {
		b.DomainLinks = append(b.DomainLinks, ingest.Link{BoardGameID: games[0].ID, Target: ingest.StagedAt(0)})
	}
	require.NoError(t, s.CommitBatch(context.Background(), b))
}

// countingStore counts list calls that reach storage.
type countingStore struct {
	*sqlite.Store
	lists int
}

func (c *countingStore) ListBoardGames(ctx context.Context, plan query.Plan) ([]domain.BoardGame, int, error) {
	c.lists++
	return c.Store.ListBoardGames(ctx, plan)
}
