package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/mybglist/mybglist-server/internal/errors"
	"github.com/mybglist/mybglist-server/internal/ingest"
	"github.com/mybglist/mybglist-server/internal/query"
	"github.com/mybglist/mybglist-server/internal/store/sqlite"
)

const datasetHeader = "ID;Name;Year Published;Min Players;Max Players;Play Time;Min Age;Users Rated;Rating Average;BGG Rank;Complexity Average;Owned Users;Domains;Mechanics\n"

const dataset = datasetHeader +
	"13;Catan;1995;3;4;120;10;108975;7,1;429;2,32;167733;Strategy Games, Family Games;Dice Rolling, Trading\n" +
	"230802;Azul;2017;2;4;45;8;67369;7,8;66;1,76;101718;Family Games, Abstract Games;Pattern Building\n" +
	";Nameless;;;;;;;;;;;;\n" +
	"13;Catan again;;;;;;;;;;;;\n"

func newSeedService(t *testing.T, st *sqlite.Store, data string) *SeedService {
	t.Helper()
	svc := NewSeedService(st, newTestCache(t), "bgg_dataset.csv", ingest.LinkAlways, discardLogger(),
		WithSourceOpener(func(string) (ingest.Source, error) {
			return ingest.NewCSVSource(strings.NewReader(data))
		}))
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestSeed_Run(t *testing.T) {
	st := newTestStore(t)
	svc := newSeedService(t, st, dataset)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.BoardGames)
	assert.Equal(t, 3, res.Domains)
	assert.Equal(t, 3, res.Mechanics)
	assert.Equal(t, 2, res.SkippedRows)
	assert.NotEmpty(t, res.RunID)

	domains, err := st.BoardGameDomains(context.Background(), 230802)
	require.NoError(t, err)
	require.Len(t, domains, 2)
	assert.Equal(t, "Abstract Games", domains[0].Name)
	assert.Equal(t, "Family Games", domains[1].Name)
}

func TestSeed_SecondRunSkipsEverything(t *testing.T) {
	st := newTestStore(t)
	svc := newSeedService(t, st, dataset)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.BoardGames)
	assert.Equal(t, 3, res.Domains)
	assert.Equal(t, 4, res.SkippedRows)
}

func TestSeed_InvalidatesCachedLists(t *testing.T) {
	st := newTestStore(t)
	svc := newSeedService(t, st, dataset)
	catalog := NewCatalogService(st, svc.cache, discardLogger())
	ctx := context.Background()

	env, err := catalog.ListBoardGames(ctx, gamesPath, query.NewRequest())
	require.NoError(t, err)
	assert.Empty(t, env.Data)

	_, err = svc.Run(ctx)
	require.NoError(t, err)

	env, err = catalog.ListBoardGames(ctx, gamesPath, query.NewRequest())
	require.NoError(t, err)
	assert.Len(t, env.Data, 2)
}

func TestSeed_ConcurrentRunConflicts(t *testing.T) {
	svc := newSeedService(t, newTestStore(t), dataset)

	svc.mu.Lock()
	_, err := svc.Run(context.Background())
	svc.mu.Unlock()

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestSeed_OneRunAtATime(t *testing.T) {
	svc := newSeedService(t, newTestStore(t), dataset)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range 4 {
		wg.Go(func() {
			_, err := svc.Run(context.Background())
			if err != nil && !errors.Is(err, domainerrors.ErrConflict) {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	assert.GreaterOrEqual(t, succeeded, 1)

	n, err := svc.store.CountBoardGames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSeed_CanceledRunPersistsNothing(t *testing.T) {
	st := newTestStore(t)
	svc := newSeedService(t, st, dataset)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	n, err := st.CountBoardGames(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeed_MissingDataset(t *testing.T) {
	svc := newSeedService(t, newTestStore(t), dataset)
	svc.open = ingest.Open
	svc.datasetPath = t.TempDir() + "/absent.csv"

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInternal)
}
