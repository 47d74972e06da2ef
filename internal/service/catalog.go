package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mybglist/mybglist-server/internal/cache"
	"github.com/mybglist/mybglist-server/internal/domain"
	"github.com/mybglist/mybglist-server/internal/query"
	"github.com/mybglist/mybglist-server/internal/store"
)

// CatalogService serves the board game, domain and mechanic endpoints.
// List results are cached per request; every write drops the cached pages of
// the entity it touched.
type CatalogService struct {
	store  store.CatalogStore
	cache  *cache.Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewCatalogService creates a catalog service. c may be nil to disable caching.
func NewCatalogService(st store.CatalogStore, c *cache.Cache, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  st,
		cache:  c,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// list validates req before anything touches storage, then serves the page
// from the cache or the store.
func list[T any](
	ctx context.Context,
	s *CatalogService,
	entity query.Entity,
	basePath string,
	req query.Request,
	load func(context.Context, query.Plan) ([]T, int, error),
) (query.Envelope[[]T], error) {
	plan, err := query.Validate(entity, req)
	if err != nil {
		return query.Envelope[[]T]{}, err
	}

	key := cache.Key(string(entity), query.SelfHref(basePath, plan.Request))
	return cache.Fetch(s.cache, key, func() (query.Envelope[[]T], error) {
		rows, total, err := load(ctx, plan)
		if err != nil {
			return query.Envelope[[]T]{}, storageError(err)
		}
		return query.NewPage(rows, plan, total, basePath), nil
	})
}

// ListBoardGames returns one validated page of board games.
func (s *CatalogService) ListBoardGames(ctx context.Context, basePath string, req query.Request) (query.Envelope[[]domain.BoardGame], error) {
	return list(ctx, s, query.EntityBoardGame, basePath, req, s.store.ListBoardGames)
}

// ListDomains returns one validated page of domains.
func (s *CatalogService) ListDomains(ctx context.Context, basePath string, req query.Request) (query.Envelope[[]domain.Domain], error) {
	return list(ctx, s, query.EntityDomain, basePath, req, s.store.ListDomains)
}

// ListMechanics returns one validated page of mechanics.
func (s *CatalogService) ListMechanics(ctx context.Context, basePath string, req query.Request) (query.Envelope[[]domain.Mechanic], error) {
	return list(ctx, s, query.EntityMechanic, basePath, req, s.store.ListMechanics)
}

// UpdateBoardGame applies u to the board game with u.ID. It returns nil and no
// error when no such board game exists.
func (s *CatalogService) UpdateBoardGame(ctx context.Context, u domain.BoardGameUpdate) (*domain.BoardGame, error) {
	g, err := s.store.GetBoardGame(ctx, u.ID)
	if err != nil {
		return nil, s.absentOrError(err)
	}
	u.Apply(g)
	g.Touch(s.now())
	if err := s.store.UpdateBoardGame(ctx, g); err != nil {
		return nil, s.absentOrError(err)
	}
	s.invalidate(query.EntityBoardGame)
	return g, nil
}

// DeleteBoardGame removes the board game and its links, returning the removed
// row, or nil when it did not exist.
func (s *CatalogService) DeleteBoardGame(ctx context.Context, id int) (*domain.BoardGame, error) {
	g, err := s.store.GetBoardGame(ctx, id)
	if err != nil {
		return nil, s.absentOrError(err)
	}
	if err := s.store.DeleteBoardGame(ctx, id); err != nil {
		return nil, s.absentOrError(err)
	}
	s.invalidate(query.EntityBoardGame)
	return g, nil
}

// UpdateDomain renames the domain with u.ID when u.Name is set. A name held by
// another domain is a conflict.
func (s *CatalogService) UpdateDomain(ctx context.Context, u domain.TaxonomyUpdate) (*domain.Domain, error) {
	d, err := s.store.GetDomain(ctx, u.ID)
	if err != nil {
		return nil, s.absentOrError(err)
	}
	if u.Name != "" {
		d.Name = u.Name
	}
	d.Touch(s.now())
	if err := s.store.UpdateDomain(ctx, d); err != nil {
		return nil, s.absentOrError(err)
	}
	s.invalidate(query.EntityDomain)
	return d, nil
}

// DeleteDomain removes the domain and its links.
func (s *CatalogService) DeleteDomain(ctx context.Context, id int) (*domain.Domain, error) {
	d, err := s.store.GetDomain(ctx, id)
	if err != nil {
		return nil, s.absentOrError(err)
	}
	if err := s.store.DeleteDomain(ctx, id); err != nil {
		return nil, s.absentOrError(err)
	}
	s.invalidate(query.EntityDomain)
	return d, nil
}

// UpdateMechanic renames the mechanic with u.ID when u.Name is set.
func (s *CatalogService) UpdateMechanic(ctx context.Context, u domain.TaxonomyUpdate) (*domain.Mechanic, error) {
	m, err := s.store.GetMechanic(ctx, u.ID)
	if err != nil {
		return nil, s.absentOrError(err)
	}
	if u.Name != "" {
		m.Name = u.Name
	}
	m.Touch(s.now())
	if err := s.store.UpdateMechanic(ctx, m); err != nil {
		return nil, s.absentOrError(err)
	}
	s.invalidate(query.EntityMechanic)
	return m, nil
}

// DeleteMechanic removes the mechanic and its links.
func (s *CatalogService) DeleteMechanic(ctx context.Context, id int) (*domain.Mechanic, error) {
	m, err := s.store.GetMechanic(ctx, id)
	if err != nil {
		return nil, s.absentOrError(err)
	}
	if err := s.store.DeleteMechanic(ctx, id); err != nil {
		return nil, s.absentOrError(err)
	}
	s.invalidate(query.EntityMechanic)
	return m, nil
}

// BoardGameDetails is a board game with the taxonomy it is linked to.
type BoardGameDetails struct {
	domain.BoardGame
	Domains   []domain.Domain   `json:"Domains"`
	Mechanics []domain.Mechanic `json:"Mechanics"`
}

// GetBoardGame returns one board game with its domains and mechanics, or nil
// when it does not exist.
func (s *CatalogService) GetBoardGame(ctx context.Context, id int) (*BoardGameDetails, error) {
	g, err := s.store.GetBoardGame(ctx, id)
	if err != nil {
		return nil, s.absentOrError(err)
	}
	ds, err := s.store.BoardGameDomains(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	ms, err := s.store.BoardGameMechanics(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if ds == nil {
		ds = []domain.Domain{}
	}
	if ms == nil {
		ms = []domain.Mechanic{}
	}
	return &BoardGameDetails{BoardGame: *g, Domains: ds, Mechanics: ms}, nil
}

// absentOrError maps store.ErrNotFound to (nil, nil) semantics: the caller
// returns a nil row. Other errors become domain errors.
func (s *CatalogService) absentOrError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return storageError(err)
}

func (s *CatalogService) invalidate(entities ...query.Entity) {
	namespaces := make([]string, len(entities))
	for i, e := range entities {
		namespaces[i] = string(e)
	}
	if err := s.cache.Invalidate(namespaces...); err != nil {
		s.logger.Warn("cache invalidation failed", "entities", namespaces, "error", err)
	}
}
