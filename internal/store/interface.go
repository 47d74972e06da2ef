// Package store defines the persistence interface for the catalog server.
package store

import (
	"context"

	"github.com/mybglist/mybglist-server/internal/domain"
	"github.com/mybglist/mybglist-server/internal/ingest"
	"github.com/mybglist/mybglist-server/internal/query"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	CatalogStore
	UserStore

	// Bulk ingestion
	ingest.SnapshotLoader
	ingest.Committer
}

// CatalogStore reads and edits board games and their taxonomy.
//
// List methods take a validated plan and return one page plus the total number of
// rows that matched the filter before paging. Update methods return ErrNotFound when
// the ID does not exist; Delete methods return ErrNotFound likewise and cascade to
// link rows.
type CatalogStore interface {
	// Board games
	ListBoardGames(ctx context.Context, plan query.Plan) ([]domain.BoardGame, int, error)
	GetBoardGame(ctx context.Context, id int) (*domain.BoardGame, error)
	UpdateBoardGame(ctx context.Context, g *domain.BoardGame) error
	DeleteBoardGame(ctx context.Context, id int) error
	CountBoardGames(ctx context.Context) (int, error)

	// Domains
	ListDomains(ctx context.Context, plan query.Plan) ([]domain.Domain, int, error)
	GetDomain(ctx context.Context, id int) (*domain.Domain, error)
	UpdateDomain(ctx context.Context, d *domain.Domain) error
	DeleteDomain(ctx context.Context, id int) error
	CountDomains(ctx context.Context) (int, error)

	// Mechanics
	ListMechanics(ctx context.Context, plan query.Plan) ([]domain.Mechanic, int, error)
	GetMechanic(ctx context.Context, id int) (*domain.Mechanic, error)
	UpdateMechanic(ctx context.Context, m *domain.Mechanic) error
	DeleteMechanic(ctx context.Context, id int) error
	CountMechanics(ctx context.Context) (int, error)

	// Links
	BoardGameDomains(ctx context.Context, boardGameID int) ([]domain.Domain, error)
	BoardGameMechanics(ctx context.Context, boardGameID int) ([]domain.Mechanic, error)
}

// UserStore persists API accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	CountUsers(ctx context.Context) (int, error)
}
