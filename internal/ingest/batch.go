package ingest

import (
	"context"
	"time"

	"github.com/mybglist/mybglist-server/internal/domain"
)

// Ref points at a taxonomy row that is either already persisted (ID) or
// staged in the same batch (Index into Batch.Domains or Batch.Mechanics).
type Ref struct {
	ID     int
	Index  int
	Staged bool
}

// Existing returns a Ref to a persisted row.
func Existing(id int) Ref { return Ref{ID: id} }

// StagedAt returns a Ref to the index-th staged row.
func StagedAt(index int) Ref { return Ref{Index: index, Staged: true} }

// Link is a staged board game to taxonomy association.
type Link struct {
	BoardGameID int
	Target      Ref
}

// Batch is the staging buffer of one ingestion run. Lists keep insertion order.
// Staged domains and mechanics have ID 0 until committed.
type Batch struct {
	Now           time.Time
	BoardGames    []domain.BoardGame
	Domains       []domain.Domain
	Mechanics     []domain.Mechanic
	DomainLinks   []Link
	MechanicLinks []Link

	Rows    int
	Skipped int
}

// Empty reports whether there is nothing to commit.
func (b *Batch) Empty() bool {
	return len(b.BoardGames) == 0 && len(b.Domains) == 0 && len(b.Mechanics) == 0
}

// Committer persists a batch atomically: all rows become visible or none do.
type Committer interface {
	CommitBatch(ctx context.Context, b *Batch) error
}

// Snapshot is the persisted state the reconciler dedups against.
type Snapshot struct {
	BoardGameIDs map[int]struct{}
	Domains      map[string]int // name -> id
	Mechanics    map[string]int // name -> id
}

// SnapshotLoader reads the current persisted keys.
type SnapshotLoader interface {
	BoardGameIDs(ctx context.Context) (map[int]struct{}, error)
	DomainIDsByName(ctx context.Context) (map[string]int, error)
	MechanicIDsByName(ctx context.Context) (map[string]int, error)
}
