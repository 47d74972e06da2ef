package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mybglist/mybglist-server/internal/domain"
)

// LinkPolicy decides which taxonomy references produce link rows.
type LinkPolicy int

const (
	// LinkAlways links a board game to every domain and mechanic it names.
	LinkAlways LinkPolicy = iota
	// LinkNewOnly links only taxonomy rows created by the same run.
	// Kept for parity with the legacy importer, which never linked pre-existing names.
	LinkNewOnly
)

// ParseLinkPolicy accepts "always" and "new-only".
func ParseLinkPolicy(s string) (LinkPolicy, error) {
	switch s {
	case "", "always":
		return LinkAlways, nil
	case "new-only":
		return LinkNewOnly, nil
	default:
		return LinkAlways, fmt.Errorf("unknown link policy %q", s)
	}
}

// String returns the configuration spelling.
func (p LinkPolicy) String() string {
	if p == LinkNewOnly {
		return "new-only"
	}
	return "always"
}

// SkipReason explains why a record was not staged.
type SkipReason string

// Skip reasons.
const (
	SkipMissingID   SkipReason = "missing id"
	SkipMissingName SkipReason = "missing name"
	SkipDuplicateID SkipReason = "duplicate id"
)

// LoadSnapshot reads the three lookup maps concurrently.
func LoadSnapshot(ctx context.Context, loader SnapshotLoader) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := loader.BoardGameIDs(ctx)
		if err != nil {
			return fmt.Errorf("load board game ids: %w", err)
		}
		snap.BoardGameIDs = ids
		return nil
	})
	g.Go(func() error {
		names, err := loader.DomainIDsByName(ctx)
		if err != nil {
			return fmt.Errorf("load domains: %w", err)
		}
		snap.Domains = names
		return nil
	})
	g.Go(func() error {
		names, err := loader.MechanicIDsByName(ctx)
		if err != nil {
			return fmt.Errorf("load mechanics: %w", err)
		}
		snap.Mechanics = names
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Reconciler stages new rows for one run. It is not safe for concurrent use;
// callers serialize runs.
type Reconciler struct {
	policy    LinkPolicy
	batch     *Batch
	games     map[int]struct{}
	domains   map[string]Ref
	mechanics map[string]Ref
}

// NewReconciler seeds the dedup maps from snap. now stamps every staged row.
func NewReconciler(snap Snapshot, now time.Time, policy LinkPolicy) *Reconciler {
	r := &Reconciler{
		policy:    policy,
		batch:     &Batch{Now: now},
		games:     make(map[int]struct{}, len(snap.BoardGameIDs)),
		domains:   make(map[string]Ref, len(snap.Domains)),
		mechanics: make(map[string]Ref, len(snap.Mechanics)),
	}
	for id := range snap.BoardGameIDs {
		r.games[id] = struct{}{}
	}
	for name, id := range snap.Domains {
		r.domains[name] = Existing(id)
	}
	for name, id := range snap.Mechanics {
		r.mechanics[name] = Existing(id)
	}
	return r
}

// Add processes one record. It returns a non-empty reason when the record was skipped.
func (r *Reconciler) Add(rec Record) SkipReason {
	r.batch.Rows++

	reason := r.check(rec)
	if reason != "" {
		r.batch.Skipped++
		return reason
	}

	now := r.batch.Now
	game := domain.BoardGame{
		ID:                *rec.ID,
		Name:              rec.Name,
		Year:              intOr(rec.YearPublished),
		MinPlayers:        intOr(rec.MinPlayers),
		MaxPlayers:        intOr(rec.MaxPlayers),
		PlayTime:          intOr(rec.PlayTime),
		MinAge:            intOr(rec.MinAge),
		UsersRated:        intOr(rec.UsersRated),
		RatingAverage:     floatOr(rec.RatingAverage),
		BGGRank:           intOr(rec.BGGRank),
		ComplexityAverage: floatOr(rec.ComplexityAverage),
		OwnedUsers:        intOr(rec.OwnedUsers),
	}
	game.InitTimestamps(now)
	r.batch.BoardGames = append(r.batch.BoardGames, game)
	r.games[game.ID] = struct{}{}

	r.batch.DomainLinks = r.resolve(game.ID, SplitNames(rec.Domains), r.domains, r.batch.DomainLinks, r.stageDomain)
	r.batch.MechanicLinks = r.resolve(game.ID, SplitNames(rec.Mechanics), r.mechanics, r.batch.MechanicLinks, r.stageMechanic)

	return ""
}

func (r *Reconciler) check(rec Record) SkipReason {
	switch {
	case rec.ID == nil:
		return SkipMissingID
	case rec.Name == "":
		return SkipMissingName
	}
	if _, dup := r.games[*rec.ID]; dup {
		return SkipDuplicateID
	}
	return ""
}

// resolve finds or stages each named taxonomy row and appends links per the policy.
func (r *Reconciler) resolve(gameID int, names []string, known map[string]Ref, links []Link, stage func(string) Ref) []Link {
	linked := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, done := linked[name]; done {
			continue
		}
		linked[name] = struct{}{}

		ref, ok := known[name]
		created := false
		if !ok {
			ref = stage(name)
			known[name] = ref
			created = true
		}

		if created || r.policy == LinkAlways {
			links = append(links, Link{BoardGameID: gameID, Target: ref})
		}
	}
	return links
}

func (r *Reconciler) stageDomain(name string) Ref {
	d := domain.Domain{Name: name}
	d.InitTimestamps(r.batch.Now)
	r.batch.Domains = append(r.batch.Domains, d)
	return StagedAt(len(r.batch.Domains) - 1)
}

func (r *Reconciler) stageMechanic(name string) Ref {
	m := domain.Mechanic{Name: name}
	m.InitTimestamps(r.batch.Now)
	r.batch.Mechanics = append(r.batch.Mechanics, m)
	return StagedAt(len(r.batch.Mechanics) - 1)
}

// Batch returns the staging buffer built so far.
func (r *Reconciler) Batch() *Batch {
	return r.batch
}
