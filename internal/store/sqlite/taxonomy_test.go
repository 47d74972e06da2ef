package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/mybglist/mybglist-server/internal/ingest"
	"github.com/mybglist/mybglist-server/internal/query"
	"github.com/mybglist/mybglist-server/internal/store"
)

func TestListDomains(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b := reconcile(t, s, ingest.LinkAlways,
		ingest.Record{ID: intp(1), Name: "A", Domains: "Strategy Games, Family Games"},
		ingest.Record{ID: intp(2), Name: "B", Domains: "Wargames, Family Games"},
	)
	if err := s.CommitBatch(ctx, b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	plan := mustPlan(t, query.EntityDomain, func(r *query.Request) { r.SortOrder = "DESC" })
	ds, total, err := s.ListDomains(ctx, plan)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Errorf("expected 3 domains, got %d", total)
	}
	if len(ds) != 3 || ds[0].Name != "Wargames" || ds[2].Name != "Family Games" {
		t.Errorf("unexpected order %+v", ds)
	}

	plan = mustPlan(t, query.EntityDomain, func(r *query.Request) { r.Filter = "games" })
	_, total, err = s.ListDomains(ctx, plan)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if total != 3 {
		t.Errorf("filter is case-insensitive; expected 3, got %d", total)
	}
}

func TestUpdateDomain(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b := reconcile(t, s, ingest.LinkAlways, ingest.Record{ID: intp(1), Name: "A", Domains: "Strategy,Family"})
	if err := s.CommitBatch(ctx, b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	d, err := s.GetDomain(ctx, b.Domains[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	d.Name = "Strategy Games"
	if err := s.UpdateDomain(ctx, d); err != nil {
		t.Fatalf("update: %v", err)
	}

	d.Name = "Family"
	if err := s.UpdateDomain(ctx, d); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for a taken name, got %v", err)
	}

	got, err := s.GetDomain(ctx, d.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "Strategy Games" {
		t.Errorf("expected Strategy Games, got %s", got.Name)
	}

	if _, err := s.GetDomain(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCascadesToLinksOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b := reconcile(t, s, ingest.LinkAlways,
		ingest.Record{ID: intp(1), Name: "Catan", Domains: "Strategy", Mechanics: "Trading,Dice"},
		ingest.Record{ID: intp(2), Name: "Bohnanza", Mechanics: "Trading"},
	)
	if err := s.CommitBatch(ctx, b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := s.DeleteBoardGame(ctx, 1); err != nil {
		t.Fatalf("delete board game: %v", err)
	}
	if n := linkCount(t, s, "board_games_domains"); n != 0 {
		t.Errorf("expected domain links removed, got %d", n)
	}
	if n := linkCount(t, s, "board_games_mechanics"); n != 1 {
		t.Errorf("expected one mechanic link left, got %d", n)
	}
	if _, domains, mechanics := counts(t, s); domains != 1 || mechanics != 2 {
		t.Errorf("taxonomy rows must survive, got %d domains %d mechanics", domains, mechanics)
	}

	trading := b.Mechanics[0].ID
	if err := s.DeleteMechanic(ctx, trading); err != nil {
		t.Fatalf("delete mechanic: %v", err)
	}
	if n := linkCount(t, s, "board_games_mechanics"); n != 0 {
		t.Errorf("expected mechanic links removed, got %d", n)
	}
	if games, _, _ := counts(t, s); games != 1 {
		t.Errorf("board game must survive, got %d", games)
	}

	if err := s.DeleteMechanic(ctx, trading); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
