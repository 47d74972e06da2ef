package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mybglist/mybglist-server/internal/ingest"
	"github.com/mybglist/mybglist-server/internal/store"
)

// CommitBatch persists a staged ingestion batch in one transaction. Either every
// row becomes visible or, on any error or cancellation, none does.
//
// Board games keep their dataset IDs. SQLite accepts an explicit value for an
// INTEGER PRIMARY KEY column, so there is no identity-insert mode to switch on or
// restore. Staged domains and mechanics receive their IDs from the insert, and
// those IDs resolve the staged link targets before the link rows are written.
func (s *Store) CommitBatch(ctx context.Context, b *ingest.Batch) error {
	if b.Empty() {
		return nil
	}

	var domainIDs, mechanicIDs []int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertBoardGames(ctx, tx, b); err != nil {
			return err
		}
		var err error
		domainIDs, err = insertNamed(ctx, tx, domainsTable, len(b.Domains), func(i int) (string, string, string) {
			d := b.Domains[i]
			return d.Name, formatTime(d.CreatedDate), formatTime(d.LastModifiedDate)
		})
		if err != nil {
			return err
		}
		mechanicIDs, err = insertNamed(ctx, tx, mechanicsTable, len(b.Mechanics), func(i int) (string, string, string) {
			m := b.Mechanics[i]
			return m.Name, formatTime(m.CreatedDate), formatTime(m.LastModifiedDate)
		})
		if err != nil {
			return err
		}

		created := formatTime(b.Now)
		if err := insertLinks(ctx, tx, domainsTable, b.DomainLinks, domainIDs, created); err != nil {
			return err
		}
		return insertLinks(ctx, tx, mechanicsTable, b.MechanicLinks, mechanicIDs, created)
	})
	if err != nil {
		return err
	}

	for i, id := range domainIDs {
		b.Domains[i].ID = id
	}
	for i, id := range mechanicIDs {
		b.Mechanics[i].ID = id
	}
	s.logger.Debug("batch committed",
		"board_games", len(b.BoardGames),
		"domains", len(b.Domains),
		"mechanics", len(b.Mechanics),
		"domain_links", len(b.DomainLinks),
		"mechanic_links", len(b.MechanicLinks),
	)
	return nil
}

func insertBoardGames(ctx context.Context, tx *sql.Tx, b *ingest.Batch) error {
	if len(b.BoardGames) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO board_games (`+boardGameColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare board game insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range b.BoardGames {
		_, err := stmt.ExecContext(ctx,
			g.ID,
			g.Name,
			g.Year,
			g.MinPlayers,
			g.MaxPlayers,
			g.PlayTime,
			g.MinAge,
			g.UsersRated,
			g.RatingAverage,
			g.BGGRank,
			g.ComplexityAverage,
			g.OwnedUsers,
			formatTime(g.CreatedDate),
			formatTime(g.LastModifiedDate),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrAlreadyExists.WithEntity(entityBoardGame).WithCause(err)
			}
			return fmt.Errorf("insert board game %d: %w", g.ID, err)
		}
	}
	return nil
}

// insertNamed inserts n staged taxonomy rows and returns their assigned IDs in
// staging order.
func insertNamed(ctx context.Context, tx *sql.Tx, t taxonomyTable, n int, row func(i int) (name, created, lastModified string)) ([]int, error) {
	if n == 0 {
		return nil, nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+t.table+` (name, created_date, last_modified_date) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare %s insert: %w", t.entity, err)
	}
	defer stmt.Close()

	ids := make([]int, n)
	for i := range n {
		name, created, lastModified := row(i)
		res, err := stmt.ExecContext(ctx, name, created, lastModified)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, store.ErrAlreadyExists.WithEntity(t.entity).WithCause(err)
			}
			return nil, fmt.Errorf("insert %s %q: %w", t.entity, name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert %s %q: %w", t.entity, name, err)
		}
		ids[i] = int(id)
	}
	return ids, nil
}

func insertLinks(ctx context.Context, tx *sql.Tx, t taxonomyTable, links []ingest.Link, stagedIDs []int, created string) error {
	if len(links) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+t.linkTable+` (board_game_id, `+t.linkColumn+`, created_date) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare %s link insert: %w", t.entity, err)
	}
	defer stmt.Close()

	for _, l := range links {
		target := l.Target.ID
		if l.Target.Staged {
			if l.Target.Index < 0 || l.Target.Index >= len(stagedIDs) {
				return fmt.Errorf("%s link for board game %d points at staged row %d of %d",
					t.entity, l.BoardGameID, l.Target.Index, len(stagedIDs))
			}
			target = stagedIDs[l.Target.Index]
		}
		if _, err := stmt.ExecContext(ctx, l.BoardGameID, target, created); err != nil {
			return fmt.Errorf("link board game %d to %s %d: %w", l.BoardGameID, t.entity, target, err)
		}
	}
	return nil
}
