package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mybglist/mybglist-server/internal/domain"
	"github.com/mybglist/mybglist-server/internal/query"
	"github.com/mybglist/mybglist-server/internal/store"
)

// taxonomyTable describes the domains or mechanics table and its link table.
// Domains and mechanics share one shape, so the SQL is written once.
type taxonomyTable struct {
	entity     string
	table      string
	linkTable  string
	linkColumn string
}

var (
	domainsTable = taxonomyTable{
		entity:     "domain",
		table:      "domains",
		linkTable:  "board_games_domains",
		linkColumn: "domain_id",
	}
	mechanicsTable = taxonomyTable{
		entity:     "mechanic",
		table:      "mechanics",
		linkTable:  "board_games_mechanics",
		linkColumn: "mechanic_id",
	}
)

// taxonomyColumns must match the scan order in scanTaxonomy.
const taxonomyColumns = `id, name, created_date, last_modified_date`

func scanTaxonomy(scanner interface{ Scan(dest ...any) error }, id *int, name *string, audit *domain.Audit) error {
	var created, lastModified string
	if err := scanner.Scan(id, name, &created, &lastModified); err != nil {
		return err
	}
	var err error
	if audit.CreatedDate, err = parseTime(created); err != nil {
		return err
	}
	audit.LastModifiedDate, err = parseTime(lastModified)
	return err
}

func scanDomain(scanner interface{ Scan(dest ...any) error }) (domain.Domain, error) {
	var d domain.Domain
	err := scanTaxonomy(scanner, &d.ID, &d.Name, &d.Audit)
	return d, err
}

func scanMechanic(scanner interface{ Scan(dest ...any) error }) (domain.Mechanic, error) {
	var m domain.Mechanic
	err := scanTaxonomy(scanner, &m.ID, &m.Name, &m.Audit)
	return m, err
}

func (t taxonomyTable) get(ctx context.Context, db *sql.DB, id int, dest func(interface{ Scan(dest ...any) error }) error) error {
	row := db.QueryRowContext(ctx, `SELECT `+taxonomyColumns+` FROM `+t.table+` WHERE id = ?`, id)
	err := dest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound.WithEntity(t.entity)
	}
	return err
}

// update renames a row. A name already taken by another row is ErrAlreadyExists.
func (t taxonomyTable) update(ctx context.Context, db *sql.DB, id int, name string, audit domain.Audit) error {
	res, err := db.ExecContext(ctx,
		`UPDATE `+t.table+` SET name = ?, last_modified_date = ? WHERE id = ?`,
		name, formatTime(audit.LastModifiedDate), id)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithEntity(t.entity).WithCause(err)
		}
		return fmt.Errorf("update %s: %w", t.entity, err)
	}
	return checkAffected(res, t.entity)
}

func (t taxonomyTable) delete(ctx context.Context, db *sql.DB, id int) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.entity, err)
	}
	return checkAffected(res, t.entity)
}

// idsByName loads the name to id lookup used by ingestion.
func (t taxonomyTable) idsByName(ctx context.Context, db *sql.DB) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM `+t.table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

// linkedRowsQuery selects the taxonomy rows linked to one board game, by name.
func (t taxonomyTable) linkedRowsQuery() string {
	return `SELECT t.id, t.name, t.created_date, t.last_modified_date FROM ` + t.table + ` t
		JOIN ` + t.linkTable + ` l ON l.` + t.linkColumn + ` = t.id
		WHERE l.board_game_id = ?
		ORDER BY t.name ASC`
}

// ListDomains returns one page of domains and the filtered total.
func (s *Store) ListDomains(ctx context.Context, plan query.Plan) ([]domain.Domain, int, error) {
	return listPage(ctx, s.db, domainsTable.table, taxonomyColumns, plan, scanDomain)
}

// GetDomain retrieves a domain by ID.
func (s *Store) GetDomain(ctx context.Context, id int) (*domain.Domain, error) {
	var d domain.Domain
	err := domainsTable.get(ctx, s.db, id, func(sc interface{ Scan(dest ...any) error }) error {
		return scanTaxonomy(sc, &d.ID, &d.Name, &d.Audit)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDomain writes the name and last_modified_date.
func (s *Store) UpdateDomain(ctx context.Context, d *domain.Domain) error {
	return domainsTable.update(ctx, s.db, d.ID, d.Name, d.Audit)
}

// DeleteDomain removes a domain and its link rows.
func (s *Store) DeleteDomain(ctx context.Context, id int) error {
	return domainsTable.delete(ctx, s.db, id)
}

// CountDomains returns the number of domains.
func (s *Store) CountDomains(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM domains`)
}

// DomainIDsByName returns every domain keyed by its exact name.
func (s *Store) DomainIDsByName(ctx context.Context) (map[string]int, error) {
	return domainsTable.idsByName(ctx, s.db)
}

// BoardGameDomains returns the domains linked to a board game, ordered by name.
func (s *Store) BoardGameDomains(ctx context.Context, boardGameID int) ([]domain.Domain, error) {
	return queryAll(ctx, s.db, domainsTable.linkedRowsQuery(), scanDomain, boardGameID)
}

// ListMechanics returns one page of mechanics and the filtered total.
func (s *Store) ListMechanics(ctx context.Context, plan query.Plan) ([]domain.Mechanic, int, error) {
	return listPage(ctx, s.db, mechanicsTable.table, taxonomyColumns, plan, scanMechanic)
}

// GetMechanic retrieves a mechanic by ID.
func (s *Store) GetMechanic(ctx context.Context, id int) (*domain.Mechanic, error) {
	var m domain.Mechanic
	err := mechanicsTable.get(ctx, s.db, id, func(sc interface{ Scan(dest ...any) error }) error {
		return scanTaxonomy(sc, &m.ID, &m.Name, &m.Audit)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMechanic writes the name and last_modified_date.
func (s *Store) UpdateMechanic(ctx context.Context, m *domain.Mechanic) error {
	return mechanicsTable.update(ctx, s.db, m.ID, m.Name, m.Audit)
}

// DeleteMechanic removes a mechanic and its link rows.
func (s *Store) DeleteMechanic(ctx context.Context, id int) error {
	return mechanicsTable.delete(ctx, s.db, id)
}

// CountMechanics returns the number of mechanics.
func (s *Store) CountMechanics(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM mechanics`)
}

// MechanicIDsByName returns every mechanic keyed by its exact name.
func (s *Store) MechanicIDsByName(ctx context.Context) (map[string]int, error) {
	return mechanicsTable.idsByName(ctx, s.db)
}

// BoardGameMechanics returns the mechanics linked to a board game, ordered by name.
func (s *Store) BoardGameMechanics(ctx context.Context, boardGameID int) ([]domain.Mechanic, error) {
	return queryAll(ctx, s.db, mechanicsTable.linkedRowsQuery(), scanMechanic, boardGameID)
}

func queryAll[T any](ctx context.Context, db *sql.DB, stmt string, scan func(interface{ Scan(dest ...any) error }) (T, error), args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
