package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mybglist/mybglist-server/internal/query"
)

// likeEscaper escapes LIKE metacharacters so the filter matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereFilter returns the WHERE clause and its arguments for a name filter.
// SQLite's LIKE is case-insensitive for ASCII letters.
func whereFilter(filter string) (string, []any) {
	if filter == "" {
		return "", nil
	}
	return ` WHERE name LIKE '%' || ? || '%' ESCAPE '\'`, []any{likeEscaper.Replace(filter)}
}

// orderBy renders the ORDER BY clause from the plan's typed sort field. Ties are
// broken by name then id so paging is stable.
func orderBy(plan query.Plan) string {
	col := plan.Sort.Column()
	if col == "" {
		col = query.SortName.Column()
	}
	var b strings.Builder
	b.WriteString(" ORDER BY ")
	b.WriteString(col)
	b.WriteByte(' ')
	b.WriteString(plan.Direction.String())
	if plan.Sort != query.SortName {
		b.WriteString(", name ASC")
	}
	if plan.Sort != query.SortID {
		b.WriteString(", id ASC")
	}
	return b.String()
}

// listPage counts the filtered rows of table and scans one page of them.
// table and columns are compile-time constants, never user input.
func listPage[T any](ctx context.Context, db *sql.DB, table, columns string, plan query.Plan, scan func(scanner interface{ Scan(dest ...any) error }) (T, error)) ([]T, int, error) {
	where, args := whereFilter(plan.Filter)

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}

	stmt := `SELECT ` + columns + ` FROM ` + table + where + orderBy(plan) + ` LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, stmt, append(args, plan.Limit(), plan.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]T, 0, plan.Limit())
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
