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

const entityBoardGame = "board game"

// boardGameColumns is the ordered list of columns selected in board game queries.
// Must match the scan order in scanBoardGame.
const boardGameColumns = `id, name, year, min_players, max_players, play_time, min_age,
	users_rated, rating_average, bgg_rank, complexity_average, owned_users,
	created_date, last_modified_date`

// scanBoardGame scans a sql.Row (or sql.Rows via its Scan method) into a domain.BoardGame.
func scanBoardGame(scanner interface{ Scan(dest ...any) error }) (domain.BoardGame, error) {
	var (
		g            domain.BoardGame
		created      string
		lastModified string
	)
	err := scanner.Scan(
		&g.ID,
		&g.Name,
		&g.Year,
		&g.MinPlayers,
		&g.MaxPlayers,
		&g.PlayTime,
		&g.MinAge,
		&g.UsersRated,
		&g.RatingAverage,
		&g.BGGRank,
		&g.ComplexityAverage,
		&g.OwnedUsers,
		&created,
		&lastModified,
	)
	if err != nil {
		return g, err
	}
	if g.CreatedDate, err = parseTime(created); err != nil {
		return g, err
	}
	if g.LastModifiedDate, err = parseTime(lastModified); err != nil {
		return g, err
	}
	return g, nil
}

// ListBoardGames returns one page of board games and the filtered total.
func (s *Store) ListBoardGames(ctx context.Context, plan query.Plan) ([]domain.BoardGame, int, error) {
	return listPage(ctx, s.db, "board_games", boardGameColumns, plan, scanBoardGame)
}

// GetBoardGame retrieves a board game by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetBoardGame(ctx context.Context, id int) (*domain.BoardGame, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+boardGameColumns+` FROM board_games WHERE id = ?`, id)

	g, err := scanBoardGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithEntity(entityBoardGame)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateBoardGame writes the editable fields (name, year, last_modified_date).
// The ID and CreatedDate are never changed.
func (s *Store) UpdateBoardGame(ctx context.Context, g *domain.BoardGame) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE board_games SET name = ?, year = ?, last_modified_date = ?
		WHERE id = ?`,
		g.Name,
		g.Year,
		formatTime(g.LastModifiedDate),
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("update board game: %w", err)
	}
	return checkAffected(res, entityBoardGame)
}

// DeleteBoardGame removes a board game. Its link rows go with it.
func (s *Store) DeleteBoardGame(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM board_games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete board game: %w", err)
	}
	return checkAffected(res, entityBoardGame)
}

// CountBoardGames returns the number of board games.
func (s *Store) CountBoardGames(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM board_games`)
}

// BoardGameIDs returns every persisted board game ID.
func (s *Store) BoardGameIDs(ctx context.Context) (map[int]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM board_games`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}
