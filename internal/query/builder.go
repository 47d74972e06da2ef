package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/mybglist/mybglist-server/internal/domain"
)

// Comparator orders two rows by a single field.
type Comparator[T any] func(a, b T) int

// Accessor describes how the builder reads rows of one entity type.
type Accessor[T any] struct {
	Name    func(T) string
	ID      func(T) int
	Compare map[SortField]Comparator[T]
}

// Apply runs the plan over rows in memory: filter, count, sort with the
// Name then ID tie-break, paginate. It returns the page and the filtered count.
// rows is not modified.
func Apply[T any](plan Plan, rows []T, acc Accessor[T]) ([]T, int) {
	filtered := make([]T, 0, len(rows))
	needle := strings.ToLower(plan.Filter)
	for _, row := range rows {
		if needle == "" || strings.Contains(strings.ToLower(acc.Name(row)), needle) {
			filtered = append(filtered, row)
		}
	}
	total := len(filtered)

	primary := acc.Compare[plan.Sort]
	slices.SortStableFunc(filtered, func(a, b T) int {
		if primary != nil {
			c := primary(a, b)
			if plan.Direction == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		if c := cmp.Compare(acc.Name(a), acc.Name(b)); c != 0 {
			return c
		}
		return cmp.Compare(acc.ID(a), acc.ID(b))
	})

	start := max(0, min(plan.Offset(), total))
	end := min(start+plan.Limit(), total)
	return filtered[start:end], total
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

// BoardGames is the accessor for domain.BoardGame.
var BoardGames = Accessor[domain.BoardGame]{
	Name: func(g domain.BoardGame) string { return g.Name },
	ID:   func(g domain.BoardGame) int { return g.ID },
	Compare: map[SortField]Comparator[domain.BoardGame]{
		SortID:                func(a, b domain.BoardGame) int { return cmp.Compare(a.ID, b.ID) },
		SortName:              func(a, b domain.BoardGame) int { return cmp.Compare(a.Name, b.Name) },
		SortYear:              func(a, b domain.BoardGame) int { return cmp.Compare(a.Year, b.Year) },
		SortMinPlayers:        func(a, b domain.BoardGame) int { return cmp.Compare(a.MinPlayers, b.MinPlayers) },
		SortMaxPlayers:        func(a, b domain.BoardGame) int { return cmp.Compare(a.MaxPlayers, b.MaxPlayers) },
		SortPlayTime:          func(a, b domain.BoardGame) int { return cmp.Compare(a.PlayTime, b.PlayTime) },
		SortMinAge:            func(a, b domain.BoardGame) int { return cmp.Compare(a.MinAge, b.MinAge) },
		SortUsersRated:        func(a, b domain.BoardGame) int { return cmp.Compare(a.UsersRated, b.UsersRated) },
		SortRatingAverage:     func(a, b domain.BoardGame) int { return cmp.Compare(a.RatingAverage, b.RatingAverage) },
		SortBGGRank:           func(a, b domain.BoardGame) int { return cmp.Compare(a.BGGRank, b.BGGRank) },
		SortComplexityAverage: func(a, b domain.BoardGame) int { return cmp.Compare(a.ComplexityAverage, b.ComplexityAverage) },
		SortOwnedUsers:        func(a, b domain.BoardGame) int { return cmp.Compare(a.OwnedUsers, b.OwnedUsers) },
		SortCreatedDate:       func(a, b domain.BoardGame) int { return compareTime(a.CreatedDate, b.CreatedDate) },
		SortLastModifiedDate:  func(a, b domain.BoardGame) int { return compareTime(a.LastModifiedDate, b.LastModifiedDate) },
	},
}

// Domains is the accessor for domain.Domain.
var Domains = Accessor[domain.Domain]{
	Name: func(d domain.Domain) string { return d.Name },
	ID:   func(d domain.Domain) int { return d.ID },
	Compare: map[SortField]Comparator[domain.Domain]{
		SortID:               func(a, b domain.Domain) int { return cmp.Compare(a.ID, b.ID) },
		SortName:             func(a, b domain.Domain) int { return cmp.Compare(a.Name, b.Name) },
		SortCreatedDate:      func(a, b domain.Domain) int { return compareTime(a.CreatedDate, b.CreatedDate) },
		SortLastModifiedDate: func(a, b domain.Domain) int { return compareTime(a.LastModifiedDate, b.LastModifiedDate) },
	},
}

// Mechanics is the accessor for domain.Mechanic.
var Mechanics = Accessor[domain.Mechanic]{
	Name: func(m domain.Mechanic) string { return m.Name },
	ID:   func(m domain.Mechanic) int { return m.ID },
	Compare: map[SortField]Comparator[domain.Mechanic]{
		SortID:               func(a, b domain.Mechanic) int { return cmp.Compare(a.ID, b.ID) },
		SortName:             func(a, b domain.Mechanic) int { return cmp.Compare(a.Name, b.Name) },
		SortCreatedDate:      func(a, b domain.Mechanic) int { return compareTime(a.CreatedDate, b.CreatedDate) },
		SortLastModifiedDate: func(a, b domain.Mechanic) int { return compareTime(a.LastModifiedDate, b.LastModifiedDate) },
	},
}
