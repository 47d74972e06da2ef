package query

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybglist/mybglist-server/internal/domain"
	"github.com/mybglist/mybglist-server/internal/errors"
)

func validationDetails(t *testing.T, err error) map[string]string {
	t.Helper()
	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	require.Equal(t, errors.CodeValidation, domainErr.Code)
	details := errors.Fields(err)
	require.NotNil(t, details)
	return details
}

func TestRegistry_ExactMatch(t *testing.T) {
	for _, entity := range []Entity{EntityBoardGame, EntityDomain, EntityMechanic} {
		t.Run(string(entity), func(t *testing.T) {
			assert.True(t, IsSortable(entity, "Name"))
			assert.True(t, IsSortable(entity, "Id"))
			assert.False(t, IsSortable(entity, "name"))
			assert.False(t, IsSortable(entity, "NAME"))
			assert.False(t, IsSortable(entity, "Nam"))
			assert.False(t, IsSortable(entity, "Name "))
			assert.False(t, IsSortable(entity, ""))
			assert.False(t, IsSortable(entity, "DROP TABLE"))
		})
	}
}

func TestRegistry_EntityColumns(t *testing.T) {
	assert.True(t, IsSortable(EntityBoardGame, "Year"))
	assert.True(t, IsSortable(EntityBoardGame, "BGGRank"))
	assert.False(t, IsSortable(EntityDomain, "Year"))
	assert.False(t, IsSortable(EntityMechanic, "RatingAverage"))

	assert.Equal(t, []string{"Id", "Name", "CreatedDate", "LastModifiedDate"}, Columns(EntityDomain))
	assert.Len(t, Columns(EntityBoardGame), 14)
	assert.Empty(t, Columns(Entity("Publisher")))
}

func TestRegistry_ColumnsIsACopy(t *testing.T) {
	cols := Columns(EntityMechanic)
	cols[0] = "Hacked"
	assert.False(t, IsSortable(EntityMechanic, "Hacked"))
}

func TestSortField_Column(t *testing.T) {
	f, ok := Lookup(EntityBoardGame, "ComplexityAverage")
	require.True(t, ok)
	assert.Equal(t, "complexity_average", f.Column())
	assert.Equal(t, "ComplexityAverage", f.String())
	assert.Equal(t, "", SortField(0).String())
}

func TestValidate_Defaults(t *testing.T) {
	plan, err := Validate(EntityBoardGame, NewRequest())
	require.NoError(t, err)

	assert.Equal(t, 0, plan.PageIndex)
	assert.Equal(t, 10, plan.PageSize)
	assert.Equal(t, SortName, plan.Sort)
	assert.Equal(t, Asc, plan.Direction)
	assert.Equal(t, "", plan.Filter)
}

func TestValidate_SortOrderCaseInsensitive(t *testing.T) {
	for _, order := range []string{"asc", "ASC", "Asc", "desc", "DESC", "dEsC"} {
		r := NewRequest()
		r.SortOrder = order
		plan, err := Validate(EntityDomain, r)
		require.NoError(t, err, order)
		assert.Equal(t, strings.ToUpper(order), plan.Direction.String())
	}
}

func TestValidate_PageSizeBounds(t *testing.T) {
	tests := []struct {
		size  int
		valid bool
	}{
		{0, false},
		{1, true},
		{10, true},
		{100, true},
		{101, false},
		{-5, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.size), func(t *testing.T) {
			r := NewRequest()
			r.PageSize = tt.size
			_, err := Validate(EntityBoardGame, r)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			details := validationDetails(t, err)
			assert.Contains(t, details, "pageSize")
		})
	}
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	r := Request{PageIndex: -1, PageSize: 500, SortColumn: "DROP TABLE", SortOrder: "sideways"}

	_, err := Validate(EntityBoardGame, r)
	require.Error(t, err)

	details := validationDetails(t, err)
	assert.Len(t, details, 4)
	assert.Contains(t, details, "pageIndex")
	assert.Contains(t, details, "pageSize")
	assert.Contains(t, details, "sortColumn")
	assert.Contains(t, details, "sortOrder")
	assert.Equal(t, 400, err.(*errors.Error).HTTPStatus())
}

func TestValidate_LowercaseColumnRejected(t *testing.T) {
	r := NewRequest()
	r.SortColumn = "name"

	_, err := Validate(EntityMechanic, r)
	details := validationDetails(t, err)
	assert.Equal(t, "must be one of: Id, Name, CreatedDate, LastModifiedDate", details["sortColumn"])
}

func TestValidate_UnknownEntity(t *testing.T) {
	_, err := Validate(Entity("Publisher"), NewRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestCheck_CustomRules(t *testing.T) {
	noFilter := func(_ Entity, r Request) *Violation {
		if r.Filter != "" {
			return &Violation{Field: "filter", Message: "not supported"}
		}
		return nil
	}

	r := NewRequest()
	r.Filter = "cat"
	violations := Check(EntityDomain, r, PageSizeRule, noFilter)
	require.Len(t, violations, 1)
	assert.Equal(t, "filter", violations[0].Field)
}

func TestPlan_OffsetLimit(t *testing.T) {
	p := Plan{PageIndex: 3, PageSize: 25}
	assert.Equal(t, 75, p.Offset())
	assert.Equal(t, 25, p.Limit())
}

func TestPlan_OffsetSaturates(t *testing.T) {
	assert.Equal(t, math.MaxInt, Plan{PageIndex: 1 << 62, PageSize: 4}.Offset())
	assert.Equal(t, math.MaxInt, Plan{PageIndex: 1<<62 + 1, PageSize: 2}.Offset())
	assert.Equal(t, 0, Plan{PageIndex: -1, PageSize: 10}.Offset())
}

func TestValidate_PageIndexUpperBound(t *testing.T) {
	r := NewRequest()
	r.PageIndex = MaxPageIndex
	plan := mustPlan(t, EntityBoardGame, r)
	assert.Greater(t, plan.Offset(), 0)

	for _, idx := range []int{MaxPageIndex + 1, 1 << 62, math.MaxInt} {
		r.PageIndex = idx
		r.PageSize = 4
		_, err := Validate(EntityBoardGame, r)
		require.Error(t, err, "pageIndex %d", idx)
		assert.Contains(t, validationDetails(t, err), "pageIndex")
	}
}

func TestApply_HugeOffsetIsEmpty(t *testing.T) {
	plan := Plan{Entity: EntityBoardGame, PageIndex: 1<<62 + 1, PageSize: 2, Sort: SortName}

	page, count := Apply(plan, games(2001, 2002, 2003), BoardGames)

	assert.Empty(t, page)
	assert.Equal(t, 3, count)
}

func games(years ...int) []domain.BoardGame {
	out := make([]domain.BoardGame, len(years))
	for i, y := range years {
		out[i] = domain.BoardGame{ID: i + 1, Name: fmt.Sprintf("Game %d", y), Year: y}
	}
	return out
}

func mustPlan(t *testing.T, entity Entity, r Request) Plan {
	t.Helper()
	plan, err := Validate(entity, r)
	require.NoError(t, err)
	return plan
}

func TestApply_YearDescScenario(t *testing.T) {
	rows := games(1995, 2000, 2017)
	plan := mustPlan(t, EntityBoardGame, Request{PageIndex: 0, PageSize: 2, SortColumn: "Year", SortOrder: "DESC"})

	page, count := Apply(plan, rows, BoardGames)

	require.Len(t, page, 2)
	assert.Equal(t, 2017, page[0].Year)
	assert.Equal(t, 2000, page[1].Year)
	assert.Equal(t, 3, count)
}

func TestApply_FilterIsCaseInsensitiveAndCountedBeforePaging(t *testing.T) {
	rows := []domain.BoardGame{
		{ID: 1, Name: "Catan"},
		{ID: 2, Name: "Carcassonne"},
		{ID: 3, Name: "Scythe"},
		{ID: 4, Name: "Cathedral"},
	}
	r := NewRequest()
	r.Filter = "CAT"
	r.PageSize = 1

	for pageIndex := range 3 {
		r.PageIndex = pageIndex
		_, count := Apply(mustPlan(t, EntityBoardGame, r), rows, BoardGames)
		assert.Equal(t, 2, count, "count must not depend on paging")
	}
}

func TestApply_PageBeyondEndIsEmpty(t *testing.T) {
	r := NewRequest()
	r.PageIndex = 5
	page, count := Apply(mustPlan(t, EntityBoardGame, r), games(2001, 2002), BoardGames)
	assert.Empty(t, page)
	assert.Equal(t, 2, count)
}

func TestApply_TiesAreStableAcrossPages(t *testing.T) {
	// Every game shares the same year, so order comes from the Name then Id tie-break.
	rows := []domain.BoardGame{
		{ID: 5, Name: "Bohnanza", Year: 1997},
		{ID: 2, Name: "Azul", Year: 1997},
		{ID: 9, Name: "Azul", Year: 1997},
		{ID: 1, Name: "Citadels", Year: 1997},
		{ID: 7, Name: "Agricola", Year: 1997},
	}
	r := Request{PageSize: 2, SortColumn: "Year", SortOrder: "ASC"}

	var seen []int
	for pageIndex := range 3 {
		r.PageIndex = pageIndex
		page, _ := Apply(mustPlan(t, EntityBoardGame, r), rows, BoardGames)
		for _, g := range page {
			seen = append(seen, g.ID)
		}
	}
	assert.Equal(t, []int{7, 2, 9, 5, 1}, seen)

	// Same plan again yields the same order.
	r.PageIndex = 0
	first, _ := Apply(mustPlan(t, EntityBoardGame, r), rows, BoardGames)
	second, _ := Apply(mustPlan(t, EntityBoardGame, r), rows, BoardGames)
	assert.Equal(t, first, second)
}

func TestApply_PageSizeProperty(t *testing.T) {
	rows := games(1990, 1991, 1992, 1993, 1994, 1995, 1996, 1997, 1998, 1999, 2000)
	full, _ := Apply(mustPlan(t, EntityBoardGame, Request{PageSize: 100, SortColumn: "Year", SortOrder: "ASC"}), rows, BoardGames)

	for size := 1; size <= 12; size++ {
		for index := 0; index*size <= len(rows); index++ {
			plan := mustPlan(t, EntityBoardGame, Request{PageIndex: index, PageSize: size, SortColumn: "Year", SortOrder: "ASC"})
			page, count := Apply(plan, rows, BoardGames)

			assert.LessOrEqual(t, len(page), size)
			assert.Equal(t, len(rows), count)
			end := min(index*size+size, len(full))
			assert.Equal(t, full[index*size:end], page)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	rows := games(2017, 1995, 2000)
	original := append([]domain.BoardGame(nil), rows...)

	Apply(mustPlan(t, EntityBoardGame, Request{PageSize: 10, SortColumn: "Year", SortOrder: "ASC"}), rows, BoardGames)
	assert.Equal(t, original, rows)
}

func TestApply_TaxonomyByCreatedDate(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.Mechanic{
		{ID: 1, Name: "Trading", Audit: domain.Audit{CreatedDate: base.Add(2 * time.Hour)}},
		{ID: 2, Name: "Dice Rolling", Audit: domain.Audit{CreatedDate: base}},
		{ID: 3, Name: "Auction", Audit: domain.Audit{CreatedDate: base.Add(time.Hour)}},
	}
	page, _ := Apply(mustPlan(t, EntityMechanic, Request{PageSize: 10, SortColumn: "CreatedDate", SortOrder: "desc"}), rows, Mechanics)

	require.Len(t, page, 3)
	assert.Equal(t, []string{"Trading", "Auction", "Dice Rolling"}, []string{page[0].Name, page[1].Name, page[2].Name})
}

func TestNewPage_SelfLinkEchoesRequest(t *testing.T) {
	r := Request{PageIndex: 2, PageSize: 5, SortColumn: "Year", SortOrder: "desc", Filter: "Cat & Mouse"}
	plan := mustPlan(t, EntityBoardGame, r)

	env := NewPage([]domain.BoardGame{}, plan, 42, "/api/v1/boardgames")

	require.NotNil(t, env.PageIndex)
	assert.Equal(t, 2, *env.PageIndex)
	assert.Equal(t, 5, *env.PageSize)
	assert.Equal(t, 42, *env.RecordsCount)
	require.Len(t, env.Links, 1)
	assert.Equal(t, "self", env.Links[0].Rel)
	assert.Equal(t, "GET", env.Links[0].Type)

	u, err := url.Parse(env.Links[0].Href)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/boardgames", u.Path)
	q := u.Query()
	assert.Equal(t, "2", q.Get("pageIndex"))
	assert.Equal(t, "5", q.Get("pageSize"))
	assert.Equal(t, "Year", q.Get("sortColumn"))
	assert.Equal(t, "desc", q.Get("sortOrder"))
	assert.Equal(t, "Cat & Mouse", q.Get("filter"))
}

func TestSelfHref_OmitsEmptyFilter(t *testing.T) {
	href := SelfHref("/api/v1/domains", NewRequest())
	assert.Equal(t, "/api/v1/domains?pageIndex=0&pageSize=10&sortColumn=Name&sortOrder=ASC", href)
}

func TestNewSingle_OmitsPagination(t *testing.T) {
	env := NewSingle[*domain.Domain](nil, "/api/v1/domains/7", "DELETE")

	assert.Nil(t, env.Data)
	assert.Nil(t, env.PageIndex)
	assert.Nil(t, env.PageSize)
	assert.Nil(t, env.RecordsCount)
	assert.Equal(t, []Link{{Href: "/api/v1/domains/7", Rel: "self", Type: "DELETE"}}, env.Links)
}
