package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/mybglist/mybglist-server/internal/errors"
)

// Request defaults and bounds.
const (
	DefaultPageIndex  = 0
	DefaultPageSize   = 10
	MinPageSize       = 1
	MaxPageSize       = 100
	DefaultSortColumn = "Name"
	DefaultSortOrder  = "ASC"

	// MaxPageIndex keeps PageIndex*PageSize within an int for every valid size.
	MaxPageIndex = math.MaxInt / MaxPageSize
)

// Request holds the raw list parameters as received.
type Request struct {
	PageIndex  int
	PageSize   int
	SortColumn string
	SortOrder  string
	Filter     string
}

// NewRequest returns a Request populated with the defaults.
func NewRequest() Request {
	return Request{
		PageIndex:  DefaultPageIndex,
		PageSize:   DefaultPageSize,
		SortColumn: DefaultSortColumn,
		SortOrder:  DefaultSortOrder,
	}
}

// Direction is a validated sort direction.
type Direction int

// Sort directions.
const (
	Asc Direction = iota
	Desc
)

// String returns "ASC" or "DESC".
func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

func parseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(s) {
	case "ASC":
		return Asc, true
	case "DESC":
		return Desc, true
	default:
		return Asc, false
	}
}

// Plan is a validated list query.
type Plan struct {
	Entity    Entity
	PageIndex int
	PageSize  int
	Sort      SortField
	Direction Direction
	Filter    string

	// Request is the input the plan was built from, kept for the self link.
	Request Request
}

// Offset is the number of rows skipped before the page. It saturates at
// math.MaxInt instead of wrapping.
func (p Plan) Offset() int {
	if p.PageIndex <= 0 || p.PageSize <= 0 {
		return 0
	}
	if p.PageIndex > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return p.PageIndex * p.PageSize
}

// Limit is the maximum number of rows in the page.
func (p Plan) Limit() int {
	return p.PageSize
}

// Violation describes one invalid request field.
type Violation struct {
	Field   string
	Message string
}

// Rule checks one aspect of a request. It returns nil when the request passes.
type Rule func(entity Entity, r Request) *Violation

// Rules run by Validate, in report order.
var Rules = []Rule{
	PageIndexRule,
	PageSizeRule,
	SortColumnRule,
	SortOrderRule,
}

// PageIndexRule requires pageIndex within [0, MaxPageIndex].
func PageIndexRule(_ Entity, r Request) *Violation {
	if r.PageIndex < 0 {
		return &Violation{Field: "pageIndex", Message: "must be greater than or equal to 0"}
	}
	if r.PageIndex > MaxPageIndex {
		return &Violation{Field: "pageIndex", Message: fmt.Sprintf("must be less than or equal to %d", MaxPageIndex)}
	}
	return nil
}

// PageSizeRule requires pageSize within [MinPageSize, MaxPageSize].
func PageSizeRule(_ Entity, r Request) *Violation {
	if r.PageSize < MinPageSize || r.PageSize > MaxPageSize {
		return &Violation{Field: "pageSize", Message: fmt.Sprintf("must be between %d and %d", MinPageSize, MaxPageSize)}
	}
	return nil
}

// SortColumnRule requires sortColumn to be registered for the entity.
func SortColumnRule(entity Entity, r Request) *Violation {
	if !IsSortable(entity, r.SortColumn) {
		return &Violation{
			Field:   "sortColumn",
			Message: "must be one of: " + strings.Join(Columns(entity), ", "),
		}
	}
	return nil
}

// SortOrderRule requires sortOrder to be ASC or DESC, in any case.
func SortOrderRule(_ Entity, r Request) *Violation {
	if _, ok := parseDirection(r.SortOrder); !ok {
		return &Violation{Field: "sortOrder", Message: "must be ASC or DESC"}
	}
	return nil
}

// Check runs every rule and returns all violations.
func Check(entity Entity, r Request, rules ...Rule) []Violation {
	if len(rules) == 0 {
		rules = Rules
	}
	var out []Violation
	for _, rule := range rules {
		if v := rule(entity, r); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Validate checks r against every rule and builds a Plan.
// All violations are reported together as one validation error whose details
// map each field to its message.
func Validate(entity Entity, r Request) (Plan, error) {
	if _, ok := sortable[entity]; !ok {
		return Plan{}, errors.Internal(fmt.Sprintf("unknown entity %q", entity))
	}

	var fields errors.FieldErrors
	for _, v := range Check(entity, r) {
		fields.Add(v.Field, v.Message)
	}
	if err := fields.Err("invalid list request"); err != nil {
		return Plan{}, err
	}

	sort, _ := Lookup(entity, r.SortColumn)
	dir, _ := parseDirection(r.SortOrder)

	return Plan{
		Entity:    entity,
		PageIndex: r.PageIndex,
		PageSize:  r.PageSize,
		Sort:      sort,
		Direction: dir,
		Filter:    r.Filter,
		Request:   r,
	}, nil
}
