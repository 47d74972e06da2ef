package api

import (
	"strings"

	"github.com/mybglist/mybglist-server/internal/query"
)

// ListInput holds the list query parameters. Values are checked by the query
// validator, not by the schema, so every violation is reported together.
type ListInput struct {
	PageIndex  int    `query:"pageIndex" default:"0" doc:"Zero-based page index"`
	PageSize   int    `query:"pageSize" default:"10" doc:"Rows per page, from 1 to 100"`
	SortColumn string `query:"sortColumn" default:"Name" doc:"Column to sort by, matched exactly"`
	SortOrder  string `query:"sortOrder" default:"ASC" doc:"ASC or DESC, case-insensitive"`
	Filter     string `query:"filter" doc:"Case-insensitive substring match on Name"`
}

func (in *ListInput) request() query.Request {
	return query.Request{
		PageIndex:  in.PageIndex,
		PageSize:   in.PageSize,
		SortColumn: in.SortColumn,
		SortOrder:  in.SortOrder,
		Filter:     in.Filter,
	}
}

// IDInput selects one row by path ID.
type IDInput struct {
	ID int `path:"id" doc:"Row ID"`
}

func listDescription(entity query.Entity, what string) string {
	return "Returns one page of " + what + ". Sortable columns: " +
		strings.Join(query.Columns(entity), ", ") + "."
}
