package query

import (
	"net/url"
	"strconv"
)

// Link is a hypermedia reference attached to a response.
type Link struct {
	Href string `json:"Href" doc:"Target URL"`
	Rel  string `json:"Rel" doc:"Relation, always self"`
	Type string `json:"Type" doc:"HTTP method to use with Href"`
}

// Envelope wraps response data. Pagination fields are present on list responses only.
type Envelope[T any] struct {
	Data         T      `json:"Data"`
	PageIndex    *int   `json:"PageIndex,omitempty" doc:"Zero-based page index"`
	PageSize     *int   `json:"PageSize,omitempty" doc:"Requested page size"`
	RecordsCount *int   `json:"RecordsCount,omitempty" doc:"Number of records matching the filter, before paging"`
	Links        []Link `json:"Links"`
}

// NewPage builds a list envelope whose self link reproduces the request.
func NewPage[T any](data T, plan Plan, count int, basePath string) Envelope[T] {
	pageIndex, pageSize := plan.PageIndex, plan.PageSize
	return Envelope[T]{
		Data:         data,
		PageIndex:    &pageIndex,
		PageSize:     &pageSize,
		RecordsCount: &count,
		Links:        []Link{{Href: SelfHref(basePath, plan.Request), Rel: "self", Type: "GET"}},
	}
}

// NewSingle builds an edit or delete envelope around one row, or nil.
func NewSingle[T any](data T, href, method string) Envelope[T] {
	return Envelope[T]{
		Data:  data,
		Links: []Link{{Href: href, Rel: "self", Type: method}},
	}
}

// SelfHref renders basePath with the five list parameters as sent.
// filter is left out when empty, which lists the same rows.
func SelfHref(basePath string, r Request) string {
	v := url.Values{}
	v.Set("pageIndex", strconv.Itoa(r.PageIndex))
	v.Set("pageSize", strconv.Itoa(r.PageSize))
	v.Set("sortColumn", r.SortColumn)
	v.Set("sortOrder", r.SortOrder)
	if r.Filter != "" {
		v.Set("filter", r.Filter)
	}
	return basePath + "?" + v.Encode()
}
