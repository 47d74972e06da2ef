// Package ingest loads the board game dataset into a staging batch.
//
// A Source yields Records, a Reconciler decides per record whether to skip
// it or stage new rows, and a Committer persists the finished Batch in one
// transaction.
package ingest

import (
	"math"
	"strconv"
	"strings"
)

// Record is one dataset row with typed fields. Pointer fields are nil when the
// cell was empty or could not be parsed.
type Record struct {
	Line              int
	ID                *int
	Name              string
	YearPublished     *int
	MinPlayers        *int
	MaxPlayers        *int
	PlayTime          *int
	MinAge            *int
	UsersRated        *int
	RatingAverage     *float64
	BGGRank           *int
	ComplexityAverage *float64
	OwnedUsers        *int
	Domains           string
	Mechanics         string
}

// SplitNames splits a comma-joined taxonomy list. Names are trimmed and empty
// entries dropped; case is preserved.
func SplitNames(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Some exports write whole numbers as "12.0".
		f := parseFloat(s)
		if f == nil || *f < math.MinInt64 || *f >= math.MaxInt64 || *f != float64(int(*f)) {
			return nil
		}
		v = int(*f)
	}
	return &v
}

// parseFloat accepts both "8.79" and the dataset's "8,79". NaN and the
// infinities count as unparseable.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func intOr(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func floatOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
