package domain

// BoardGame is a catalog entry. Its ID comes from the source dataset and is never generated locally.
type BoardGame struct {
	ID                int     `json:"Id"`
	Name              string  `json:"Name"`
	Year              int     `json:"Year"`
	MinPlayers        int     `json:"MinPlayers"`
	MaxPlayers        int     `json:"MaxPlayers"`
	PlayTime          int     `json:"PlayTime"`
	MinAge            int     `json:"MinAge"`
	UsersRated        int     `json:"UsersRated"`
	RatingAverage     float64 `json:"RatingAverage"`
	BGGRank           int     `json:"BGGRank"`
	ComplexityAverage float64 `json:"ComplexityAverage"`
	OwnedUsers        int     `json:"OwnedUsers"`
	Audit
}

// BoardGameUpdate is the subset of fields the edit path may change.
// Name is applied when non-empty, Year when positive.
type BoardGameUpdate struct {
	ID   int
	Name string
	Year int
}

// Apply copies the permitted fields onto g. It reports whether anything besides
// the modification timestamp changed.
func (u BoardGameUpdate) Apply(g *BoardGame) bool {
	changed := false
	if u.Name != "" && u.Name != g.Name {
		g.Name = u.Name
		changed = true
	}
	if u.Year > 0 && u.Year != g.Year {
		g.Year = u.Year
		changed = true
	}
	return changed
}
