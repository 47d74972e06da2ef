// Package query turns untrusted list parameters into a bounded, typed query plan
// and wraps the results in a self-describing response envelope.
//
// Sort columns are resolved through a fixed registry per entity. A column name
// that is not in the registry is rejected; nothing the caller sends is ever
// placed into SQL text.
//
// Apply and the Accessor tables evaluate a Plan over rows in memory with the
// same filter, sort and paging rules as the SQL store. Only tests use them.
package query

// Entity identifies a listable catalog table.
type Entity string

// Listable entities.
const (
	EntityBoardGame Entity = "BoardGame"
	EntityDomain    Entity = "Domain"
	EntityMechanic  Entity = "Mechanic"
)

// SortField is a typed sortable column.
type SortField int

// Sortable fields. The zero value is invalid.
const (
	SortID SortField = iota + 1
	SortName
	SortYear
	SortMinPlayers
	SortMaxPlayers
	SortPlayTime
	SortMinAge
	SortUsersRated
	SortRatingAverage
	SortBGGRank
	SortComplexityAverage
	SortOwnedUsers
	SortCreatedDate
	SortLastModifiedDate
)

type fieldInfo struct {
	name   string // public column name, as accepted in sortColumn
	column string // SQL identifier
}

var fields = map[SortField]fieldInfo{
	SortID:                {"Id", "id"},
	SortName:              {"Name", "name"},
	SortYear:              {"Year", "year"},
	SortMinPlayers:        {"MinPlayers", "min_players"},
	SortMaxPlayers:        {"MaxPlayers", "max_players"},
	SortPlayTime:          {"PlayTime", "play_time"},
	SortMinAge:            {"MinAge", "min_age"},
	SortUsersRated:        {"UsersRated", "users_rated"},
	SortRatingAverage:     {"RatingAverage", "rating_average"},
	SortBGGRank:           {"BGGRank", "bgg_rank"},
	SortComplexityAverage: {"ComplexityAverage", "complexity_average"},
	SortOwnedUsers:        {"OwnedUsers", "owned_users"},
	SortCreatedDate:       {"CreatedDate", "created_date"},
	SortLastModifiedDate:  {"LastModifiedDate", "last_modified_date"},
}

var taxonomyFields = []SortField{SortID, SortName, SortCreatedDate, SortLastModifiedDate}

// sortable lists the permitted fields per entity, in documentation order.
var sortable = map[Entity][]SortField{
	EntityBoardGame: {
		SortID, SortName, SortYear, SortMinPlayers, SortMaxPlayers, SortPlayTime, SortMinAge,
		SortUsersRated, SortRatingAverage, SortBGGRank, SortComplexityAverage, SortOwnedUsers,
		SortCreatedDate, SortLastModifiedDate,
	},
	EntityDomain:   taxonomyFields,
	EntityMechanic: taxonomyFields,
}

// byName is the exact-match lookup derived from sortable at init.
var byName = func() map[Entity]map[string]SortField {
	out := make(map[Entity]map[string]SortField, len(sortable))
	for entity, list := range sortable {
		names := make(map[string]SortField, len(list))
		for _, f := range list {
			names[fields[f].name] = f
		}
		out[entity] = names
	}
	return out
}()

// String returns the public column name.
func (f SortField) String() string {
	if info, ok := fields[f]; ok {
		return info.name
	}
	return ""
}

// Column returns the SQL identifier for the field.
func (f SortField) Column() string {
	return fields[f].column
}

// Columns returns the sortable column names for entity. The slice is a copy.
func Columns(entity Entity) []string {
	list := sortable[entity]
	out := make([]string, len(list))
	for i, f := range list {
		out[i] = fields[f].name
	}
	return out
}

// Lookup resolves a column name for entity. Matching is exact and case-sensitive.
func Lookup(entity Entity, name string) (SortField, bool) {
	f, ok := byName[entity][name]
	return f, ok
}

// IsSortable reports whether name is a sortable column of entity.
func IsSortable(entity Entity, name string) bool {
	_, ok := Lookup(entity, name)
	return ok
}
