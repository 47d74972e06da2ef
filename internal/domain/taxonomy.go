package domain

// Domain is a broad board game category such as "Strategy Games".
// Name is the natural key and is unique, compared case-sensitively.
type Domain struct {
	ID   int    `json:"Id"`
	Name string `json:"Name"`
	Audit
}

// Mechanic is a gameplay mechanism such as "Dice Rolling".
// Name is the natural key and is unique, compared case-sensitively.
type Mechanic struct {
	ID   int    `json:"Id"`
	Name string `json:"Name"`
	Audit
}

// TaxonomyUpdate renames a Domain or Mechanic. An empty Name leaves it unchanged.
type TaxonomyUpdate struct {
	ID   int
	Name string
}
