package model

// IntentKind tags the recognized query intent.
type IntentKind string

const (
	IntentCount       IntentKind = "count"
	IntentExactLookup IntentKind = "exact_lookup"
	IntentFuzzySearch IntentKind = "fuzzy_search"
	IntentFallback    IntentKind = "fallback"
)

// CountFilter refines a counting intent.
type CountFilter string

const (
	CountFilterNone         CountFilter = "none"
	CountFilterPostalEquals CountFilter = "postal_equals"
	CountFilterDeptPrefix   CountFilter = "dept_prefix"
	CountFilterCityLike     CountFilter = "city_like"
)

// QueryIntent describes what the compiler recognized in the message.
// Exactly one variant's fields are populated, selected by Kind.
type QueryIntent struct {
	Kind        IntentKind  `json:"kind"`
	CountFilter CountFilter `json:"count_filter,omitempty"`
	ColumnClass string      `json:"column_class,omitempty"`
	Value       string      `json:"value,omitempty"`
	Terms       []string    `json:"terms,omitempty"`
}

// CompiledQuery is a single read-only, capped selection statement
// produced deterministically from free text. Immutable once built.
type CompiledQuery struct {
	SQL     string      `json:"sql"`
	Dataset string      `json:"dataset"`
	Intent  QueryIntent `json:"intent"`
}

// Row is one result row keyed by column name.
type Row map[string]any

// ResultSet is the outcome of executing a compiled query.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	Count   int      `json:"count"`
}
