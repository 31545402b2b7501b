package model

// FilterAll is the wildcard value for category, status and severity filters.
const FilterAll = "all"

// Filters is the transient view-selection state of the store. It is owned
// by the store and never part of a risk's identity.
type Filters struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Severity string `json:"severity"`
}

// DefaultFilters returns the neutral filter state that matches every risk
func DefaultFilters() Filters {
	return Filters{
		Search:   "",
		Category: FilterAll,
		Status:   FilterAll,
		Severity: FilterAll,
	}
}

// Normalize fills zero-valued selector fields with the wildcard. Persisted
// documents from older versions may carry empty selectors.
func (x Filters) Normalize() Filters {
	if x.Category == "" {
		x.Category = FilterAll
	}
	if x.Status == "" {
		x.Status = FilterAll
	}
	if x.Severity == "" {
		x.Severity = FilterAll
	}
	return x
}

// FiltersUpdate is a partial filter change; nil fields keep current values.
type FiltersUpdate struct {
	Search   *string `json:"search,omitempty"`
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty"`
	Severity *string `json:"severity,omitempty"`
}

// Merge applies the non-nil fields of the update on top of the receiver
func (x Filters) Merge(u FiltersUpdate) Filters {
	if u.Search != nil {
		x.Search = *u.Search
	}
	if u.Category != nil {
		x.Category = *u.Category
	}
	if u.Status != nil {
		x.Status = *u.Status
	}
	if u.Severity != nil {
		x.Severity = *u.Severity
	}
	return x.Normalize()
}
