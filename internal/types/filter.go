package types

const (
	FilterDefaultLimit = 50
	FilterMaxLimit     = 1000
)

// Filter holds common pagination options for list queries
type Filter struct {
	Limit  int `json:"limit" form:"limit"`
	Offset int `json:"offset" form:"offset"`
}

// NewDefaultFilter returns a filter with sane pagination defaults
func NewDefaultFilter() Filter {
	return Filter{
		Limit:  FilterDefaultLimit,
		Offset: 0,
	}
}

func (f Filter) GetLimit() int {
	if f.Limit <= 0 {
		return FilterDefaultLimit
	}
	if f.Limit > FilterMaxLimit {
		return FilterMaxLimit
	}
	return f.Limit
}

func (f Filter) GetOffset() int {
	if f.Offset < 0 {
		return 0
	}
	return f.Offset
}
