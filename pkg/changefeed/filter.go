package changefeed

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadFilter = errors.New("changefeed: filter must look like column=eq.value")

// Filter is a single equality predicate on one column. The zero Filter
// matches every row.
type Filter struct {
	Column string
	Value  string
}

// ParseFilter parses "column=eq.value". An empty string yields the zero Filter.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Filter{}, nil
	}
	col, rest, ok := strings.Cut(s, "=")
	if !ok || col == "" {
		return Filter{}, ErrBadFilter
	}
	val, ok := strings.CutPrefix(rest, "eq.")
	if !ok {
		return Filter{}, fmt.Errorf("%w: unsupported operator in %q", ErrBadFilter, s)
	}
	return Filter{Column: strings.TrimSpace(col), Value: val}, nil
}

// Eq builds a filter without going through the string form.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: stringify(value)}
}

func (f Filter) IsZero() bool { return f.Column == "" }

func (f Filter) String() string {
	if f.IsZero() {
		return ""
	}
	return f.Column + "=eq." + f.Value
}

// Match reports whether the event's row satisfies the predicate.
func (f Filter) Match(e Event) bool {
	if f.IsZero() {
		return true
	}
	fields, err := decodeRow(e.Row())
	if err != nil {
		return false
	}
	v, ok := fields[f.Column]
	if !ok {
		return false
	}
	return stringify(v) == f.Value
}
