package pagination

import (
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs. Queues can be sorted by amount as
// well as by time, so keyset cursors on created_at do not apply.
type Params struct {
	Limit  int
	Offset int
}

// Page is the list envelope returned by paginated endpoints.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	NextOffset *int `json:"nextOffset,omitempty"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize clamps both fields into range.
func (p Params) Normalize() Params {
	out := Params{Limit: NormalizeLimit(p.Limit), Offset: p.Offset}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}

// LimitWithBuffer returns the normalized limit plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// BuildPage trims the buffered row and computes the next offset.
func BuildPage[T any](rows []T, params Params) Page[T] {
	params = params.Normalize()
	page := Page[T]{Items: rows, Limit: params.Limit, Offset: params.Offset}
	if len(rows) > params.Limit {
		page.Items = rows[:params.Limit]
		next := params.Offset + params.Limit
		page.NextOffset = &next
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}

// ParseParams reads limit and offset strings, ignoring malformed values.
func ParseParams(limit, offset string) Params {
	var p Params
	if v, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil {
		p.Limit = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(offset)); err == nil {
		p.Offset = v
	}
	return p.Normalize()
}
