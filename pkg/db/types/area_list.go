package dbtypes

import (
	"database/sql/driver"
	"strings"

	"github.com/lib/pq"
)

// AreaList is a text[] of local area names served by a shop or item.
type AreaList []string

// NewAreaList trims every entry and drops the empty ones.
func NewAreaList(raw []string) AreaList {
	out := make(AreaList, 0, len(raw))
	for _, area := range raw {
		area = strings.TrimSpace(area)
		if area == "" {
			continue
		}
		out = append(out, area)
	}
	return out
}

func (a AreaList) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	return pq.StringArray(a).Value()
}

func (a *AreaList) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	if arr == nil {
		arr = pq.StringArray{}
	}
	*a = AreaList(arr)
	return nil
}

// Index renders the lowercase, pipe-delimited form stored alongside the
// array so area lookups stay plain LIKE comparisons on every dialect.
func (a AreaList) Index() string {
	if len(a) == 0 {
		return ""
	}
	parts := make([]string, 0, len(a))
	for _, area := range a {
		parts = append(parts, strings.ToLower(strings.TrimSpace(area)))
	}
	return "|" + strings.Join(parts, "|") + "|"
}

// ExactAreaPattern matches one whole area inside an Index value.
func ExactAreaPattern(area string) string {
	return "%|" + EscapeLike(strings.ToLower(strings.TrimSpace(area))) + "|%"
}

// ContainsPattern matches a case-folded substring.
func ContainsPattern(term string) string {
	return "%" + EscapeLike(strings.ToLower(strings.TrimSpace(term))) + "%"
}

// EscapeLike escapes LIKE wildcards using backslash, which both Postgres and
// sqlite honour when the query declares ESCAPE '\'.
func EscapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
