package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
	"github.com/angelmondragon/localdrop-backend/pkg/pagination"
)

const maxOffset = 1 << 30

// Bounds is the accepted range of an integer query parameter and the value
// used when it is absent.
type Bounds struct {
	Fallback int
	Min, Max int
}

func (b Bounds) read(q map[string][]string, field string) (int, error) {
	vals := q[field]
	if len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
		return b.Fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(vals[0]))
	if err != nil {
		return 0, badParam(field, "must be a whole number", nil)
	}
	if n < b.Min || n > b.Max {
		return 0, badParam(field, "is out of range", map[string]any{"min": b.Min, "max": b.Max})
	}
	return n, nil
}

// QueryInt reads one integer query parameter within b.
func QueryInt(r *http.Request, field string, b Bounds) (int, error) {
	return b.read(r.URL.Query(), field)
}

// ParsePage reads limit and offset query parameters.
func ParsePage(r *http.Request) (pagination.Params, error) {
	q := r.URL.Query()
	limit, err := Bounds{Fallback: pagination.DefaultLimit, Min: 1, Max: pagination.MaxLimit}.read(q, "limit")
	if err != nil {
		return pagination.Params{}, err
	}
	offset, err := Bounds{Max: maxOffset}.read(q, "offset")
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Offset: offset}, nil
}

// ParseUUIDParam reads a route parameter as a UUID.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, badParam(name, "must be a valid id", nil)
	}
	return id, nil
}

func badParam(field, reason string, extra map[string]any) *pkgerrors.Error {
	details := map[string]any{"field": field}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, field+" "+reason).WithDetails(details)
}
