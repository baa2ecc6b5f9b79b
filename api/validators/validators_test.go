package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
	"github.com/angelmondragon/localdrop-backend/pkg/pagination"
)

func TestCleanText(t *testing.T) {
	cases := map[string]struct {
		in    string
		limit int
		want  string
	}{
		"collapses whitespace": {in: "  fried \t rice\n ", want: "fried rice"},
		"cuts at limit":        {in: "biryani house", limit: 7, want: "biryani"},
		"no trailing space":    {in: "hall a b", limit: 5, want: "hall"},
		"keeps runes whole":    {in: "ভাত", limit: 4, want: "ভ"},
		"zero limit":           {in: "plain", want: "plain"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, CleanText(tc.in, tc.limit))
		})
	}
}

func TestParsePage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/q", nil)
	page, err := ParsePage(req)
	require.NoError(t, err)
	require.Equal(t, pagination.Params{Limit: pagination.DefaultLimit}, page)

	req = httptest.NewRequest(http.MethodGet, "/q?limit=10&offset=20", nil)
	page, err = ParsePage(req)
	require.NoError(t, err)
	require.Equal(t, pagination.Params{Limit: 10, Offset: 20}, page)

	for _, raw := range []string{"limit=0", "limit=abc", "offset=-1", "limit=1000"} {
		_, err := ParsePage(httptest.NewRequest(http.MethodGet, "/q?"+raw, nil))
		require.Error(t, err, raw)
		var typed *pkgerrors.Error
		require.ErrorAs(t, err, &typed)
		require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

func TestParseUUIDParam(t *testing.T) {
	withParam := func(v string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", v)
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	_, err := ParseUUIDParam(withParam("not-a-uuid"), "id")
	require.Error(t, err)
	_, err = ParseUUIDParam(withParam("00000000-0000-0000-0000-000000000000"), "id")
	require.Error(t, err)

	id, err := ParseUUIDParam(withParam("7d4a3c52-6f0e-4a1a-9d52-2b9d9a1c0f11"), "id")
	require.NoError(t, err)
	require.Equal(t, "7d4a3c52-6f0e-4a1a-9d52-2b9d9a1c0f11", id.String())
}

type orderForm struct {
	Name  string `json:"name" validate:"required"`
	Items []struct {
		Qty int `json:"qty" validate:"min=1"`
	} `json:"items" validate:"dive"`
}

func TestDecodeJSONBodyReportsFieldPaths(t *testing.T) {
	body := `{"items":[{"qty":0}],"extra":true}`
	req := httptest.NewRequest(http.MethodPost, "/o", strings.NewReader(body))

	var form orderForm
	err := DecodeJSONBody(req, &form)
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "is required", details["name"])
	require.Equal(t, "must be at least 1", details["items[0].qty"])
}

func TestDecodeJSONBodyRequiresBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/o", strings.NewReader(""))
	var form orderForm
	require.Error(t, DecodeJSONBody(req, &form))
}
