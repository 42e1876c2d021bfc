package echoapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
)

type bindTarget struct {
	Name     string      `json:"name" query:"name"`
	Count    int         `json:"count" query:"count"`
	Active   *bool       `json:"active" query:"active"`
	Tags     []string    `json:"tags" query:"tag"`
	At       time.Time   `json:"at" query:"at"`
	Birthday null.Time   `json:"birthday"`
	Phone    null.String `json:"phone"`
}

func bindRequest(method, target, body string) (bindTarget, error) {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	ctx := echo.New().NewContext(req, httptest.NewRecorder())

	var out bindTarget
	err := strictBinder{}.Bind(&out, ctx)
	return out, err
}

func TestStrictBinder_body(t *testing.T) {
	out, err := bindRequest(http.MethodPost, "/", `{
		"name": "x", "count": "5", "active": "true", "tags": "one",
		"at": "2024-07-01T10:00:00Z", "birthday": "2010-05-04", "phone": "+91-98"
	}`)
	require.NoError(t, err)
	assert.Equal(t, "x", out.Name)
	assert.Equal(t, 5, out.Count)
	require.NotNil(t, out.Active)
	assert.True(t, *out.Active)
	assert.Equal(t, []string{"one"}, out.Tags)
	assert.True(t, out.At.Equal(time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, out.Birthday.Valid)
	assert.Equal(t, time.Date(2010, 5, 4, 0, 0, 0, 0, time.UTC), out.Birthday.Time)
	assert.Equal(t, null.StringFrom("+91-98"), out.Phone)
}

func TestStrictBinder_errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []core.FieldError
	}{
		{name: "unknown fields", body: `{"name": "x", "zeta": 1, "alpha": 2}`, wantFields: []core.FieldError{
			{Field: "alpha", Error: "unknown field"},
			{Field: "zeta", Error: "unknown field"},
		}},
		{name: "not an object", body: `"lol"`},
		{name: "bad number", body: `{"count": "five"}`},
		{name: "bad time", body: `{"at": "yesterday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bindRequest(http.MethodPost, "/", tt.body)
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, vErr.Fields)
			}
		})
	}
}

func TestStrictBinder_unsupportedMediaType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=x"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	ctx := echo.New().NewContext(req, httptest.NewRecorder())

	var out bindTarget
	assert.Equal(t, echo.ErrUnsupportedMediaType, strictBinder{}.Bind(&out, ctx))
}

func TestStrictBinder_query(t *testing.T) {
	out, err := bindRequest(http.MethodGet, "/?name=x&count=7&active=false&tag=a&tag=b&at=2024-07-01&unknown=1", "")
	require.NoError(t, err)
	assert.Equal(t, "x", out.Name)
	assert.Equal(t, 7, out.Count)
	require.NotNil(t, out.Active)
	assert.False(t, *out.Active)
	assert.Equal(t, []string{"a", "b"}, out.Tags)
	assert.True(t, out.At.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
}

func TestOrdering_Bind(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?ordering=name,-createdAt,,-", nil)
	ctx := echo.New().NewContext(req, httptest.NewRecorder())

	var ord Ordering
	ord.Bind(ctx)
	assert.Equal(t, []core.DBOrdering{
		{Field: "name", Ascending: true},
		{Field: "createdAt", Ascending: false},
	}, ord.Orderings)
}
