package echoapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
)

var (
	orderingParam = "ordering"

	errUnknownField = "unknown field"

	timeType        = reflect.TypeOf(time.Time{})
	nullTimeType    = reflect.TypeOf(null.Time{})
	unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field,-other`. A leading "-" sorts descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// strictBinder decodes JSON bodies and query strings through mapstructure.
// Primitives are coerced ("5" -> 5, "true" -> true) and times are read from RFC 3339 or YYYY-MM-DD strings.
// Body fields the target does not declare are rejected. Unknown query parameters are ignored.
type strictBinder struct{}

var _ echo.Binder = strictBinder{}

func (b strictBinder) Bind(i interface{}, ctx echo.Context) error {
	req := ctx.Request()
	if req.ContentLength == 0 || req.Method == http.MethodGet || req.Method == http.MethodDelete || req.Method == http.MethodHead {
		return b.bindQuery(i, ctx)
	}
	return b.bindBody(i, ctx)
}

func (b strictBinder) bindBody(i interface{}, ctx echo.Context) error {
	req := ctx.Request()
	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return echo.ErrUnsupportedMediaType
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
		return core.NewValidationError(errors.New("request body must be a JSON object"))
	}

	var md mapstructure.Metadata
	if err := decode(raw, i, "json", &md); err != nil {
		return err
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		flds := make([]core.FieldError, 0, len(md.Unused))
		for _, key := range md.Unused {
			flds = append(flds, core.FieldError{Field: key, Error: errUnknownField})
		}
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (b strictBinder) bindQuery(i interface{}, ctx echo.Context) error {
	params := ctx.QueryParams()
	raw := make(map[string]interface{}, len(params))
	for key, vals := range params {
		switch len(vals) {
		case 0:
		case 1:
			raw[key] = vals[0]
		default:
			raw[key] = vals
		}
	}
	return decode(raw, i, "query", nil)
}

func decode(raw map[string]interface{}, i interface{}, tag string, md *mapstructure.Metadata) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decodeHook,
		WeaklyTypedInput: true,
		Metadata:         md,
		Result:           i,
		TagName:          tag,
	})
	if err != nil {
		return errors.Wrap(err, "creating decoder")
	}
	if err = dec.Decode(raw); err != nil {
		var merr *mapstructure.Error
		if errors.As(err, &merr) {
			return core.NewValidationError(errors.New(strings.Join(merr.Errors, "; ")))
		}
		return core.NewValidationError(err)
	}
	return nil
}

// decodeHook converts strings into times and hands values to the JSON decoding of null.* types.
func decodeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	switch {
	case to == timeType:
		if s, ok := data.(string); ok {
			return parseTime(s)
		}
	case to == nullTimeType:
		if s, ok := data.(string); ok {
			if s == "" {
				return null.Time{}, nil
			}
			t, err := parseTime(s)
			if err != nil {
				return nil, err
			}
			return null.TimeFrom(t), nil
		}
	case to.Kind() == reflect.Struct && from.Kind() != reflect.Map && reflect.PtrTo(to).Implements(unmarshalerType):
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		v := reflect.New(to)
		if err = v.Interface().(json.Unmarshaler).UnmarshalJSON(b); err != nil {
			return nil, err
		}
		return v.Elem().Interface(), nil
	}
	return data, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.Errorf("%q must be an RFC 3339 date-time or a YYYY-MM-DD date", s)
}
