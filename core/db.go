package core

import (
	"context"
	"math"
	"strings"
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a listing. Number starts at 1.
type Page struct {
	Number int `query:"page"`
	Size   int `query:"pageSize"`
}

// Clean applies defaults and bounds.
func (p Page) Clean() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	} else if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	p = p.Clean()
	return (p.Number - 1) * p.Size
}

// Paginated is a page of results along with the totals needed to navigate the rest.
type Paginated struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

func NewPaginated(data interface{}, total int64, p Page) Paginated {
	p = p.Clean()
	return Paginated{
		Data:       data,
		Total:      total,
		Page:       p.Number,
		PageSize:   p.Size,
		TotalPages: int(math.Ceil(float64(total) / float64(p.Size))),
	}
}

// RefChecker verifies that a row exists before another row starts referencing it.
type RefChecker interface {
	Exists(ctx context.Context, table Table, id string) (bool, error)
}

// CheckRef returns a ValidationError on `field` when the referenced row does not exist.
func CheckRef(ctx context.Context, refs RefChecker, table Table, field, id string) error {
	ok, err := refs.Exists(ctx, table, id)
	if err != nil {
		return err
	}
	if !ok {
		return NewValidationError(nil, FieldError{Field: field, Error: table.Entity() + " does not exist"})
	}
	return nil
}

// Condition is a raw SQL condition with its bind parameters, e.g. {"date >= ?", []interface{}{from}}.
type Condition struct {
	Query string
	Args  []interface{}
}

// Filter narrows a listing down. Conditions are ANDed.
type Filter struct {
	Equal map[string]interface{} // {column: value}
	Where []Condition
}

func NewFilter() *Filter {
	return &Filter{Equal: make(map[string]interface{})}
}

// Eq adds a `column = value` condition.
func (f *Filter) Eq(column string, value interface{}) *Filter {
	f.Equal[column] = value
	return f
}

// EqIf adds a `column = value` condition unless value is empty.
func (f *Filter) EqIf(column, value string) *Filter {
	if value != "" {
		f.Equal[column] = value
	}
	return f
}

func (f *Filter) Cond(query string, args ...interface{}) *Filter {
	f.Where = append(f.Where, Condition{Query: query, Args: args})
	return f
}

// Search adds a case-insensitive substring match of term on any of columns.
func (f *Filter) Search(term string, columns ...string) *Filter {
	term = strings.ToLower(CleanString(term))
	if term == "" || len(columns) == 0 {
		return f
	}
	likes := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		likes = append(likes, "LOWER("+col+") LIKE ?")
		args = append(args, "%"+term+"%")
	}
	return f.Cond("("+strings.Join(likes, " OR ")+")", args...)
}

// Store persists one kind of record. Get, Update and Delete return a NotFoundError for unknown ids.
type Store[T any] interface {
	Create(ctx context.Context, obj *T) error
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, obj *T) error
	Delete(ctx context.Context, id string) error
	// List returns one page of the matching records along with the total count of matches.
	List(ctx context.Context, filter *Filter, page Page, ordering ...DBOrdering) ([]T, int64, error)
	// All returns every matching record.
	All(ctx context.Context, filter *Filter, ordering ...DBOrdering) ([]T, error)
}

// ListPage lists one page of `store` and wraps it into a Paginated.
func ListPage[T any](ctx context.Context, store Store[T], filter *Filter, page Page, ordering ...DBOrdering) (Paginated, error) {
	page = page.Clean()
	objs, total, err := store.List(ctx, filter, page, ordering...)
	if err != nil {
		return Paginated{}, err
	}
	if objs == nil {
		objs = []T{}
	}
	return NewPaginated(objs, total, page), nil
}
