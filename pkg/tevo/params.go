package tevo

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Method is one of the HTTP verbs the API accepts.
type Method string

// Supported methods.
const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// Valid reports whether m belongs to the fixed verb set.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	default:
		return false
	}
}

// ParseMethod converts a case-insensitive verb into a Method. Unknown verbs are
// returned as-is so that the endpoint can reject them with a configuration error.
func ParseMethod(verb string) Method {
	return Method(strings.ToUpper(strings.TrimSpace(verb)))
}

// Params are request parameters. GET and DELETE send them as the query string,
// POST and PUT as a JSON body. The core passes them through untouched.
type Params map[string]interface{}

// Values encodes params as url.Values. Slices become repeated keys.
func (p Params) Values() url.Values {
	values := url.Values{}

	for key, value := range p {
		switch typed := value.(type) {
		case nil:
			continue
		case []string:
			for _, item := range typed {
				values.Add(key, item)
			}
		case []int:
			for _, item := range typed {
				values.Add(key, strconv.Itoa(item))
			}
		case []interface{}:
			for _, item := range typed {
				values.Add(key, fmt.Sprint(item))
			}
		default:
			values.Set(key, fmt.Sprint(typed))
		}
	}

	return values
}

// Encode returns the sorted query string form of params.
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// QueryParams builds list parameters.
type QueryParams struct {
	Page    int
	PerPage int
	OrderBy string
	Filters map[string]string
}

// NewQueryParams creates empty query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{Filters: make(map[string]string)}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithOrderBy sets the sort order (e.g. "events.occurs_at DESC").
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithFilter adds a filter parameter.
func (q *QueryParams) WithFilter(key, value string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}

	q.Filters[key] = value

	return q
}

// Params converts the builder into request parameters. A nil builder yields nil.
func (q *QueryParams) Params() Params {
	if q == nil {
		return nil
	}

	params := Params{}

	if q.Page > 0 {
		params["page"] = q.Page
	}

	if q.PerPage > 0 {
		params["per_page"] = q.PerPage
	}

	if q.OrderBy != "" {
		params["order_by"] = q.OrderBy
	}

	for key, value := range q.Filters {
		params[key] = value
	}

	return params
}
