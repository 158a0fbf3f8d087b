package tevo

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fivetwenty-io/tevo/internal/constants"
	"golang.org/x/sync/errgroup"
)

// Collection is one page of a list response.
type Collection[T any] struct {
	CurrentPage  int `json:"current_page"  yaml:"current_page"`
	PerPage      int `json:"per_page"      yaml:"per_page"`
	TotalEntries int `json:"total_entries" yaml:"total_entries"`
	Entries      []T `json:"entries"       yaml:"entries"`
}

// TotalPages returns the number of pages implied by TotalEntries.
func (c *Collection[T]) TotalPages() int {
	if c.PerPage <= 0 {
		return 1
	}

	return (c.TotalEntries + c.PerPage - 1) / c.PerPage
}

// HasNextPage reports whether more pages follow.
func (c *Collection[T]) HasNextPage() bool {
	return c.CurrentPage < c.TotalPages()
}

// PageFunc fetches one page.
type PageFunc[T any] func(ctx context.Context, page int) (*Collection[T], error)

// FetchAllPages fetches the first page, then the remaining pages concurrently,
// and returns every entry in page order.
func FetchAllPages[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	first, err := fetch(ctx, 1)
	if err != nil {
		return nil, errors.Wrap(err, "fetching page 1")
	}

	total := first.TotalPages()
	if total <= 1 {
		return first.Entries, nil
	}

	var (
		mu    sync.Mutex
		pages = map[int][]T{1: first.Entries}
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(constants.MaxConcurrentPages)

	for page := 2; page <= total; page++ {
		page := page
		group.Go(func() error {
			result, err := fetch(groupCtx, page)
			if err != nil {
				return errors.Wrapf(err, "fetching page %d", page)
			}

			mu.Lock()
			pages[page] = result.Entries
			mu.Unlock()

			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return nil, err
	}

	order := make([]int, 0, len(pages))
	for page := range pages {
		order = append(order, page)
	}

	sort.Ints(order)

	all := make([]T, 0, first.TotalEntries)
	for _, page := range order {
		all = append(all, pages[page]...)
	}

	return all, nil
}

// collect hydrates a list envelope through the singular registry.
func collect[T Model](env *Envelope, res Resource) (*Collection[T], error) {
	collection := &Collection[T]{
		CurrentPage:  intField(env.Body, "current_page"),
		PerPage:      intField(env.Body, "per_page"),
		TotalEntries: intField(env.Body, "total_entries"),
	}

	raw, present := env.Body[res.Plural]
	if !present || raw == nil {
		collection.Entries = []T{}

		return collection, nil
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedPayload, "%s is %T, not a list", res.Plural, raw)
	}

	collection.Entries = make([]T, 0, len(items))

	for i, item := range items {
		record, err := hydrate[T](env, res, item)
		if err != nil {
			return nil, errors.Wrapf(err, "%s[%d]", res.Plural, i)
		}

		collection.Entries = append(collection.Entries, record)
	}

	return collection, nil
}

// hydrate decodes raw into the model registered for res.
func hydrate[T Model](env *Envelope, res Resource, raw interface{}) (T, error) {
	var zero T

	factory, err := SingularOf(res)
	if err != nil {
		return zero, err
	}

	model := factory()

	data, err := json.Marshal(raw)
	if err != nil {
		return zero, errors.Wrapf(err, "encoding %s", res.Singular)
	}

	err = json.Unmarshal(data, model)
	if err != nil {
		return zero, &DecodeError{StatusCode: env.StatusCode, Body: string(data), Err: err}
	}

	model.attach(env.Connection)

	typed, ok := model.(T)
	if !ok {
		return zero, errors.Wrapf(ErrUnexpectedPayload, "%s hydrates into %T, not %T", res.Type, model, zero)
	}

	return typed, nil
}

func intField(body map[string]interface{}, key string) int {
	switch value := body[key].(type) {
	case float64:
		return int(value)
	case json.Number:
		n, _ := value.Int64()

		return int(n)
	default:
		return 0
	}
}
