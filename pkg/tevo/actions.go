package tevo

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
)

// call runs a request and folds an application error into the error value.
// Typed operations cannot hydrate a status outside the taxonomy ranges.
func call(ctx context.Context, e *Endpoint, method Method, path string, params Params) (*Envelope, error) {
	env, apiErr, err := e.Request(ctx, method, path, params)
	if err != nil {
		return nil, err
	}

	if apiErr != nil {
		return nil, apiErr
	}

	if env.Class == ClassUnknown {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "%s %s (status: %d)", method, e.BasePath()+path, env.StatusCode)
	}

	return env, nil
}

func listAction[T Model](ctx context.Context, e *Endpoint, path string, params Params) (*Collection[T], error) {
	env, err := call(ctx, e, MethodGet, path, params)
	if err != nil {
		return nil, err
	}

	return collect[T](env, e.resource)
}

func showAction[T Model](ctx context.Context, e *Endpoint, id int64) (T, error) {
	var zero T

	env, err := call(ctx, e, MethodGet, idPath(id), nil)
	if err != nil {
		return zero, err
	}

	return hydrate[T](env, e.resource, env.Body)
}

// createAction posts records wrapped under the plural key and returns the
// created records.
func createAction[T Model](ctx context.Context, e *Endpoint, records ...interface{}) ([]T, error) {
	env, err := call(ctx, e, MethodPost, "", Params{e.resource.Plural: records})
	if err != nil {
		return nil, err
	}

	collection, err := collect[T](env, e.resource)
	if err != nil {
		return nil, err
	}

	return collection.Entries, nil
}

func updateAction[T Model](ctx context.Context, e *Endpoint, id int64, request interface{}) (T, error) {
	var zero T

	params, err := toParams(request)
	if err != nil {
		return zero, err
	}

	env, err := call(ctx, e, MethodPut, idPath(id), params)
	if err != nil {
		return zero, err
	}

	return hydrate[T](env, e.resource, env.Body)
}

func deletedAction[T Model](ctx context.Context, e *Endpoint, params Params) (*Collection[T], error) {
	return listAction[T](ctx, e, "/deleted", params)
}

func searchAction[T Model](ctx context.Context, e *Endpoint, query string, params Params) (*Collection[T], error) {
	if query == "" {
		return nil, errors.Wrap(ErrInvalidParam, "search query is empty")
	}

	merged := Params{}
	for key, value := range params {
		merged[key] = value
	}

	merged["q"] = query

	return listAction[T](ctx, e, "/search", merged)
}

func destroyAction(ctx context.Context, e *Endpoint, id int64) error {
	_, err := call(ctx, e, MethodDelete, idPath(id), nil)

	return err
}

func idPath(id int64) string {
	return "/" + strconv.FormatInt(id, 10)
}

// toParams flattens a request struct into Params.
func toParams(request interface{}) (Params, error) {
	if request == nil {
		return nil, nil
	}

	if params, ok := request.(Params); ok {
		return params, nil
	}

	data, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}

	var params Params

	err = json.Unmarshal(data, &params)
	if err != nil {
		return nil, errors.Wrap(err, "request must encode as an object")
	}

	return params, nil
}
