package tevo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// maxChainDepth bounds parent chain walks so a cycle introduced through
// SetAttr cannot hang the caller.
const maxChainDepth = 64

// Options configure a new Endpoint.
type Options struct {
	// Parent is a *Connection or another endpoint. Required.
	Parent Parent
	// ID identifies a single record of the resource. Optional.
	ID string
	// Attributes holds any other options.
	Attributes *Attributes
}

// Endpoint is one addressable collection or record of the API. Concrete
// resources embed it and add typed operations.
//
// An Endpoint is not safe for concurrent mutation through SetAttr; requests
// on an unchanged endpoint may run concurrently.
type Endpoint struct {
	resource Resource
	parent   Parent
	id       string
	attrs    *Attributes
}

// Requester issues a request and normalizes the response.
type Requester interface {
	Request(ctx context.Context, method Method, path string, params Params) (*Envelope, *APIError, error)
}

// ResponseHandler turns a successful envelope into a caller type.
type ResponseHandler[T any] func(env *Envelope) (T, error)

type linked interface {
	Parent() Parent
}

type pathed interface {
	BasePath() string
	ID() string
}

// NewEndpoint validates opts and creates an endpoint for res. It fails with an
// *EndpointConfigurationError when the options are missing or the parent chain
// does not reach a Connection.
func NewEndpoint(res Resource, opts *Options) (*Endpoint, error) {
	if res.Plural == "" {
		return nil, configError(res.Type, "resource has no path segment", ErrResourceRequired)
	}

	if opts == nil {
		return nil, configError(res.Type, "options are required", ErrOptionsRequired)
	}

	if opts.Parent == nil {
		return nil, configError(res.Type, "parent is required", ErrParentRequired)
	}

	_, err := resolveConnection(opts.Parent)
	if err != nil {
		return nil, configError(res.Type, "parent chain does not reach a connection", err)
	}

	attrs := NewAttributes()
	if opts.Attributes != nil {
		attrs = opts.Attributes.Clone()
	}

	return &Endpoint{
		resource: res,
		parent:   opts.Parent,
		id:       opts.ID,
		attrs:    attrs,
	}, nil
}

// newChild builds an endpoint under a parent already known to be valid.
func newChild(res Resource, parent Parent, id string) *Endpoint {
	return &Endpoint{
		resource: res,
		parent:   parent,
		id:       id,
		attrs:    NewAttributes(),
	}
}

func resolveConnection(p Parent) (*Connection, error) {
	for i := 0; i < maxChainDepth; i++ {
		if p == nil {
			return nil, ErrNoConnection
		}

		link, ok := p.(linked)
		if !ok {
			conn, err := p.Connection()
			if err != nil {
				return nil, err
			}

			if conn == nil {
				return nil, ErrNoConnection
			}

			return conn, nil
		}

		p = link.Parent()
	}

	return nil, errors.Wrapf(ErrNoConnection, "chain deeper than %d", maxChainDepth)
}

// Resource returns the static identity of the endpoint type.
func (e *Endpoint) Resource() Resource {
	return e.resource
}

// EndpointName is the singular, lower-case name of the resource.
func (e *Endpoint) EndpointName() string {
	return e.resource.Singular
}

// Parent returns the endpoint's parent.
func (e *Endpoint) Parent() Parent {
	if e == nil {
		return nil
	}

	return e.parent
}

// ID returns the record id, or "" for a collection endpoint.
func (e *Endpoint) ID() string {
	return e.id
}

// Connection walks the parent chain to its root.
func (e *Endpoint) Connection() (*Connection, error) {
	if e == nil {
		return nil, ErrNoConnection
	}

	return resolveConnection(e.parent)
}

// Attr reads an option. "parent" and "id" map to the distinguished fields.
func (e *Endpoint) Attr(key string) (interface{}, bool) {
	switch key {
	case "parent":
		return e.parent, e.parent != nil
	case "id":
		return e.id, e.id != ""
	default:
		return e.attrs.Get(key)
	}
}

// SetAttr writes an option. Replacing the parent is validated the same way
// construction is and leaves the endpoint untouched on failure.
func (e *Endpoint) SetAttr(key string, value interface{}) error {
	switch key {
	case "parent":
		parent, ok := value.(Parent)
		if !ok || parent == nil {
			return configError(e.resource.Type, fmt.Sprintf("parent of type %T cannot own an endpoint", value), ErrParentRequired)
		}

		previous := e.parent
		e.parent = parent

		_, err := e.Connection()
		if err != nil {
			e.parent = previous

			return configError(e.resource.Type, "parent chain does not reach a connection", err)
		}
	case "id":
		if value == nil {
			e.id = ""
		} else {
			e.id = fmt.Sprint(value)
		}
	default:
		e.attrs.Set(key, value)
	}

	return nil
}

// Attributes returns a copy of the extra options.
func (e *Endpoint) Attributes() *Attributes {
	return e.attrs.Clone()
}

// BasePath resolves the resource path from the parent chain, e.g.
// "/clients/12/addresses". A parent without an id contributes only its own
// segment.
func (e *Endpoint) BasePath() string {
	segment := "/" + e.resource.Plural

	parent, ok := e.parent.(pathed)
	if !ok {
		return segment
	}

	prefix := parent.BasePath()
	if id := parent.ID(); id != "" {
		prefix += "/" + url.PathEscape(id)
	}

	return prefix + segment
}

// BuildRequest resolves the full path and delegates to the Connection. With
// buildPath false the path is used verbatim.
func (e *Endpoint) BuildRequest(method Method, path string, params Params, buildPath bool) (RequestHandle, error) {
	if !method.Valid() {
		return nil, e.unsupported(method)
	}

	conn, err := e.Connection()
	if err != nil {
		return nil, configError(e.resource.Type, "parent chain does not reach a connection", err)
	}

	fullPath := path
	if buildPath {
		fullPath = e.BasePath() + path
	}

	return conn.BuildRequest(method, fullPath, params), nil
}

// NaturalizeResponse decodes and classifies a raw response against the
// endpoint's connection.
func (e *Endpoint) NaturalizeResponse(raw *RawResponse) (*Envelope, error) {
	conn, err := e.Connection()
	if err != nil {
		return nil, configError(e.resource.Type, "parent chain does not reach a connection", err)
	}

	return naturalize(conn, raw)
}

// Request issues method against BasePath()+path, following redirects until a
// final outcome. Application errors are returned as the second value together
// with their envelope; the error value is reserved for calls that could not be
// completed. With a cache configured, successful GETs are stored and
// successful writes evict the cached reads of their path and its ancestors.
func (e *Endpoint) Request(ctx context.Context, method Method, path string, params Params) (*Envelope, *APIError, error) {
	if !method.Valid() {
		return nil, nil, e.unsupported(method)
	}

	conn, err := e.Connection()
	if err != nil {
		return nil, nil, configError(e.resource.Type, "parent chain does not reach a connection", err)
	}

	requestPath := e.BasePath() + path
	fullPath := requestPath

	cacheKey := ""
	if conn.cache != nil && method == MethodGet {
		cacheKey = conn.cache.GetCacheKey(string(method), requestPath, params)

		env, ok := conn.cachedEnvelope(ctx, cacheKey)
		if ok {
			conn.logDebug("Cache hit", map[string]interface{}{"path": fullPath})

			return env, nil, nil
		}
	}

	for hops := 0; ; hops++ {
		handle, err := e.BuildRequest(method, fullPath, params, false)
		if err != nil {
			return nil, nil, err
		}

		raw, err := issue(ctx, method, handle)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "%s %s", method, fullPath)
		}

		env, err := naturalize(conn, raw)
		if err != nil {
			return nil, nil, err
		}

		switch env.Class {
		case ClassRedirect:
			target, ok := env.RedirectTarget()
			if !ok {
				return nil, nil, errors.Wrapf(ErrRedirectWithoutTarget, "%s %s (status: %d)", method, fullPath, env.StatusCode)
			}

			target = conn.relativeTarget(target)

			if hops+1 > conn.maxRedirects {
				return nil, nil, &RedirectLoopError{Hops: conn.maxRedirects, Path: target}
			}

			conn.logDebug("Following redirect", map[string]interface{}{
				"from":   fullPath,
				"to":     target,
				"status": env.StatusCode,
				"hop":    hops + 1,
			})

			fullPath = target
		case ClassApplicationError:
			return env, newAPIError(env), nil
		default:
			if env.Class == ClassSuccess && conn.cache != nil {
				if method == MethodGet {
					conn.storeEnvelope(ctx, cacheKey, env)
				} else {
					conn.invalidate(ctx, requestPath, fullPath)
				}
			}

			return env, nil, nil
		}
	}
}

// MarshalJSON serializes the endpoint and its parent chain.
func (e *Endpoint) MarshalJSON() ([]byte, error) {
	var attrs *Attributes
	if e.attrs.Len() > 0 {
		attrs = e.attrs
	}

	return json.Marshal(struct {
		Resource   string      `json:"resource"`
		ID         string      `json:"id,omitempty"`
		Attributes *Attributes `json:"attributes,omitempty"`
		Parent     Parent      `json:"parent"`
	}{
		Resource:   e.resource.Plural,
		ID:         e.id,
		Attributes: attrs,
		Parent:     e.parent,
	})
}

func (e *Endpoint) unsupported(method Method) error {
	return configError(e.resource.Type, fmt.Sprintf("unsupported method %q", string(method)), ErrUnsupportedMethod)
}

// Do runs a request and applies handler to a successful envelope. Without a
// handler the envelope itself is returned, which requires T to be *Envelope.
func Do[T any](ctx context.Context, r Requester, method Method, path string, params Params, handler ResponseHandler[T]) (T, *APIError, error) {
	var zero T

	env, apiErr, err := r.Request(ctx, method, path, params)
	if err != nil {
		return zero, nil, err
	}

	if apiErr != nil {
		return zero, apiErr, nil
	}

	if handler == nil {
		result, ok := any(env).(T)
		if !ok {
			return zero, nil, errors.Wrapf(ErrUnexpectedPayload, "no response handler for %T", zero)
		}

		return result, nil, nil
	}

	result, err := handler(env)
	if err != nil {
		return zero, nil, err
	}

	return result, nil, nil
}

func issue(ctx context.Context, method Method, handle RequestHandle) (*RawResponse, error) {
	switch method {
	case MethodGet:
		return handle.Get(ctx)
	case MethodPost:
		return handle.Post(ctx)
	case MethodPut:
		return handle.Put(ctx)
	case MethodDelete:
		return handle.Delete(ctx)
	default:
		return nil, errors.Wrapf(ErrUnsupportedMethod, "%q", string(method))
	}
}

// relativeTarget turns a redirect target into a path under the API root.
func (c *Connection) relativeTarget(target string) string {
	if strings.HasPrefix(target, c.baseURL) {
		return ensureLeadingSlash(strings.TrimPrefix(target, c.baseURL))
	}

	parsed, err := url.Parse(target)
	if err == nil && parsed.IsAbs() {
		target = parsed.RequestURI()
	}

	versionPrefix := fmt.Sprintf("/v%d", c.apiVersion)
	if strings.HasPrefix(target, versionPrefix+"/") {
		target = strings.TrimPrefix(target, versionPrefix)
	}

	return ensureLeadingSlash(target)
}

func ensureLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}

	return "/" + path
}
