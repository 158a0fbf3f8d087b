package tevo

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
)

// RawResponse is what the transport hands back for one round trip.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Envelope is the normalized form of a response. The Connection that resolved
// the request is attached as a typed field rather than merged into Body.
type Envelope struct {
	Headers       http.Header            `json:"headers"`
	Body          map[string]interface{} `json:"body"`
	StatusCode    int                    `json:"status_code"`
	ServerMessage string                 `json:"server_message"`
	Class         Classification         `json:"class"`

	Connection *Connection `json:"-"`
}

// IsSuccess reports whether the envelope carries a success status.
func (e *Envelope) IsSuccess() bool {
	return e.Class == ClassSuccess
}

// IsRedirect reports whether the envelope carries a redirect status.
func (e *Envelope) IsRedirect() bool {
	return e.Class == ClassRedirect
}

// IsApplicationError reports whether the server rejected the call.
func (e *Envelope) IsApplicationError() bool {
	return e.Class == ClassApplicationError
}

// RedirectTarget returns the path a redirect points to: the body "url" key
// first, then the Location header.
func (e *Envelope) RedirectTarget() (string, bool) {
	if target, ok := e.Body["url"].(string); ok && target != "" {
		return target, true
	}

	if location := e.Headers.Get("Location"); location != "" {
		return location, true
	}

	return "", false
}

// Decode re-encodes the body into v.
func (e *Envelope) Decode(v interface{}) error {
	data, err := json.Marshal(e.Body)
	if err != nil {
		return errors.Wrap(err, "encoding envelope body")
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return &DecodeError{StatusCode: e.StatusCode, Body: string(data), Err: err}
	}

	return nil
}

// naturalize decodes and classifies a raw response. It is pure: the same raw
// response always yields an equal envelope.
func naturalize(conn *Connection, raw *RawResponse) (*Envelope, error) {
	if raw == nil {
		return nil, errors.Wrap(ErrUnexpectedPayload, "nil response")
	}

	body, err := decodeBody(raw)
	if err != nil {
		return nil, err
	}

	status := LookupStatus(raw.StatusCode)

	headers := raw.Headers.Clone()
	if headers == nil {
		headers = http.Header{}
	}

	return &Envelope{
		Headers:       headers,
		Body:          body,
		StatusCode:    raw.StatusCode,
		ServerMessage: status.Message,
		Class:         status.Class,
		Connection:    conn,
	}, nil
}

func decodeBody(raw *RawResponse) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(raw.Body)
	if len(trimmed) == 0 {
		return map[string]interface{}{}, nil
	}

	var decoded interface{}

	err := json.Unmarshal(trimmed, &decoded)
	if err != nil {
		return nil, &DecodeError{StatusCode: raw.StatusCode, Body: string(raw.Body), Err: err}
	}

	switch value := decoded.(type) {
	case map[string]interface{}:
		return value, nil
	case nil:
		return map[string]interface{}{}, nil
	default:
		return nil, &DecodeError{
			StatusCode: raw.StatusCode,
			Body:       string(raw.Body),
			Err:        errors.Wrapf(ErrUnexpectedPayload, "expected an object, got %T", value),
		}
	}
}
