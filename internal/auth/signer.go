package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrEmptyToken  = errors.New("API token is empty")
	ErrEmptySecret = errors.New("API secret is empty")
)

// Header names carrying the credentials.
const (
	TokenHeader     = "X-Token"
	SignatureHeader = "X-Signature"
)

// Signer computes request signatures: a base64 HMAC-SHA256 of
// "METHOD host/path?payload" keyed by the API secret. For GET and DELETE the
// payload is the sorted query string, for POST and PUT the JSON body.
type Signer struct {
	token  string
	secret []byte
}

// NewSigner creates a signer for a credential pair.
func NewSigner(token, secret string) (*Signer, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	if secret == "" {
		return nil, ErrEmptySecret
	}

	return &Signer{token: token, secret: []byte(secret)}, nil
}

// Token returns the API token.
func (s *Signer) Token() string {
	return s.token
}

// Sign returns the signature of one request.
func (s *Signer) Sign(method, host, path, payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(CanonicalString(method, host, path, payload)))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Apply sets the token and signature headers on req. body is the encoded
// request body, or nil for GET and DELETE.
func (s *Signer) Apply(req *http.Request, body []byte) {
	payload := req.URL.RawQuery
	if req.Method == http.MethodPost || req.Method == http.MethodPut {
		payload = string(body)
	}

	req.Header.Set(TokenHeader, s.token)
	req.Header.Set(SignatureHeader, s.Sign(req.Method, req.URL.Host, req.URL.EscapedPath(), payload))
}

// CanonicalString is the text that gets signed.
func CanonicalString(method, host, path, payload string) string {
	var b strings.Builder

	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	b.WriteString(host)
	b.WriteString(path)
	b.WriteByte('?')
	b.WriteString(payload)

	return b.String()
}
