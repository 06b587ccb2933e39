package api

import "net/http"

// TokenSource supplies the bearer credential for outgoing requests. An
// empty string means no credential.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns itself.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (bt *bearerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if bt.tokens != nil {
		if token := bt.tokens.Token(); token != "" {
			rCopy := r.Clone(r.Context())
			rCopy.Header.Set("Authorization", "Bearer "+token)
			r = rCopy
		}
	}
	return bt.base.RoundTrip(r)
}
