package client

import (
	"net/http"
	"sync"
)

// credentialExemptPaths never carry the stored credential: they exist to
// obtain or replace it, and a stale token on them can only cause spurious
// rejections.
var credentialExemptPaths = map[string]struct{}{
	"/api/auth/login":           {},
	"/api/auth/forgot-password": {},
	"/api/auth/reset-password":  {},
}

// Transport attaches the stored credential to outgoing requests and reacts
// to authentication rejections. It wraps a base http.RoundTripper; the
// zero base is http.DefaultTransport, and a nil Store sends requests
// through bare.
//
// When the server answers 401 or 403 on a credentialed path the credential
// is cleared and the redirect callback fires exactly once per credential
// epoch, no matter how many in-flight requests fail together. Setting a
// fresh credential re-arms the latch. Rejections on the exempt auth paths
// are left alone: a failed login attempt says nothing about the stored
// session. The rejected response is returned to the caller untouched; the
// transport never retries.
type Transport struct {
	Base       http.RoundTripper
	Store      *TokenStore
	OnRedirect func()

	mu         sync.Mutex
	firedEpoch uint64
	fired      bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.Store == nil {
		return base.RoundTrip(req)
	}

	// Per http.RoundTripper contract the request must not be mutated.
	out := req.Clone(req.Context())
	epoch := t.Store.currentEpoch()
	_, exempt := credentialExemptPaths[out.URL.Path]
	if !exempt {
		if tok, ok := t.Store.CurrentCredential(); ok && tok != "" {
			out.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if !exempt && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		t.Store.ClearCredential()
		t.redirectOnce(epoch)
	}
	return resp, nil
}

// redirectOnce fires the callback for the epoch the failed request was
// sent under, at most once. Requests from an older epoch cannot re-fire a
// latch a newer login has re-armed.
func (t *Transport) redirectOnce(epoch uint64) {
	t.mu.Lock()
	if t.fired && epoch <= t.firedEpoch {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.firedEpoch = epoch
	cb := t.OnRedirect
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
}
