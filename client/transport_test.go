package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, onRedirect func()) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL, Options{OnRedirect: onRedirect})
	return c, srv
}

func TestTransport_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{},"time":"now"}`))
	}), nil)

	token := signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour))
	c.Store().SetCredential(token)

	_, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, gotAuth)
}

func TestTransport_ExemptPathsCarryNoCredential(t *testing.T) {
	var mu sync.Mutex
	auths := map[string]string{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths[r.URL.Path] = r.Header.Get("Authorization")
		mu.Unlock()
		w.Write([]byte(`{"data":{"access_token":"x"},"time":"now"}`))
	}), nil)

	c.Store().SetCredential(signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour)))

	_, err := c.Login(context.Background(), "a@b.c", "password123")
	require.NoError(t, err)
	require.NoError(t, c.ForgotPassword(context.Background(), "a@b.c"))
	require.NoError(t, c.ResetPassword(context.Background(), "tok", "newpassword1", "newpassword1"))

	assert.Empty(t, auths["/api/auth/login"])
	assert.Empty(t, auths["/api/auth/forgot-password"])
	assert.Empty(t, auths["/api/auth/reset-password"])
}

func TestTransport_RejectionClearsCredentialAndRedirectsOnce(t *testing.T) {
	var redirects atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"unauthorized","message":"invalid or expired token"},"time":"now"}`))
	}), func() { redirects.Add(1) })

	c.Store().SetCredential(signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour)))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Profile(context.Background())
			var apiErr *APIError
			if assert.ErrorAs(t, err, &apiErr) {
				assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), redirects.Load())
	_, ok := c.Store().CurrentCredential()
	assert.False(t, ok)
}

func TestTransport_FailedLoginLeavesStoredCredentialAlone(t *testing.T) {
	var redirects atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"unauthorized","message":"invalid credentials"},"time":"now"}`))
	}), func() { redirects.Add(1) })

	token := signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour))
	c.Store().SetCredential(token)

	_, err := c.Login(context.Background(), "a@b.c", "wrong-password")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	got, ok := c.Store().CurrentCredential()
	assert.True(t, ok)
	assert.Equal(t, token, got)
	assert.Equal(t, int32(0), redirects.Load())
}

func TestTransport_ZeroValueSendsBareRequests(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	httpClient := &http.Client{Transport: &Transport{}}
	resp, err := httpClient.Get(srv.URL + "/api/profile/me")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, gotAuth)
}

func TestTransport_ForbiddenTreatedLikeUnauthorized(t *testing.T) {
	var redirects atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":"forbidden","message":"role not permitted for this resource"},"time":"now"}`))
	}), func() { redirects.Add(1) })

	c.Store().SetCredential(signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour)))

	_, err := c.Profile(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "forbidden", apiErr.Code)

	assert.Equal(t, int32(1), redirects.Load())
	_, ok := c.Store().CurrentCredential()
	assert.False(t, ok)
}

func TestTransport_FreshCredentialRearmsLatch(t *testing.T) {
	var redirects atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"unauthorized","message":"nope"},"time":"now"}`))
	}), func() { redirects.Add(1) })

	c.Store().SetCredential(signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour)))
	_, _ = c.Profile(context.Background())
	assert.Equal(t, int32(1), redirects.Load())

	// A repeat rejection under the same epoch stays latched.
	_, _ = c.Profile(context.Background())
	assert.Equal(t, int32(1), redirects.Load())

	// Logging in again re-arms the latch.
	c.Store().SetCredential(signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour)))
	_, _ = c.Profile(context.Background())
	assert.Equal(t, int32(2), redirects.Load())
}

func TestTransport_NoRetryOnRejection(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"unauthorized","message":"nope"},"time":"now"}`))
	}), nil)

	c.Store().SetCredential(signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour)))
	_, err := c.Profile(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransport_DoesNotMutateRequest(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{},"time":"now"}`))
	}), nil)
	c.Store().SetCredential(signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour)))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.baseURL+"/api/profile/me", nil)
	require.NoError(t, err)

	resp, err := c.http.Do(req)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestClient_LoginStoresCredential(t *testing.T) {
	token := signedToken(t, 7, RoleApprover, nil, time.Now().Add(time.Hour))
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"access_token":"` + token + `","token_type":"Bearer","role":"approver"},"time":"now"}`))
	}), nil)

	res, err := c.Login(context.Background(), "a@b.c", "password123")
	require.NoError(t, err)
	assert.Equal(t, RoleApprover, res.Role)

	assert.True(t, c.Store().IsValid())
	assert.Equal(t, RoleApprover, c.Store().Role())
}

func TestClient_LogoutClearsCredential(t *testing.T) {
	c := New("http://localhost", Options{})
	c.Store().SetCredential(signedToken(t, 7, RoleEmployee, nil, time.Now().Add(time.Hour)))

	c.Logout()
	assert.False(t, c.Store().IsValid())
}
