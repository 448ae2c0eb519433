package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx answer from the service, decoded from its error
// envelope.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Client talks to the visitor pass service. Every request goes through the
// credential Transport, so callers get token attachment and rejection
// handling without thinking about it.
type Client struct {
	baseURL string
	http    *http.Client
	store   *TokenStore
}

// Options tunes a Client. Zero values are usable defaults.
type Options struct {
	// Vault persists the credential; nil keeps it in memory.
	Vault CredentialVault
	// OnRedirect fires when the service rejects the credential and the
	// caller should return to the login view.
	OnRedirect func()
	// Base is the underlying transport; nil means http.DefaultTransport.
	Base http.RoundTripper
	// Timeout bounds each request; zero means 30 seconds.
	Timeout time.Duration
}

func New(baseURL string, opts Options) *Client {
	store := NewTokenStore(opts.Vault)
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		http: &http.Client{
			Timeout: timeout,
			Transport: &Transport{
				Base:       opts.Base,
				Store:      store,
				OnRedirect: opts.OnRedirect,
			},
		},
	}
}

// Store exposes the token store for session inspection and route guards.
func (c *Client) Store() *TokenStore {
	return c.store
}

// LoginResult is the successful answer to Login.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        Role      `json:"role"`
	TenantID    *int64    `json:"tenant_id,omitempty"`
}

// Login authenticates and stores the returned token as the new credential.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.store.SetCredential(out.AccessToken)
	return &out, nil
}

// Logout drops the stored credential. The server keeps no session state,
// so there is nothing to revoke remotely.
func (c *Client) Logout() {
	c.store.ClearCredential()
}

// ForgotPassword asks for a reset link. The service answers the same way
// whether or not the account exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{
		"email": email,
	}, nil)
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token":            token,
		"new_password":     newPassword,
		"confirm_password": confirmPassword,
	}, nil)
}

// Profile is the signed-in user's account record.
type Profile struct {
	ID       int64  `json:"id"`
	UniqueID string `json:"unique_id"`
	TenantID *int64 `json:"tenant_id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
	Address  string `json:"address"`
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserStats summarizes the passes the signed-in user has created.
type UserStats struct {
	TotalPasses    int64 `json:"total_passes"`
	PendingPasses  int64 `json:"pending_passes"`
	ApprovedPasses int64 `json:"approved_passes"`
	RejectedPasses int64 `json:"rejected_passes"`
}

func (c *Client) UserStats(ctx context.Context) (*UserStats, error) {
	var out UserStats
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/user-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VisitorPass mirrors a pass record as returned by the service.
type VisitorPass struct {
	ID              int64     `json:"id"`
	TenantID        int64     `json:"tenant_id"`
	VisitorName     string    `json:"visitor_name"`
	VisitorEmail    string    `json:"visitor_email"`
	VisitorPhone    string    `json:"visitor_phone"`
	Purpose         string    `json:"purpose"`
	VisitAt         time.Time `json:"visit_at"`
	PassCode        string    `json:"pass_code"`
	Status          string    `json:"status"`
	CreatedByName   string    `json:"created_by_name"`
	ApprovedByName  string    `json:"approved_by_name,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PassPage is one limit/offset window of a pass listing.
type PassPage struct {
	Items      []VisitorPass `json:"items"`
	TotalCount int64         `json:"total_count"`
	Offset     int           `json:"offset"`
	Limit      int           `json:"limit"`
}

// CreatePassRequest carries the fields for a new visitor pass.
type CreatePassRequest struct {
	VisitorName  string    `json:"visitor_name"`
	VisitorEmail string    `json:"visitor_email"`
	VisitorPhone string    `json:"visitor_phone"`
	Purpose      string    `json:"purpose"`
	VisitAt      time.Time `json:"visit_at"`
}

// CreatePass submits a new pass under the given tenant. The pass starts
// out pending review.
func (c *Client) CreatePass(ctx context.Context, tenantID int64, req CreatePassRequest) (*VisitorPass, error) {
	var out VisitorPass
	path := fmt.Sprintf("/api/tenants/%d/passes", tenantID)
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PassHistory lists the signed-in user's own passes, newest first.
func (c *Client) PassHistory(ctx context.Context, tenantID int64, offset, limit int) (*PassPage, error) {
	var out PassPage
	path := fmt.Sprintf("/api/tenants/%d/passes/history?offset=%d&limit=%d", tenantID, offset, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Code: "unknown", Message: resp.Status}
		}
		return err
	}

	if resp.StatusCode >= 400 {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Code: "unknown", Message: resp.Status}
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
