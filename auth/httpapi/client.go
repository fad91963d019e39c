// Package httpapi implements auth.Authenticator against the account service's
// JSON API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dashboard-session-core/auth"
	"dashboard-session-core/role"
)

const defaultTimeout = 10 * time.Second

// Client calls the account service over HTTP. Transport failures map to
// auth.ErrUnreachable; 401/403 map to auth.ErrInvalidCredentials.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient returns a Client for the account service at baseURL
// (e.g. https://accounts.example.com). httpc may be nil; a client with a
// 10s timeout is used.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), httpc: httpc}
}

type loginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type federatedLoginRequest struct {
	Role          string `json:"role"`
	ProviderToken string `json:"providerToken"`
	DisplayName   string `json:"displayName"`
}

type loginResponse struct {
	Token   string  `json:"token"`
	Profile profile `json:"profile"`
}

type verifyResponse struct {
	Profile profile `json:"profile"`
}

type profile struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Login authenticates email/password for r against POST /v1/auth/login.
func (c *Client) Login(ctx context.Context, r role.Role, email, password string) (*auth.LoginResult, error) {
	var resp loginResponse
	err := c.post(ctx, "/v1/auth/login", loginRequest{
		Role:     string(r),
		Email:    email,
		Password: password,
	}, "", &resp)
	if err != nil {
		return nil, err
	}
	return &auth.LoginResult{
		Token:   resp.Token,
		Profile: auth.Profile{Email: resp.Profile.Email, DisplayName: resp.Profile.DisplayName},
	}, nil
}

// LoginFederated exchanges a provider token via POST /v1/auth/federated.
func (c *Client) LoginFederated(ctx context.Context, r role.Role, providerToken, displayName string) (*auth.LoginResult, error) {
	var resp loginResponse
	err := c.post(ctx, "/v1/auth/federated", federatedLoginRequest{
		Role:          string(r),
		ProviderToken: providerToken,
		DisplayName:   displayName,
	}, "", &resp)
	if err != nil {
		return nil, err
	}
	return &auth.LoginResult{
		Token:   resp.Token,
		Profile: auth.Profile{Email: resp.Profile.Email, DisplayName: resp.Profile.DisplayName},
	}, nil
}

// Verify checks token for r via GET-semantics POST /v1/auth/verify with a
// Bearer header, returning the canonical profile.
func (c *Client) Verify(ctx context.Context, r role.Role, token string) (*auth.Profile, error) {
	var resp verifyResponse
	err := c.post(ctx, "/v1/auth/verify", map[string]string{"role": string(r)}, token, &resp)
	if err != nil {
		return nil, err
	}
	return &auth.Profile{Email: resp.Profile.Email, DisplayName: resp.Profile.DisplayName}, nil
}

func (c *Client) post(ctx context.Context, path string, body any, bearer string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrUnreachable, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return auth.ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: account service returned %s", auth.ErrUnreachable, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", auth.ErrUnreachable, err)
	}
	return nil
}
