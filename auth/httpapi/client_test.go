package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dashboard-session-core/auth"
	"dashboard-session-core/role"
)

func TestClient_Login_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/auth/login" {
			t.Errorf("path = %s, want /v1/auth/login", r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["role"] != "business" || req["email"] != "owner@example.com" {
			t.Errorf("unexpected request body: %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token":   "tok-b",
			"profile": map[string]string{"email": "owner@example.com", "displayName": "Owner"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	res, err := c.Login(context.Background(), role.Business, "owner@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "tok-b" {
		t.Errorf("token = %q, want %q", res.Token, "tok-b")
	}
	if res.Profile.DisplayName != "Owner" {
		t.Errorf("displayName = %q, want %q", res.Profile.DisplayName, "Owner")
	}
}

func TestClient_Login_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Login(context.Background(), role.Individual, "a@example.com", "wrong")
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestClient_Login_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, nil)
	_, err := c.Login(context.Background(), role.Individual, "a@example.com", "pw")
	if !errors.Is(err, auth.ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}

func TestClient_Login_ServerError_IsUnreachableNotAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Login(context.Background(), role.Individual, "a@example.com", "pw")
	if !errors.Is(err, auth.ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
	if errors.Is(err, auth.ErrInvalidCredentials) {
		t.Error("a 5xx must not read as invalid credentials")
	}
}

func TestClient_Verify_SendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-a" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer tok-a")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"profile": map[string]string{"email": "admin@example.com", "displayName": "Admin"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	p, err := c.Verify(context.Background(), role.Admin, "tok-a")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.Email != "admin@example.com" {
		t.Errorf("email = %q, want %q", p.Email, "admin@example.com")
	}
}

func TestClient_LoginFederated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/auth/federated" {
			t.Errorf("path = %s, want /v1/auth/federated", r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["providerToken"] != "idp-tok" {
			t.Errorf("providerToken = %q, want %q", req["providerToken"], "idp-tok")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token":   "tok-fed",
			"profile": map[string]string{"email": "admin@example.com", "displayName": "Root"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	res, err := c.LoginFederated(context.Background(), role.Admin, "idp-tok", "Root")
	if err != nil {
		t.Fatalf("LoginFederated: %v", err)
	}
	if res.Token != "tok-fed" {
		t.Errorf("token = %q, want %q", res.Token, "tok-fed")
	}
}
