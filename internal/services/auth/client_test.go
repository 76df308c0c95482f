package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
)

func TestLoginReturnsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["username"] != "operator" || body["password"] != "secret" {
			t.Fatalf("unexpected credentials %v", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"access":  "acc",
			"refresh": "ref",
			"user":    map[string]any{"id": 7, "username": "operator", "role": "operator", "can_analyze": true},
		})
	}))
	defer srv.Close()

	session, err := NewClient(srv.URL+"/api/", srv.Client(), nil).Login(context.Background(), "operator", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	want := Session{
		Tokens: TokenPair{Access: "acc", Refresh: "ref"},
		User:   User{ID: 7, Username: "operator", Role: "operator", CanAnalyze: true},
	}
	if diff := cmp.Diff(want, session); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "bad credentials"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client(), nil).Login(context.Background(), "operator", "wrong")
	if !apperrors.HasCode(err, apperrors.CodeLoginFailed) {
		t.Fatalf("expected LOGIN_FAILED, got %v", err)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	_, err := NewClient("http://unused", nil, nil).Login(context.Background(), " ", "")
	if !apperrors.HasCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name     string
		response map[string]any
		want     TokenPair
	}{
		{name: "rotated", response: map[string]any{"access": "new-acc", "refresh": "new-ref"}, want: TokenPair{Access: "new-acc", Refresh: "new-ref"}},
		{name: "not rotated", response: map[string]any{"access": "new-acc"}, want: TokenPair{Access: "new-acc", Refresh: "old-ref"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/token/refresh/" {
					t.Fatalf("unexpected path %s", r.URL.Path)
				}
				var body map[string]string
				_ = json.NewDecoder(r.Body).Decode(&body)
				if body["refresh"] != "old-ref" {
					t.Fatalf("refresh body = %v", body)
				}
				writeJSON(w, http.StatusOK, tt.response)
			}))
			defer srv.Close()

			got, err := NewClient(srv.URL, srv.Client(), nil).Refresh(context.Background(), "old-ref")
			if err != nil {
				t.Fatalf("refresh: %v", err)
			}
			if got != tt.want {
				t.Fatalf("refresh = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRefreshErrors(t *testing.T) {
	client := NewClient("http://unused", nil, nil)
	if _, err := client.Refresh(context.Background(), ""); !apperrors.HasCode(err, apperrors.CodeNoRefreshToken) {
		t.Fatalf("expected NO_REFRESH_TOKEN, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client(), nil).Refresh(context.Background(), "expired")
	if !apperrors.HasCode(err, apperrors.CodeRefreshFailed) {
		t.Fatalf("expected REFRESH_FAILED, got %v", err)
	}
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "invalid"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": map[string]any{"id": 1, "username": "admin", "is_admin": true}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil)
	user, err := client.Me(context.Background(), "good")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.Username != "admin" || !user.IsAdmin {
		t.Fatalf("user = %+v", user)
	}

	if _, err := client.Me(context.Background(), "bad"); !apperrors.HasCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected UNAUTHENTICATED, got %v", err)
	}
}

func TestLogoutSendsBearerAndRefresh(t *testing.T) {
	var gotAuth, gotRefresh string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotRefresh = body["refresh"]
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	err := NewClient(srv.URL, srv.Client(), nil).Logout(context.Background(), TokenPair{Access: "acc", Refresh: "ref"})
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if gotAuth != "Bearer acc" || gotRefresh != "ref" {
		t.Fatalf("auth = %q, refresh = %q", gotAuth, gotRefresh)
	}
}

func TestTransportErrorIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil, nil).Login(context.Background(), "a", "b")
	if !apperrors.HasCode(err, apperrors.CodeUpstreamUnavailable) {
		t.Fatalf("expected UPSTREAM_UNAVAILABLE, got %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
