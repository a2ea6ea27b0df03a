package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuan-noorazman/browser-agent/apitoken"
	"github.com/hairizuan-noorazman/browser-agent/logger"
)

func TestRequireWriteScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		scope      string
		wantOK     bool
		wantStatus int
	}{
		{
			name:   "read_write scope passes",
			scope:  apitoken.ScopeReadWrite,
			wantOK: true,
		},
		{
			name:       "read_only scope returns 403",
			scope:      apitoken.ScopeReadOnly,
			wantOK:     false,
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "no scope in context defaults to read_write",
			scope:  "",
			wantOK: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/test", nil)
			if tc.scope != "" {
				ctx := context.WithValue(req.Context(), ScopeKey, tc.scope)
				req = req.WithContext(ctx)
			}
			w := httptest.NewRecorder()

			got := RequireWriteScope(w, req)
			if got != tc.wantOK {
				t.Errorf("RequireWriteScope() = %v, want %v", got, tc.wantOK)
			}
			if !tc.wantOK && w.Code != tc.wantStatus {
				t.Errorf("status code = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestWriteScopeMiddleware(t *testing.T) {
	t.Parallel()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		method     string
		scope      string
		wantStatus int
	}{
		{
			name:       "GET with read_only passes",
			method:     http.MethodGet,
			scope:      apitoken.ScopeReadOnly,
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with read_only is rejected",
			method:     http.MethodPost,
			scope:      apitoken.ScopeReadOnly,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with read_write passes",
			method:     http.MethodPost,
			scope:      apitoken.ScopeReadWrite,
			wantStatus: http.StatusOK,
		},
		{
			name:       "DELETE with read_only is rejected",
			method:     http.MethodDelete,
			scope:      apitoken.ScopeReadOnly,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tc.method, "/test", nil)
			ctx := context.WithValue(req.Context(), ScopeKey, tc.scope)
			req = req.WithContext(ctx)
			w := httptest.NewRecorder()

			WriteScopeMiddleware(okHandler).ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Errorf("status code = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	store := newStubTokenStore()
	middleware := NewAuthMiddleware(store, logger.NewTestLogger())

	var gotScope string
	protected := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotScope = GetScope(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	raw := store.issue(t, "ci", apitoken.ScopeReadOnly)

	t.Run("valid token passes with its scope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, apitoken.ScopeReadOnly, gotScope)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		unknown, _, _, err := apitoken.Generate()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", unknown))
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		revoked := store.issue(t, "revoked", apitoken.ScopeReadWrite)
		id, _, err := apitoken.Parse(revoked)
		require.NoError(t, err)
		require.NoError(t, store.Revoke(context.Background(), id))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+revoked)
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expired := store.issue(t, "expired", apitoken.ScopeReadWrite)
		id, _, err := apitoken.Parse(expired)
		require.NoError(t, err)
		store.tokens[id].ExpiresAt = time.Now().Add(-time.Hour)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
