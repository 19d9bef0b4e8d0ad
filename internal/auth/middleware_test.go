package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	v := NewVerifier(secret)
	waiter, err := Sign(secret, Identity{UserID: 2, Role: RoleWaiter}, time.Hour)
	require.NoError(t, err)
	cashier, err := Sign(secret, Identity{UserID: 4, Role: RoleCashier}, time.Hour)
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, found := FromContext(r.Context())
		assert.True(t, found)
		_ = json.NewEncoder(w).Encode(id)
	})
	h := Authenticate(v)(RequireRole(RoleAdmin, RoleCashier)(ok))

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantErr  string
	}{
		{name: "no token", wantCode: http.StatusUnauthorized, wantErr: "NO_TOKEN"},
		{name: "bad token", header: "Bearer nope", wantCode: http.StatusUnauthorized, wantErr: "INVALID_TOKEN"},
		{name: "wrong role", header: "Bearer " + waiter, wantCode: http.StatusForbidden, wantErr: "FORBIDDEN"},
		{name: "allowed role", header: "Bearer " + cashier, wantCode: http.StatusOK},
		{name: "query token", query: "?token=" + cashier, wantCode: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantErr != "" {
				assert.Equal(t, tc.wantErr, errorCode(t, rec))
			}
		})
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	h := RequireRole(RoleAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NO_USER", errorCode(t, rec))
}
