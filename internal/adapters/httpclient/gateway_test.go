// internal/adapters/httpclient/gateway_test.go
package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinkleshop/shopapp-orders/internal/domain"
	"github.com/twinkleshop/shopapp-orders/pkg/auth"
)

func storeWithToken(t *testing.T) *auth.TokenStore {
	t.Helper()
	store := auth.NewTokenStore()
	token, err := auth.GenerateToken([]byte("secret"), "0909090909", domain.RoleAdmin, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.SetCredential(auth.Credential{AccessToken: token, TokenType: "Bearer"}))
	return store
}

func TestGateway_ListByStatusAttachesBearer(t *testing.T) {
	store := storeWithToken(t)
	cred, _ := store.Credential()

	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode([]orderDTO{{
			ID:        42,
			Status:    "pending",
			OrderDate: time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC),
			Items:     []lineItemDTO{{ProductID: 3, Quantity: 2, Price: 120}},
		}})
	}))
	defer srv.Close()

	gw := NewGateway(srv.URL, store, zerolog.Nop())
	orders, err := gw.ListByStatus(context.Background(), domain.StatusPending)
	require.NoError(t, err)

	assert.Equal(t, "Bearer "+cred.AccessToken, gotAuth)
	assert.Equal(t, "/api/v1/orders/status/pending", gotPath)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(42), orders[0].ID)
	assert.Equal(t, domain.StatusPending, orders[0].Status)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, int64(2), orders[0].Items[0].Quantity)
}

func TestGateway_ApplyTransition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/orders/42/status", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "shipping", body["status"])

		_ = json.NewEncoder(w).Encode(orderDTO{
			ID:        42,
			Status:    "shipping",
			OrderDate: time.Now(),
		})
	}))
	defer srv.Close()

	gw := NewGateway(srv.URL, storeWithToken(t), zerolog.Nop())
	order, err := gw.ApplyTransition(context.Background(), 42, domain.StatusShipping)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipping, order.Status)
}

func TestGateway_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantErr error
	}{
		{name: "unauthorized", code: http.StatusUnauthorized, wantErr: domain.ErrAuth},
		{name: "forbidden", code: http.StatusForbidden, wantErr: domain.ErrAuth},
		{name: "conflict", code: http.StatusConflict, wantErr: domain.ErrConflict},
		{name: "not found", code: http.StatusNotFound, wantErr: domain.ErrNotFound},
		{name: "server error", code: http.StatusInternalServerError, wantErr: domain.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			gw := NewGateway(srv.URL, storeWithToken(t), zerolog.Nop())
			_, err := gw.ApplyTransition(context.Background(), 5, domain.StatusShipping)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGateway_UnauthorizedClearsCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := storeWithToken(t)
	gw := NewGateway(srv.URL, store, zerolog.Nop())
	_, err := gw.ListByStatus(context.Background(), domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrAuth)

	_, ok := store.Credential()
	assert.False(t, ok, "credential should be cleared after 401")
}

func TestGateway_ForbiddenKeepsCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	store := storeWithToken(t)
	gw := NewGateway(srv.URL, store, zerolog.Nop())
	_, err := gw.ListByStatus(context.Background(), domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrAuth)

	_, ok := store.Credential()
	assert.True(t, ok, "403 is a role problem, not a stale credential")
}

func TestGateway_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	gw := NewGateway(srv.URL, auth.NewTokenStore(), zerolog.Nop())
	_, err := gw.ListByStatus(context.Background(), domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestGateway_UnrecognizedStatusInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]orderDTO{{ID: 1, Status: "archived", OrderDate: time.Now()}})
	}))
	defer srv.Close()

	gw := NewGateway(srv.URL, storeWithToken(t), zerolog.Nop())
	_, err := gw.ListByStatus(context.Background(), domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrUnrecognizedStatus)
}

func TestGateway_LoginStoresCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/users/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "0909090909", body["phone_number"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token_type":   "Bearer",
			"access_token": "issued-token",
		})
	}))
	defer srv.Close()

	store := auth.NewTokenStore()
	gw := NewGateway(srv.URL, store, zerolog.Nop())
	cred, err := gw.Login(context.Background(), "0909090909", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", cred.AccessToken)

	stored, ok := store.Credential()
	assert.True(t, ok)
	assert.Equal(t, cred, stored)
}
