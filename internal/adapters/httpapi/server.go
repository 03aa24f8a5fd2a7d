// internal/adapters/httpapi/server.go
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/twinkleshop/shopapp-orders/internal/domain"
	"github.com/twinkleshop/shopapp-orders/internal/ports"
	"github.com/twinkleshop/shopapp-orders/pkg/auth"
)

type Server struct {
	Router *mux.Router

	repo     ports.OrderRepositoryPort
	cache    ports.CachePort
	log      zerolog.Logger
	secret   []byte
	tokenTTL time.Duration
}

func NewServer(repo ports.OrderRepositoryPort, cache ports.CachePort, secret []byte, tokenTTL time.Duration, log zerolog.Logger) *Server {
	s := &Server{
		Router:   mux.NewRouter(),
		repo:     repo,
		cache:    cache,
		log:      log,
		secret:   secret,
		tokenTTL: tokenTTL,
	}

	api := s.Router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/users/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/users/login", s.handleLogin).Methods(http.MethodPost)

	api.Handle("/orders", s.requireAuth(false, s.handleCreateOrder)).Methods(http.MethodPost)
	api.Handle("/orders/history/{phone}", s.requireAuth(false, s.handleHistory)).Methods(http.MethodGet)
	api.Handle("/orders/status/{status}", s.requireAuth(true, s.handleListByStatus)).Methods(http.MethodGet)
	api.Handle("/orders/{id:[0-9]+}/status", s.requireAuth(true, s.handleUpdateStatus)).Methods(http.MethodPatch)

	s.Router.Use(s.logRequests)
	return s
}

type claimsKey struct{}

// requireAuth validates the bearer credential, optionally requiring the
// admin role, and stores the claims in the request context.
func (s *Server) requireAuth(adminOnly bool, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.ValidateToken(s.secret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if claims.Expired(time.Now()) {
			writeError(w, http.StatusUnauthorized, "token expired")
			return
		}
		if adminOnly && !claims.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func statusCacheKey(status domain.OrderStatus) string {
	return "orders:status:" + status.String()
}

const ordersCachePrefix = "orders:"
