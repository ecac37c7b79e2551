package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dk2904/aircraft-factory/internal/auth"
	"github.com/dk2904/aircraft-factory/internal/core/domain"
	"github.com/dk2904/aircraft-factory/internal/port"
)

const userCacheTTL = time.Hour

// RequestID tags every request with an id for log correlation,
// honoring one supplied by the caller.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

// AuthMiddleware resolves the bearer token to a user and passes it to
// the wrapped handler through the request context. User snapshots are
// cached; a cache failure falls back to the store.
type AuthMiddleware struct {
	store  port.Store
	cache  port.Cache
	tokens *auth.TokenManager
	log    *logrus.Logger
}

func NewAuthMiddleware(store port.Store, cache port.Cache, tokens *auth.TokenManager, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{store: store, cache: cache, tokens: tokens, log: log}
}

func (m *AuthMiddleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Authentication token is required."})
			return
		}

		claims, err := m.tokens.Validate(strings.TrimPrefix(header, prefix))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Invalid or expired token."})
			return
		}

		user, err := m.loadUser(r.Context(), claims.Username)
		if err != nil {
			m.log.WithFields(logrus.Fields{
				"request_id": requestIDFromContext(r.Context()),
				"username":   claims.Username,
			}).Errorf("load user: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Status: false, Error: "internal error"})
			return
		}
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Status: false, Error: "Invalid or expired token."})
			return
		}

		next(w, r.WithContext(withUser(r.Context(), user)))
	}
}

func (m *AuthMiddleware) loadUser(ctx context.Context, username string) (*domain.User, error) {
	if m.cache != nil {
		if user, ok, err := m.cache.GetUser(ctx, username); err == nil && ok {
			return user, nil
		}
	}
	user, err := m.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user != nil && m.cache != nil {
		m.cache.SetUser(ctx, user, userCacheTTL)
	}
	return user, nil
}
