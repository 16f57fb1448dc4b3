package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"Snapgram/internal/api/handlers"
)

// Context keys for storing user information
type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	JWTClaimsKey contextKey = "jwt_claims"
)

// ErrMissingSubject is returned for a validly signed token without a sub claim
var ErrMissingSubject = errors.New("token has no subject")

// AuthMiddleware is what the route registrations need from an authenticator
type AuthMiddleware interface {
	RequireAuth(next http.Handler) http.Handler
	OptionalAuth(next http.Handler) http.Handler
}

// JWTAuthMiddleware authenticates HS256 bearer tokens issued by the
// account service. The sub claim is the user ID.
type JWTAuthMiddleware struct {
	logger *slog.Logger
	secret []byte
}

// NewJWTAuthMiddleware creates an auth middleware verifying with secret
func NewJWTAuthMiddleware(secret string, logger *slog.Logger) *JWTAuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &JWTAuthMiddleware{secret: []byte(secret), logger: logger}
}

// RequireAuth rejects requests without a valid bearer token with 401.
// On success the user ID and claims are injected into the context.
func (m *JWTAuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeAuthError(w, "Missing or malformed Authorization header. Expected: Bearer <token>")
			return
		}

		claims, err := m.verify(token)
		if err != nil {
			m.logger.Info("auth failure",
				"ip", clientIP(r),
				"method", r.Method,
				"path", r.URL.Path,
				"error", err)
			writeAuthError(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// OptionalAuth loads the user if a valid token is present but never rejects.
// Reads use it to compute viewer state.
func (m *JWTAuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.verify(token)
		if err != nil {
			m.logger.Debug("optional auth failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (m *JWTAuthMiddleware) verify(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

func withClaims(ctx context.Context, claims *jwt.RegisteredClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
	return context.WithValue(ctx, JWTClaimsKey, claims)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// GetUserID returns the authenticated user's ID, or "" for anonymous requests
func GetUserID(r *http.Request) string {
	id, _ := r.Context().Value(UserIDKey).(string)
	return id
}

// GetJWTClaims returns nil for anonymous requests
func GetJWTClaims(r *http.Request) *jwt.RegisteredClaims {
	claims, _ := r.Context().Value(JWTClaimsKey).(*jwt.RegisteredClaims)
	return claims
}

// SetTestUserID sets the user ID in the context for testing purposes.
// This function should ONLY be used in tests to mock authenticated users.
func SetTestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func writeAuthError(w http.ResponseWriter, message string) {
	handlers.WriteError(w, http.StatusUnauthorized, "AuthenticationRequired", message)
}
