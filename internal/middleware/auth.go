package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// TerminalIDKey is the context key for the authenticated terminal ID.
const TerminalIDKey contextKey = "terminal_id"

// GetTerminalID extracts the terminal ID from the context.
// Returns empty string if not found.
func GetTerminalID(ctx context.Context) string {
	id, _ := ctx.Value(TerminalIDKey).(string)
	return id
}

// WithTerminalID returns ctx carrying id.
func WithTerminalID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TerminalIDKey, id)
}

// BearerToken parses an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireTerminal returns an interceptor that validates terminal tokens.
// It extracts the token from the Authorization header, validates it, and adds
// the terminal ID to the request context.
func RequireTerminal(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			tokenString, err := BearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithTerminalID(ctx, claims.TerminalID), req)
		}
	}
}

// RequireTerminalHTTP is the plain HTTP form of RequireTerminal. Browsers
// cannot set headers on a websocket upgrade, so a token query parameter is
// accepted as well.
func RequireTerminalHTTP(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.URL.Query().Get("token")
			if tokenString == "" {
				var err error
				tokenString, err = BearerToken(r.Header.Get("Authorization"))
				if err != nil {
					http.Error(w, err.Error(), http.StatusUnauthorized)
					return
				}
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTerminalID(r.Context(), claims.TerminalID)))
		})
	}
}
