package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/Sizimon/grippendor/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// GuildIDKey is the context key for the guild the caller is scoped to.
	GuildIDKey contextKey = "guild_id"
	// UserIDKey is the context key for the authenticated user ID, if the token carries one.
	UserIDKey contextKey = "user_id"
)

// GetGuildID extracts the caller's guild from the context.
// Returns empty string if not found.
func GetGuildID(ctx context.Context) string {
	guildID, _ := ctx.Value(GuildIDKey).(string)
	return guildID
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// WithClaims returns ctx carrying the identity from claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	if info, ok := ctx.Value(callInfoKey).(*callInfo); ok {
		info.guildID = claims.GuildID
	}
	ctx = context.WithValue(ctx, GuildIDKey, claims.GuildID)
	return context.WithValue(ctx, UserIDKey, claims.UserID)
}

// RequireAuth returns a middleware that validates the bearer token and stores
// the guild and user it names in the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || tokenString == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithClaims(ctx, claims), req)
		}
	}
}
