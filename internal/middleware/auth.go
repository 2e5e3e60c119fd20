package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hostledger/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// CallerKey is the context key for storing the authenticated caller's subject.
const CallerKey contextKey = "caller"

// GetCaller extracts the caller subject from the context.
// Returns empty string if not found.
func GetCaller(ctx context.Context) string {
	caller, _ := ctx.Value(CallerKey).(string)
	return caller
}

// Policy maps procedures to the role a caller needs to invoke them.
// Procedures not listed are open.
type Policy map[string]string

// RequireAuth returns an interceptor enforcing policy. Protected procedures
// need a valid bearer token carrying the listed role. On open procedures a
// valid token is still recorded in the context, an invalid one is ignored.
func RequireAuth(jwtManager *auth.JWTManager, policy Policy) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			role, protected := policy[req.Spec().Procedure]

			claims, err := bearerClaims(jwtManager, req.Header().Get("Authorization"))
			if !protected {
				if err == nil {
					ctx = context.WithValue(ctx, CallerKey, claims.Subject)
				}
				return next(ctx, req)
			}

			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			if !claims.HasRole(role) {
				return nil, connect.NewError(connect.CodePermissionDenied, auth.ErrForbidden)
			}

			ctx = context.WithValue(ctx, CallerKey, claims.Subject)
			return next(ctx, req)
		}
	}
}

func bearerClaims(jwtManager *auth.JWTManager, header string) (*auth.Claims, error) {
	if header == "" {
		return nil, auth.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, auth.ErrInvalidToken
	}
	return jwtManager.Validate(token)
}
