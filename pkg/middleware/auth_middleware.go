package middleware

import (
	"context"
	"net/http"
	"strings"

	"auth-service/internal/token"
	"auth-service/pkg/response"

	"github.com/google/uuid"
)

type contextKey string

const (
	ContextUserID contextKey = "user_id"
	ContextPhone  contextKey = "phone"
	ContextRole   contextKey = "role"
)

type AuthMiddleware struct {
	tokens *token.Service
}

func NewAuthMiddleware(tokens *token.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// extractBearer pulls the token out of "Authorization: Bearer <token>".
func extractBearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return tok, tok != ""
}

// RequireAccess admits only valid, unexpired tokens whose type claim is
// "access". Temp and refresh tokens are rejected even when their signature
// checks out.
func (am *AuthMiddleware) RequireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := extractBearer(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Missing or malformed authorization header")
			return
		}

		claims, err := am.tokens.Validate(tok)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if claims.TokenType != token.TypeAccess {
			response.Error(w, http.StatusUnauthorized, "Invalid token type")
			return
		}
		if _, err := uuid.Parse(claims.Subject); err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid token payload")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserID, claims.Subject)
		ctx = context.WithValue(ctx, ContextPhone, claims.Phone)
		ctx = context.WithValue(ctx, ContextRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated subject set by RequireAccess.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	raw, ok := ctx.Value(ContextUserID).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
