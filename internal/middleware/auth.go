package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"todoSync/internal/logger"

	"go.uber.org/zap"
)

// TokenVerifier возвращает владельца токена или ошибку
type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

var authSchemes = []string{"Token ", "Bearer "}

// Authenticate принимает заголовок "Authorization: Token <t>" или "Bearer <t>"
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}

			token, ok := extractToken(header)
			if !ok {
				unauthorized(w, "Invalid token header.")
				return
			}

			owner, err := verifier.Authenticate(r.Context(), token)
			if err != nil {
				logger.Warn("HTTP: Токен отклонён",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				unauthorized(w, "Invalid token.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}

func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, OwnerKey, owner)
}

func GetOwner(ctx context.Context) string {
	if owner, ok := ctx.Value(OwnerKey).(string); ok {
		return owner
	}
	return ""
}

func extractToken(header string) (string, bool) {
	for _, scheme := range authSchemes {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			token := strings.TrimSpace(header[len(scheme):])
			return token, token != ""
		}
	}
	return "", false
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Token")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
