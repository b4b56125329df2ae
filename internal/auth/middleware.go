package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"trainingdesk/internal/api"
	"trainingdesk/pkg/config"
)

type ctxKey string

const ctxKeyStaff ctxKey = "staff"

func WithStaff(ctx context.Context, s *Staff) context.Context {
	return context.WithValue(ctx, ctxKeyStaff, s)
}

func StaffFromContext(ctx context.Context) *Staff {
	v := ctx.Value(ctxKeyStaff)
	if v == nil {
		return nil
	}
	s, _ := v.(*Staff)
	return s
}

// Middleware guards the admin API with staff bearer tokens.
//
// Contract:
// - Caller must send `Authorization: Bearer <JWT>` (HS256, issued by this app).
// - Outside prod, a bare `X-Staff-User` header is accepted instead so local
//   testing doesn't need a token round-trip first.
func Middleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token := strings.TrimSpace(authz[7:])
				s, err := VerifyStaffToken(token, cfg.Auth.JWTSecret, time.Now())
				if err != nil {
					api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithStaff(r.Context(), s)))
				return
			}

			if cfg.AppEnv != "prod" {
				if user := strings.TrimSpace(r.Header.Get("X-Staff-User")); user != "" {
					s := &Staff{Subject: user, Name: user}
					next.ServeHTTP(w, r.WithContext(WithStaff(r.Context(), s)))
					return
				}
			}

			api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing credentials")
		})
	}
}
