package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/niklvrr/mentorq/internal/domain"
	"go.uber.org/zap"
)

type Authenticator interface {
	Authenticate(token string) (domain.Profile, error)
}

type profileCtxKey struct{}

func WithProfile(ctx context.Context, p domain.Profile) context.Context {
	return context.WithValue(ctx, profileCtxKey{}, p)
}

func ProfileFromContext(ctx context.Context) (domain.Profile, bool) {
	p, ok := ctx.Value(profileCtxKey{}).(domain.Profile)
	return p, ok
}

// Auth проверяет Bearer токен и кладет профиль в контекст запроса
func Auth(auth Authenticator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication credentials were not provided")
				return
			}

			profile, err := auth.Authenticate(token)
			if err != nil {
				logger.Debug("authentication failed",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "given token not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
