package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/transport/middleware"
	"github.com/stretchr/testify/require"
)

var (
	hacker = domain.Profile{Email: "hacker@example.com"}
	boss   = domain.Profile{Email: "boss@example.com", Roles: domain.Roles{Director: true}}
)

// authed кладет профиль в контекст, как это делает middleware.Auth
func authed(r *http.Request, p domain.Profile) *http.Request {
	return r.WithContext(middleware.WithProfile(r.Context(), p))
}

func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, body []byte) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error
}
