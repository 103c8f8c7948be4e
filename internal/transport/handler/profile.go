package handler

import (
	"net/http"

	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/transport/middleware"
	"github.com/niklvrr/mentorq/internal/usecase/service"
)

// requireProfile достает профиль, который положил middleware.Auth
func requireProfile(w http.ResponseWriter, r *http.Request) (domain.Profile, bool) {
	p, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		statusCode, errResp := HandleError(service.ErrUnauthenticated)
		WriteError(w, statusCode, errResp)
		return domain.Profile{}, false
	}
	return p, true
}
