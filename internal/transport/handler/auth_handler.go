package handler

import (
	"context"
	"net/http"

	"github.com/niklvrr/mentorq/internal/transport/dto/request"
	"github.com/niklvrr/mentorq/internal/transport/dto/response"
	"go.uber.org/zap"
)

type AuthService interface {
	Token(ctx context.Context, req *request.TokenRequest) (*response.TokenResponse, error)
	Refresh(ctx context.Context, req *request.RefreshRequest) (*response.TokenResponse, error)
}

type AuthHandler struct {
	svc AuthService
	log *zap.Logger
}

func NewAuthHandler(svc AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		svc: svc,
		log: log,
	}
}

func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req request.TokenRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.svc.Token(r.Context(), &req)
	if err != nil {
		h.log.Warn("token exchange failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.svc.Refresh(r.Context(), &req)
	if err != nil {
		h.log.Warn("token refresh failed", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
