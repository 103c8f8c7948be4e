package handler

import (
	"context"
	"net/http"

	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/transport/dto/request"
	"github.com/niklvrr/mentorq/internal/transport/dto/response"
	"go.uber.org/zap"
)

type FeedbackService interface {
	Create(ctx context.Context, p domain.Profile, req *request.CreateFeedbackRequest) (*response.FeedbackResponse, error)
	Get(ctx context.Context, p domain.Profile, req *request.GetFeedbackRequest) (*response.FeedbackResponse, error)
	List(ctx context.Context, p domain.Profile) ([]response.FeedbackResponse, error)
	Update(ctx context.Context, p domain.Profile, req *request.UpdateFeedbackRequest) (*response.FeedbackResponse, error)
}

type FeedbackHandler struct {
	svc FeedbackService
	log *zap.Logger
}

func NewFeedbackHandler(svc FeedbackService, log *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		svc: svc,
		log: log,
	}
}

func (h *FeedbackHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	h.log.Info("createFeedback request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	// Парсим json в модель CreateFeedbackRequest
	var req request.CreateFeedbackRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	// Валидация
	if err := validateRequest(&req); err != nil {
		h.log.Warn("validation failed", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	resp, err := h.svc.Create(r.Context(), p, &req)
	if err != nil {
		h.log.Warn("failed to create feedback",
			zap.Int64("ticket_id", req.TicketId),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.List(r.Context(), p)
	if err != nil {
		h.log.Error("failed to list feedback", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *FeedbackHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.svc.Get(r.Context(), p, &request.GetFeedbackRequest{TicketId: id})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *FeedbackHandler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req request.UpdateFeedbackRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	req.TicketId = id

	if err := validateRequest(&req); err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.svc.Update(r.Context(), p, &req)
	if err != nil {
		h.log.Warn("failed to update feedback",
			zap.Int64("ticket_id", id),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
