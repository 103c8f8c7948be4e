package handler

import (
	"context"
	"net/http"

	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/transport/dto/request"
	"github.com/niklvrr/mentorq/internal/transport/dto/response"
	"go.uber.org/zap"
)

type TicketService interface {
	Create(ctx context.Context, p domain.Profile, req *request.CreateTicketRequest) (*response.TicketResponse, error)
	Get(ctx context.Context, p domain.Profile, req *request.GetTicketRequest) (*response.TicketResponse, error)
	List(ctx context.Context, p domain.Profile, req *request.ListTicketsRequest) ([]response.TicketResponse, error)
	Update(ctx context.Context, p domain.Profile, req *request.UpdateTicketRequest) (*response.TicketResponse, error)
	SlackDM(ctx context.Context, p domain.Profile, req *request.SlackDMRequest) (*response.SlackDMResponse, error)
}

type TicketHandler struct {
	svc TicketService
	log *zap.Logger
}

func NewTicketHandler(svc TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		svc: svc,
		log: log,
	}
}

func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	h.log.Info("createTicket request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	// Парсим json в модель CreateTicketRequest
	var req request.CreateTicketRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	// Валидация
	if err := validateRequest(&req); err != nil {
		h.log.Warn("validation failed", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	// Вызов сервиса
	resp, err := h.svc.Create(r.Context(), p, &req)
	if err != nil {
		h.log.Error("failed to create ticket",
			zap.String("email", p.Email),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	h.log.Info("ticket created", zap.Int64("ticket_id", resp.Id))
	writeJSON(w, http.StatusCreated, resp)
}

func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	req := request.ListTicketsRequest{Status: r.URL.Query().Get("status")}
	if err := validateRequest(&req); err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.svc.List(r.Context(), p, &req)
	if err != nil {
		h.log.Error("failed to list tickets", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	h.log.Debug("tickets listed", zap.Int("count", len(resp)))
	writeJSON(w, http.StatusOK, resp)
}

func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.svc.Get(r.Context(), p, &request.GetTicketRequest{TicketId: id})
	if err != nil {
		h.log.Warn("failed to get ticket",
			zap.Int64("ticket_id", id),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateTicket обслуживает PATCH и PUT, в обоих случаях меняются только переданные поля
func (h *TicketHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	h.log.Info("updateTicket request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req request.UpdateTicketRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	req.TicketId = id

	if err := validateRequest(&req); err != nil {
		h.log.Warn("validation failed", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	resp, err := h.svc.Update(r.Context(), p, &req)
	if err != nil {
		h.log.Error("failed to update ticket",
			zap.Int64("ticket_id", id),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	h.log.Info("ticket updated",
		zap.Int64("ticket_id", resp.Id),
		zap.String("status", resp.Status),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (h *TicketHandler) SlackDM(w http.ResponseWriter, r *http.Request) {
	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.svc.SlackDM(r.Context(), p, &request.SlackDMRequest{TicketId: id})
	if err != nil {
		h.log.Warn("failed to create slack dm link",
			zap.Int64("ticket_id", id),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
