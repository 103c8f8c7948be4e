package handler

import (
	"context"
	"net/http"

	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/transport/dto/request"
	"github.com/niklvrr/mentorq/internal/transport/dto/response"
	"go.uber.org/zap"
)

type StatsService interface {
	GetStats(ctx context.Context, p domain.Profile) (*response.StatsResponse, error)
	Leaderboard(ctx context.Context, p domain.Profile, req *request.LeaderboardRequest) ([]response.LeaderboardEntry, error)
}

type StatsHandler struct {
	svc StatsService
	log *zap.Logger
}

func NewStatsHandler(svc StatsService, log *zap.Logger) *StatsHandler {
	return &StatsHandler{
		svc: svc,
		log: log,
	}
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.log.Info("getStats request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.GetStats(r.Context(), p)
	if err != nil {
		h.log.Error("failed to get statistics",
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	h.log.Info("statistics retrieved successfully",
		zap.Int64("total_tickets", resp.TotalTickets),
		zap.Bool("detailed", resp.DirectorStats != nil),
	)

	writeJSON(w, http.StatusOK, resp)
}

func (h *StatsHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	p, ok := requireProfile(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	req := request.LeaderboardRequest{Limit: limit}
	if err := validateRequest(&req); err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.svc.Leaderboard(r.Context(), p, &req)
	if err != nil {
		h.log.Error("failed to get leaderboard", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
