package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/result"
	"github.com/niklvrr/mentorq/internal/transport/dto/request"
	"github.com/niklvrr/mentorq/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	getStatsError       = errors.New("get stats error")
	getLeaderboardError = errors.New("get leaderboard error")
)

// Интерфейс репозитория
type StatsRepository interface {
	Durations(ctx context.Context) (*result.DurationStats, error)
	Detailed(ctx context.Context) (*result.DetailedStats, error)
	MentorRatings(ctx context.Context) ([]domain.MentorRating, error)
}

type StatsService struct {
	repo         StatsRepository
	defaultLimit int
	log          *zap.Logger
}

func NewStatsService(repo StatsRepository, defaultLimit int, log *zap.Logger) *StatsService {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultLeaderboardLimit
	}
	return &StatsService{
		repo:         repo,
		defaultLimit: defaultLimit,
		log:          log,
	}
}

// GetStats публичная сводка для всех, расширенная только для директоров
func (s *StatsService) GetStats(ctx context.Context, p domain.Profile) (*response.StatsResponse, error) {
	s.log.Info("getStats request accepted",
		zap.String("email", p.Email),
		zap.Bool("director", p.Roles.Director),
	)

	// Средние длительности
	durations, err := s.repo.Durations(ctx)
	if err != nil {
		s.log.Error("failed to load duration stats", zap.Error(err))
		return nil, fmt.Errorf(`%w: %w`, getStatsError, err)
	}

	resp := &response.StatsResponse{
		TotalTickets:                  durations.TotalTickets,
		AverageClaimedDatetimeSeconds: domain.Average(durations.ClaimedSeconds, durations.ClaimedCount),
		AverageClosedDatetimeSeconds:  domain.Average(durations.ClosedSeconds, durations.ClosedCount),
	}

	if !domain.CanViewDetailedStats(p) {
		// Ответ
		return resp, nil
	}

	// Расширенная сводка
	detailed, err := s.repo.Detailed(ctx)
	if err != nil {
		s.log.Error("failed to load detailed stats", zap.Error(err))
		return nil, fmt.Errorf(`%w: %w`, getStatsError, err)
	}

	counts := make(map[string]int64, len(detailed.StatusCounts))
	for st, n := range domain.StatusCounts(detailed.StatusCounts) {
		counts[string(st)] = n
	}
	resp.DirectorStats = &response.DirectorStats{
		StatusCounts:    counts,
		DistinctMentors: detailed.DistinctMentors,
		DistinctOwners:  detailed.DistinctOwners,
		AverageRating:   domain.Average(detailed.RatingSum, detailed.RatingCount),
	}

	s.log.Info("statistics retrieved",
		zap.Int64("total_tickets", resp.TotalTickets),
		zap.Int64("ratings", detailed.RatingCount),
	)
	// Ответ
	return resp, nil
}

func (s *StatsService) Leaderboard(ctx context.Context, p domain.Profile, req *request.LeaderboardRequest) ([]response.LeaderboardEntry, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	rows, err := s.repo.MentorRatings(ctx)
	if err != nil {
		s.log.Error("failed to load mentor ratings", zap.Error(err))
		return nil, fmt.Errorf(`%w: %w`, getLeaderboardError, err)
	}

	ranked := domain.RankLeaderboard(rows, limit)

	resp := make([]response.LeaderboardEntry, 0, len(ranked))
	for _, r := range ranked {
		resp = append(resp, response.LeaderboardEntry{
			MentorEmail:   r.MentorEmail,
			Mentor:        r.Mentor,
			AverageRating: r.AverageRating,
			RatingsCount:  r.RatingsCount,
		})
	}

	s.log.Debug("leaderboard built",
		zap.String("email", p.Email),
		zap.Int("limit", limit),
		zap.Int("mentors", len(resp)),
	)
	return resp, nil
}
