package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/dto"
	"github.com/niklvrr/mentorq/internal/infrastructure/repository"
	"github.com/niklvrr/mentorq/internal/transport/dto/request"
	"github.com/niklvrr/mentorq/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	createFeedbackError = errors.New("create feedback error")
	getFeedbackError    = errors.New("get feedback error")
	listFeedbackError   = errors.New("list feedback error")
	updateFeedbackError = errors.New("update feedback error")
)

// Интерфейс репозитория
type FeedbackRepository interface {
	Create(ctx context.Context, d *dto.CreateFeedbackDTO, guard repository.TicketGuard) (*domain.Feedback, error)
	Get(ctx context.Context, d *dto.GetFeedbackDTO) (*domain.Feedback, error)
	List(ctx context.Context, d *dto.ListFeedbackDTO) ([]*domain.Feedback, error)
	Update(ctx context.Context, d *dto.UpdateFeedbackDTO, guard repository.OwnerGuard) (*domain.Feedback, error)
}

type FeedbackService struct {
	repo FeedbackRepository
	log  *zap.Logger
}

func NewFeedbackService(repo FeedbackRepository, log *zap.Logger) *FeedbackService {
	return &FeedbackService{
		repo: repo,
		log:  log,
	}
}

func (s *FeedbackService) Create(ctx context.Context, p domain.Profile, req *request.CreateFeedbackRequest) (*response.FeedbackResponse, error) {
	s.log.Info("create feedback request accepted",
		zap.String("email", p.Email),
		zap.Int64("ticket_id", req.TicketId),
	)

	dto := &dto.CreateFeedbackDTO{
		TicketId: req.TicketId,
		Rating:   req.Rating,
		Comments: req.Comments,
	}

	// Проверка тикета выполняется в транзакции вставки
	fb, err := s.repo.Create(ctx, dto, func(t domain.Ticket) error {
		return domain.CanCreateFeedback(p, t)
	})
	if err != nil {
		s.log.Warn("feedback not created",
			zap.String("email", p.Email),
			zap.Int64("ticket_id", req.TicketId),
			zap.Error(err),
		)

		// Маппим ошибки
		switch {
		case errors.Is(err, domain.ErrTicketNotVisible), errors.Is(err, repository.ErrNotFound):
			return nil, WrapError(ErrTicketNotFound, err)
		case errors.Is(err, domain.ErrTicketNotClosed), errors.Is(err, domain.ErrTicketNoMentor):
			return nil, Forbidden(err)
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, WrapError(ErrFeedbackExists, err)
		case errors.Is(err, repository.ErrInvalidInput):
			return nil, WrapError(ErrInvalidInput, err)
		}
		return nil, fmt.Errorf(`%w: %w`, createFeedbackError, err)
	}

	s.log.Info("feedback created",
		zap.Int64("ticket_id", fb.TicketId),
		zap.Int("rating", fb.Rating),
	)

	// Ответ
	return toFeedbackResponse(fb), nil
}

func (s *FeedbackService) Get(ctx context.Context, p domain.Profile, req *request.GetFeedbackRequest) (*response.FeedbackResponse, error) {
	fb, err := s.repo.Get(ctx, &dto.GetFeedbackDTO{
		TicketId: req.TicketId,
		Filter:   domain.FeedbackScope(p),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrFeedbackNotFound, err)
		}
		return nil, fmt.Errorf(`%w: %w`, getFeedbackError, err)
	}
	return toFeedbackResponse(fb), nil
}

func (s *FeedbackService) List(ctx context.Context, p domain.Profile) ([]response.FeedbackResponse, error) {
	feedback, err := s.repo.List(ctx, &dto.ListFeedbackDTO{Filter: domain.FeedbackScope(p)})
	if err != nil {
		s.log.Error("failed to list feedback", zap.Error(err))
		return nil, fmt.Errorf(`%w: %w`, listFeedbackError, err)
	}

	resp := make([]response.FeedbackResponse, 0, len(feedback))
	for _, fb := range feedback {
		resp = append(resp, *toFeedbackResponse(fb))
	}
	return resp, nil
}

func (s *FeedbackService) Update(ctx context.Context, p domain.Profile, req *request.UpdateFeedbackRequest) (*response.FeedbackResponse, error) {
	s.log.Info("update feedback request accepted",
		zap.String("email", p.Email),
		zap.Int64("ticket_id", req.TicketId),
	)

	fb, err := s.repo.Update(ctx, &dto.UpdateFeedbackDTO{
		TicketId: req.TicketId,
		Filter:   domain.FeedbackScope(p),
		Rating:   req.Rating,
		Comments: req.Comments,
	}, func(ownerEmail string) error {
		return domain.CanEditFeedback(p, ownerEmail)
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, WrapError(ErrFeedbackNotFound, err)
		case errors.Is(err, domain.ErrNotFeedbackOwner):
			return nil, Forbidden(err)
		case errors.Is(err, repository.ErrInvalidInput):
			return nil, WrapError(ErrInvalidInput, err)
		}
		s.log.Error("failed to update feedback",
			zap.Int64("ticket_id", req.TicketId),
			zap.Error(err),
		)
		return nil, fmt.Errorf(`%w: %w`, updateFeedbackError, err)
	}

	s.log.Info("feedback updated",
		zap.Int64("ticket_id", fb.TicketId),
		zap.Int("rating", fb.Rating),
	)
	return toFeedbackResponse(fb), nil
}

func toFeedbackResponse(fb *domain.Feedback) *response.FeedbackResponse {
	return &response.FeedbackResponse{
		TicketId: fb.TicketId,
		Rating:   fb.Rating,
		Comments: fb.Comments,
	}
}
