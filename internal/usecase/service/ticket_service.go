package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/dto"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/result"
	"github.com/niklvrr/mentorq/internal/infrastructure/repository"
	"github.com/niklvrr/mentorq/internal/transport/dto/request"
	"github.com/niklvrr/mentorq/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	createTicketError = errors.New("create ticket error")
	getTicketError    = errors.New("get ticket error")
	listTicketsError  = errors.New("list tickets error")
	updateTicketError = errors.New("update ticket error")
	slackDMError      = errors.New("slack dm link error")
)

// Интерфейс репозитория
type TicketRepository interface {
	Create(ctx context.Context, d *dto.CreateTicketDTO) (*domain.Ticket, error)
	Get(ctx context.Context, d *dto.GetTicketDTO) (*domain.Ticket, error)
	List(ctx context.Context, d *dto.ListTicketsDTO) ([]*domain.Ticket, error)
	Update(ctx context.Context, d *dto.UpdateTicketDTO) (*result.UpdateTicketResult, error)
}

type CredentialRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// IdentityGateway внешний сервис профилей и личных сообщений
type IdentityGateway interface {
	ResolveProfile(ctx context.Context, cred domain.Credential) (domain.Profile, error)
	CreateDMLink(ctx context.Context, cred domain.Credential, otherEmail string) (string, error)
}

type TicketService struct {
	repo    TicketRepository
	users   CredentialRepository
	gateway IdentityGateway
	metrics *TicketMetrics
	log     *zap.Logger
}

func NewTicketService(
	repo TicketRepository,
	users CredentialRepository,
	gateway IdentityGateway,
	metrics *TicketMetrics,
	log *zap.Logger,
) *TicketService {
	return &TicketService{
		repo:    repo,
		users:   users,
		gateway: gateway,
		metrics: metrics,
		log:     log,
	}
}

func (s *TicketService) Create(ctx context.Context, p domain.Profile, req *request.CreateTicketRequest) (*response.TicketResponse, error) {
	s.log.Info("create ticket request accepted",
		zap.String("email", p.Email),
		zap.String("owner_email", req.OwnerEmail),
	)

	// Тикет можно открыть только от своего имени
	if err := domain.CanCreateTicket(p, req.OwnerEmail); err != nil {
		s.log.Warn("ticket creation forbidden",
			zap.String("email", p.Email),
			zap.String("owner_email", req.OwnerEmail),
		)
		return nil, Forbidden(err)
	}

	// Собираем dto
	dto := &dto.CreateTicketDTO{
		OwnerEmail: req.OwnerEmail,
		Title:      req.Title,
		Comment:    req.Comment,
		Contact:    req.Contact,
		Location:   req.Location,
	}

	// Запрос в бд
	t, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.log.Error("failed to create ticket", zap.Error(err))

		if errors.Is(err, repository.ErrInvalidInput) {
			return nil, WrapError(ErrInvalidInput, err)
		}
		return nil, fmt.Errorf(`%w: %w`, createTicketError, err)
	}

	s.metrics.observeCreated()
	s.log.Info("ticket created",
		zap.Int64("ticket_id", t.Id),
		zap.String("owner_email", t.OwnerEmail),
	)

	// Ответ
	return toTicketResponse(t), nil
}

func (s *TicketService) Get(ctx context.Context, p domain.Profile, req *request.GetTicketRequest) (*response.TicketResponse, error) {
	t, err := s.repo.Get(ctx, &dto.GetTicketDTO{
		TicketId: req.TicketId,
		Filter:   domain.TicketScope(p),
	})
	if err != nil {
		return nil, s.mapTicketError(err, getTicketError, req.TicketId)
	}
	return toTicketResponse(t), nil
}

func (s *TicketService) List(ctx context.Context, p domain.Profile, req *request.ListTicketsRequest) ([]response.TicketResponse, error) {
	filter := domain.TicketScope(p)
	filter.Status = domain.Status(req.Status)

	tickets, err := s.repo.List(ctx, &dto.ListTicketsDTO{Filter: filter})
	if err != nil {
		s.log.Error("failed to list tickets",
			zap.String("email", p.Email),
			zap.Error(err),
		)
		return nil, fmt.Errorf(`%w: %w`, listTicketsError, err)
	}

	resp := make([]response.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, *toTicketResponse(t))
	}
	return resp, nil
}

// Update меняет mentor, mentor_email и status. Метки времени ставит машина состояний
// внутри транзакции репозитория.
func (s *TicketService) Update(ctx context.Context, p domain.Profile, req *request.UpdateTicketRequest) (*response.TicketResponse, error) {
	s.log.Info("update ticket request accepted",
		zap.String("email", p.Email),
		zap.Int64("ticket_id", req.TicketId),
	)

	// Собираем патч
	patch := domain.TicketPatch{
		Mentor:      req.Mentor,
		MentorEmail: req.MentorEmail,
	}
	if req.Status != nil {
		st := domain.Status(*req.Status)
		if !st.Valid() {
			return nil, InvalidFields(map[string]string{"status": "must be one of OPEN, CLAIMED, CLOSED, CANCELLED"})
		}
		patch.Status = &st
	}

	res, err := s.repo.Update(ctx, &dto.UpdateTicketDTO{
		TicketId: req.TicketId,
		Filter:   domain.TicketScope(p),
		Patch:    patch,
	})
	if err != nil {
		return nil, s.mapTicketError(err, updateTicketError, req.TicketId)
	}

	s.metrics.observeTransition(res.Before.Status, res.After.Status)
	if domain.Transitioned(*res.Before, *res.After) {
		s.log.Info("ticket transitioned",
			zap.Int64("ticket_id", res.After.Id),
			zap.String("from", string(res.Before.Status)),
			zap.String("to", string(res.After.Status)),
		)
	}

	// Ответ
	return toTicketResponse(res.After), nil
}

// SlackDM выдает ссылку на личные сообщения с собеседником по тикету
func (s *TicketService) SlackDM(ctx context.Context, p domain.Profile, req *request.SlackDMRequest) (*response.SlackDMResponse, error) {
	t, err := s.repo.Get(ctx, &dto.GetTicketDTO{
		TicketId: req.TicketId,
		Filter:   domain.TicketScope(p),
	})
	if err != nil {
		return nil, s.mapTicketError(err, slackDMError, req.TicketId)
	}

	other, err := domain.DMCounterpart(p, *t)
	if err != nil {
		return nil, InvalidFields(map[string]string{"mentor_email": err.Error()})
	}

	// Ссылку запрашиваем от имени пользователя его токеном LCS
	user, err := s.users.GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrNoStoredCredential, err)
		}
		return nil, fmt.Errorf(`%w: %w`, slackDMError, err)
	}

	link, err := s.gateway.CreateDMLink(ctx, domain.Credential{Email: user.Email, Token: user.LCSToken}, other)
	if err != nil {
		s.log.Error("failed to create slack dm link",
			zap.Int64("ticket_id", t.Id),
			zap.Error(err),
		)
		// UpstreamError отдается клиенту как есть
		return nil, err
	}

	return &response.SlackDMResponse{SlackDMLink: link}, nil
}

func (s *TicketService) mapTicketError(err error, op error, ticketId int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return WrapError(ErrTicketNotFound, err)
	}
	if errors.Is(err, repository.ErrInvalidInput) {
		return WrapError(ErrInvalidInput, err)
	}

	s.log.Error("ticket operation failed",
		zap.Int64("ticket_id", ticketId),
		zap.Error(err),
	)
	return fmt.Errorf(`%w: %w`, op, err)
}

func toTicketResponse(t *domain.Ticket) *response.TicketResponse {
	return &response.TicketResponse{
		Id:              t.Id,
		OwnerEmail:      t.OwnerEmail,
		Mentor:          t.Mentor,
		MentorEmail:     t.MentorEmail,
		Status:          string(t.Status),
		Title:           t.Title,
		Comment:         t.Comment,
		Contact:         t.Contact,
		Location:        t.Location,
		CreatedDatetime: formatTime(t.CreatedAt),
		ClaimedDatetime: formatOptionalTime(t.ClaimedAt),
		ClosedDatetime:  formatOptionalTime(t.ClosedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
