package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/dto"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/result"
	"github.com/niklvrr/mentorq/internal/infrastructure/repository"
	"github.com/niklvrr/mentorq/internal/transport/dto/request"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockTicketRepository мок репозитория для тестов
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, d *dto.CreateTicketDTO) (*domain.Ticket, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Get(ctx context.Context, d *dto.GetTicketDTO) (*domain.Ticket, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) List(ctx context.Context, d *dto.ListTicketsDTO) ([]*domain.Ticket, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, d *dto.UpdateTicketDTO) (*result.UpdateTicketResult, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*result.UpdateTicketResult), args.Error(1)
}

// MockUserRepository мок хранилища учетных данных
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveCredential(ctx context.Context, d *dto.SaveCredentialDTO) (*domain.User, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockIdentityGateway мок LCS
type MockIdentityGateway struct {
	mock.Mock
}

func (m *MockIdentityGateway) ResolveProfile(ctx context.Context, cred domain.Credential) (domain.Profile, error) {
	args := m.Called(ctx, cred)
	return args.Get(0).(domain.Profile), args.Error(1)
}

func (m *MockIdentityGateway) CreateDMLink(ctx context.Context, cred domain.Credential, otherEmail string) (string, error) {
	args := m.Called(ctx, cred, otherEmail)
	return args.String(0), args.Error(1)
}

var (
	owner    = domain.Profile{Email: "owner@example.com"}
	mentor   = domain.Profile{Email: "mentor@example.com", Roles: domain.Roles{Mentor: true}}
	director = domain.Profile{Email: "director@example.com", Roles: domain.Roles{Director: true}}
)

func newTicketService(repo *MockTicketRepository, users *MockUserRepository, gw *MockIdentityGateway) *TicketService {
	return NewTicketService(repo, users, gw, nil, zap.NewNop())
}

func strPtr(s string) *string { return &s }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestTicketService_Create_Success(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	service := newTicketService(mockRepo, nil, nil)

	req := &request.CreateTicketRequest{
		OwnerEmail: "owner@example.com",
		Title:      "help with go",
		Location:   "table 4",
		Contact:    strPtr("slack @owner"),
	}
	created := &domain.Ticket{
		Id:         1,
		OwnerEmail: "owner@example.com",
		Status:     domain.StatusOpen,
		Title:      "help with go",
		Location:   "table 4",
		Contact:    strPtr("slack @owner"),
		CreatedAt:  time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC),
	}

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *dto.CreateTicketDTO) bool {
		return d.OwnerEmail == "owner@example.com" && d.Title == "help with go" && *d.Contact == "slack @owner"
	})).Return(created, nil)

	resp, err := service.Create(context.Background(), owner, req)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Id)
	assert.Equal(t, "OPEN", resp.Status)
	assert.Equal(t, "2024-02-03T10:00:00Z", resp.CreatedDatetime)
	assert.Nil(t, resp.ClaimedDatetime)
	assert.Nil(t, resp.ClosedDatetime)
	mockRepo.AssertExpectations(t)
}

func TestTicketService_Create_ForeignOwner(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	service := newTicketService(mockRepo, nil, nil)

	req := &request.CreateTicketRequest{OwnerEmail: "someone@example.com", Title: "x", Location: "y"}

	resp, err := service.Create(context.Background(), owner, req)

	assert.Nil(t, resp)
	assertCode(t, err, CodeForbidden)
	assert.ErrorIs(t, err, domain.ErrForeignOwner)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTicketService_Create_CountsMetric(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	metrics := NewTicketMetrics(prometheus.NewRegistry())
	service := NewTicketService(mockRepo, nil, nil, metrics, zap.NewNop())

	mockRepo.On("Create", mock.Anything, mock.Anything).Return(&domain.Ticket{Id: 1, Status: domain.StatusOpen}, nil)

	_, err := service.Create(context.Background(), owner, &request.CreateTicketRequest{OwnerEmail: owner.Email})

	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.created))
}

func TestTicketService_Get_NotVisible(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	service := newTicketService(mockRepo, nil, nil)

	mockRepo.On("Get", mock.Anything, mock.MatchedBy(func(d *dto.GetTicketDTO) bool {
		return d.TicketId == 7 && d.Filter.OwnerEmail == owner.Email
	})).Return(nil, repository.ErrNotFound)

	resp, err := service.Get(context.Background(), owner, &request.GetTicketRequest{TicketId: 7})

	assert.Nil(t, resp)
	assertCode(t, err, CodeNotFound)
	mockRepo.AssertExpectations(t)
}

func TestTicketService_List_MentorScopeAndStatus(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	service := newTicketService(mockRepo, nil, nil)

	tickets := []*domain.Ticket{
		{Id: 1, OwnerEmail: "a@example.com", Status: domain.StatusOpen},
		{Id: 2, OwnerEmail: "b@example.com", Status: domain.StatusOpen},
	}
	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(d *dto.ListTicketsDTO) bool {
		return d.Filter.OwnerEmail == "" &&
			assert.ObjectsAreEqual([]domain.Status{domain.StatusClosed}, d.Filter.ExcludeStatuses) &&
			d.Filter.Status == domain.StatusOpen
	})).Return(tickets, nil)

	resp, err := service.List(context.Background(), mentor, &request.ListTicketsRequest{Status: "OPEN"})

	require.NoError(t, err)
	assert.Len(t, resp, 2)
	mockRepo.AssertExpectations(t)
}

func TestTicketService_List_Empty(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	service := newTicketService(mockRepo, nil, nil)

	mockRepo.On("List", mock.Anything, mock.Anything).Return([]*domain.Ticket{}, nil)

	resp, err := service.List(context.Background(), owner, &request.ListTicketsRequest{})

	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Empty(t, resp)
}

func TestTicketService_Update_Claim(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	metrics := NewTicketMetrics(prometheus.NewRegistry())
	service := NewTicketService(mockRepo, nil, nil, metrics, zap.NewNop())

	claimedAt := time.Date(2024, 2, 3, 10, 5, 0, 0, time.UTC)
	before := &domain.Ticket{Id: 3, OwnerEmail: "a@example.com", Status: domain.StatusOpen}
	after := &domain.Ticket{
		Id:          3,
		OwnerEmail:  "a@example.com",
		Mentor:      "Mentor",
		MentorEmail: "mentor@example.com",
		Status:      domain.StatusClaimed,
		ClaimedAt:   &claimedAt,
	}

	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(d *dto.UpdateTicketDTO) bool {
		return d.TicketId == 3 &&
			d.Patch.Status != nil && *d.Patch.Status == domain.StatusClaimed &&
			*d.Patch.MentorEmail == "mentor@example.com"
	})).Return(&result.UpdateTicketResult{Before: before, After: after}, nil)

	resp, err := service.Update(context.Background(), mentor, &request.UpdateTicketRequest{
		TicketId:    3,
		Mentor:      strPtr("Mentor"),
		MentorEmail: strPtr("mentor@example.com"),
		Status:      strPtr("CLAIMED"),
	})

	require.NoError(t, err)
	assert.Equal(t, "CLAIMED", resp.Status)
	require.NotNil(t, resp.ClaimedDatetime)
	assert.Equal(t, "2024-02-03T10:05:00Z", *resp.ClaimedDatetime)
	assert.Nil(t, resp.ClosedDatetime)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.transitions.WithLabelValues("OPEN", "CLAIMED")))
	mockRepo.AssertExpectations(t)
}

func TestTicketService_Update_UnknownStatus(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	service := newTicketService(mockRepo, nil, nil)

	resp, err := service.Update(context.Background(), mentor, &request.UpdateTicketRequest{
		TicketId: 3,
		Status:   strPtr("REOPENED"),
	})

	assert.Nil(t, resp)
	assertCode(t, err, CodeInvalidInput)
	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Fields, "status")
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTicketService_Update_NotFound(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	service := newTicketService(mockRepo, nil, nil)

	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	_, err := service.Update(context.Background(), owner, &request.UpdateTicketRequest{TicketId: 99})

	assertCode(t, err, CodeNotFound)
}

func TestTicketService_Update_UnknownError(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	service := newTicketService(mockRepo, nil, nil)

	dbErr := errors.New("connection reset")
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil, dbErr)

	_, err := service.Update(context.Background(), owner, &request.UpdateTicketRequest{TicketId: 1})

	assert.ErrorIs(t, err, dbErr)
	assert.ErrorIs(t, err, updateTicketError)
	var domainErr *DomainError
	assert.False(t, errors.As(err, &domainErr))
}

func TestTicketService_SlackDM_OwnerMessagesMentor(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	users := new(MockUserRepository)
	gw := new(MockIdentityGateway)
	service := newTicketService(mockRepo, users, gw)

	ticket := &domain.Ticket{Id: 5, OwnerEmail: owner.Email, MentorEmail: "mentor@example.com", Status: domain.StatusClaimed}
	cred := domain.Credential{Email: owner.Email, Token: "lcs-token"}

	mockRepo.On("Get", mock.Anything, mock.Anything).Return(ticket, nil)
	users.On("GetByEmail", mock.Anything, owner.Email).Return(&domain.User{Email: owner.Email, LCSToken: "lcs-token"}, nil)
	gw.On("CreateDMLink", mock.Anything, cred, "mentor@example.com").Return("https://slack/dm/1", nil)

	resp, err := service.SlackDM(context.Background(), owner, &request.SlackDMRequest{TicketId: 5})

	require.NoError(t, err)
	assert.Equal(t, "https://slack/dm/1", resp.SlackDMLink)
	gw.AssertExpectations(t)
}

func TestTicketService_SlackDM_MentorMessagesOwner(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	users := new(MockUserRepository)
	gw := new(MockIdentityGateway)
	service := newTicketService(mockRepo, users, gw)

	ticket := &domain.Ticket{Id: 5, OwnerEmail: owner.Email, MentorEmail: mentor.Email, Status: domain.StatusClaimed}

	mockRepo.On("Get", mock.Anything, mock.Anything).Return(ticket, nil)
	users.On("GetByEmail", mock.Anything, mentor.Email).Return(&domain.User{Email: mentor.Email, LCSToken: "t"}, nil)
	gw.On("CreateDMLink", mock.Anything, mock.Anything, owner.Email).Return("https://slack/dm/2", nil)

	resp, err := service.SlackDM(context.Background(), mentor, &request.SlackDMRequest{TicketId: 5})

	require.NoError(t, err)
	assert.Equal(t, "https://slack/dm/2", resp.SlackDMLink)
}

func TestTicketService_SlackDM_NoMentor(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	service := newTicketService(mockRepo, new(MockUserRepository), new(MockIdentityGateway))

	mockRepo.On("Get", mock.Anything, mock.Anything).Return(&domain.Ticket{Id: 5, OwnerEmail: owner.Email}, nil)

	_, err := service.SlackDM(context.Background(), owner, &request.SlackDMRequest{TicketId: 5})

	assertCode(t, err, CodeInvalidInput)
}

func TestTicketService_SlackDM_UpstreamRelayed(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	users := new(MockUserRepository)
	gw := new(MockIdentityGateway)
	service := newTicketService(mockRepo, users, gw)

	upstream := &domain.UpstreamError{Kind: domain.UpstreamCredential, StatusCode: 403, Body: []byte(`{"body":"expired"}`)}
	mockRepo.On("Get", mock.Anything, mock.Anything).Return(&domain.Ticket{Id: 5, OwnerEmail: owner.Email, MentorEmail: "m@example.com"}, nil)
	users.On("GetByEmail", mock.Anything, owner.Email).Return(&domain.User{Email: owner.Email, LCSToken: "old"}, nil)
	gw.On("CreateDMLink", mock.Anything, mock.Anything, "m@example.com").Return("", upstream)

	_, err := service.SlackDM(context.Background(), owner, &request.SlackDMRequest{TicketId: 5})

	var got *domain.UpstreamError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 403, got.StatusCode)
}

func TestTicketService_SlackDM_NoStoredCredential(t *testing.T) {
	mockRepo := new(MockTicketRepository)
	users := new(MockUserRepository)
	service := newTicketService(mockRepo, users, new(MockIdentityGateway))

	mockRepo.On("Get", mock.Anything, mock.Anything).Return(&domain.Ticket{Id: 5, OwnerEmail: owner.Email, MentorEmail: "m@example.com"}, nil)
	users.On("GetByEmail", mock.Anything, owner.Email).Return(nil, repository.ErrNotFound)

	_, err := service.SlackDM(context.Background(), owner, &request.SlackDMRequest{TicketId: 5})

	assertCode(t, err, CodeUnauthenticated)
}
