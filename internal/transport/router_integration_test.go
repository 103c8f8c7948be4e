//go:build integration

package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/mentorq/internal/config"
	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/infrastructure/db"
	"github.com/niklvrr/mentorq/internal/infrastructure/lcs"
	"github.com/niklvrr/mentorq/internal/infrastructure/repository"
	"github.com/niklvrr/mentorq/internal/security"
	"github.com/niklvrr/mentorq/internal/transport"
	"github.com/niklvrr/mentorq/internal/transport/handler"
	"github.com/niklvrr/mentorq/internal/usecase/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var (
	testServer *httptest.Server
	testPool   *pgxpool.Pool
)

// fakeLCS отвечает профилем по токену, как /read и /slack-dm в LCS
func fakeLCS() *httptest.Server {
	profiles := map[string]domain.Profile{
		"hacker-lcs":   {Email: "hacker@example.com"},
		"mentor-lcs":   {Email: "mentor@example.com", Roles: domain.Roles{Mentor: true}},
		"director-lcs": {Email: "director@example.com", Roles: domain.Roles{Director: true}},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/read", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		p, ok := profiles[req.Token]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"statusCode": 403, "body": "Invalid token"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"statusCode": 200, "body": []domain.Profile{p}})
	})
	mux.HandleFunc("/slack-dm", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OtherEmail string `json:"other_email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"statusCode": 200,
			"body":       map[string]string{"slack_dm_link": "https://slack.example.com/dm/" + req.OtherEmail},
		})
	})
	return httptest.NewServer(mux)
}

func setupTestServer(ctx context.Context, dbURL, lcsURL string) (*httptest.Server, error) {
	logger := zap.NewNop()

	// Миграции применяются в NewDatabase
	pool, err := db.NewDatabase(ctx, dbURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	testPool = pool

	gateway := lcs.NewClient(lcsURL, 5*time.Second, logger)
	registry := prometheus.NewRegistry()

	userRepo := repository.NewUserRepository(pool, logger)
	tokens := security.NewTokenProvider("integration-secret", "mentorq", time.Hour, 24*time.Hour)

	authService := service.NewAuthService(gateway, userRepo, tokens, logger)
	ticketService := service.NewTicketService(repository.NewTicketRepository(pool, logger), userRepo, gateway, service.NewTicketMetrics(registry), logger)
	feedbackService := service.NewFeedbackService(repository.NewFeedbackRepository(pool, logger), logger)
	statsService := service.NewStatsService(repository.NewStatsRepository(pool, logger), 5, logger)

	router := transport.NewRouter(transport.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger),
		Ticket:   handler.NewTicketHandler(ticketService, logger),
		Feedback: handler.NewFeedbackHandler(feedbackService, logger),
		Stats:    handler.NewStatsHandler(statsService, logger),
		Health:   handler.NewHealthHandler(pool, logger),
	}, authService, registry, config.AppConfig{
		RequestTimeout:     10 * time.Second,
		CORSOrigin:         "*",
		RateLimitPerMinute: 10000,
	}, logger)

	return httptest.NewServer(router), nil
}

// TestMain поднимает Postgres в контейнере и фейковый LCS
func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to start test container: %v", err))
	}

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(fmt.Sprintf("failed to get connection string: %v", err))
	}

	lcsServer := fakeLCS()

	testServer, err = setupTestServer(ctx, dbURL, lcsServer.URL)
	if err != nil {
		panic(fmt.Sprintf("failed to setup test server: %v", err))
	}

	code := m.Run()

	testServer.Close()
	lcsServer.Close()
	testPool.Close()
	if err := container.Terminate(ctx); err != nil {
		panic(fmt.Sprintf("failed to terminate container: %v", err))
	}

	os.Exit(code)
}

func do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, testServer.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func login(t *testing.T, email, lcsToken string) string {
	t.Helper()

	resp, body := do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"email":     email,
		"lcs_token": lcsToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var pair map[string]string
	require.NoError(t, json.Unmarshal(body, &pair))
	require.NotEmpty(t, pair["access"])
	require.NotEmpty(t, pair["refresh"])
	return pair["access"]
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestHealth(t *testing.T) {
	resp, body := do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, string(body))
}

func TestUnauthenticated(t *testing.T) {
	resp, _ := do(t, http.MethodGet, "/tickets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, "/tickets", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTokenExchange_InvalidLCSToken(t *testing.T) {
	resp, body := do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"email":     "hacker@example.com",
		"lcs_token": "stolen",
	})

	// ответ LCS отдается как есть
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid token")
}

func TestTicketLifecycleScenario(t *testing.T) {
	hacker := login(t, "hacker@example.com", "hacker-lcs")
	mentor := login(t, "mentor@example.com", "mentor-lcs")
	director := login(t, "director@example.com", "director-lcs")

	// Создание тикета
	resp, body := do(t, http.MethodPost, "/tickets", hacker, map[string]any{
		"owner_email": "hacker@example.com",
		"title":       "docker does not start",
		"comment":     "tried restarting",
		"location":    "table 4",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	ticket := decode[map[string]any](t, body)
	assert.Equal(t, "OPEN", ticket["status"])
	assert.Nil(t, ticket["claimed_datetime"])
	assert.Nil(t, ticket["closed_datetime"])
	id := int64(ticket["id"].(float64))

	// Чужой owner_email
	resp, _ = do(t, http.MethodPost, "/tickets", hacker, map[string]any{
		"owner_email": "someone@example.com",
		"title":       "t",
		"location":    "l",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Ментор видит открытый тикет
	resp, body = do(t, http.MethodGet, "/tickets?status=OPEN", mentor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, body), 1)

	// Feedback на незакрытый тикет
	resp, _ = do(t, http.MethodPost, "/feedback", hacker, map[string]any{"ticket": id, "rating": 5, "comments": "early"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Claim
	resp, body = do(t, http.MethodPatch, fmt.Sprintf("/tickets/%d", id), mentor, map[string]any{
		"status":       "CLAIMED",
		"mentor":       "Ann",
		"mentor_email": "mentor@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	claimed := decode[map[string]any](t, body)
	assert.Equal(t, "CLAIMED", claimed["status"])
	require.NotNil(t, claimed["claimed_datetime"])
	// метки времени и created_datetime идут от одних часов БД
	createdAt, err := time.Parse(time.RFC3339Nano, claimed["created_datetime"].(string))
	require.NoError(t, err)
	claimedAt, err := time.Parse(time.RFC3339Nano, claimed["claimed_datetime"].(string))
	require.NoError(t, err)
	assert.False(t, claimedAt.Before(createdAt))

	// Ссылка на DM с ментором
	resp, body = do(t, http.MethodGet, fmt.Sprintf("/tickets/%d/slack-dm", id), hacker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"slack_dm_link":"https://slack.example.com/dm/mentor@example.com"}`, string(body))

	// Close
	resp, body = do(t, http.MethodPatch, fmt.Sprintf("/tickets/%d", id), mentor, map[string]any{"status": "CLOSED"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	closed := decode[map[string]any](t, body)
	assert.Equal(t, claimed["claimed_datetime"], closed["claimed_datetime"])
	require.NotNil(t, closed["closed_datetime"])
	closedAt, err := time.Parse(time.RFC3339Nano, closed["closed_datetime"].(string))
	require.NoError(t, err)
	assert.False(t, closedAt.Before(claimedAt))

	// Ментор не видит закрытые тикеты
	resp, body = do(t, http.MethodGet, "/tickets", mentor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]map[string]any](t, body))

	resp, _ = do(t, http.MethodGet, fmt.Sprintf("/tickets/%d", id), mentor, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Владелец видит свой тикет
	resp, body = do(t, http.MethodGet, "/tickets", hacker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, body), 1)

	// Feedback
	resp, body = do(t, http.MethodPost, "/feedback", hacker, map[string]any{"ticket": id, "rating": 5, "comments": "great help"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = do(t, http.MethodPost, "/feedback", hacker, map[string]any{"ticket": id, "rating": 4, "comments": "again"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Директор не может править чужой feedback
	resp, _ = do(t, http.MethodPatch, fmt.Sprintf("/feedback/%d", id), director, map[string]any{"rating": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Leaderboard
	resp, body = do(t, http.MethodGet, "/feedback/leaderboard?limit=2", hacker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[[]map[string]any](t, body)
	require.Len(t, board, 1)
	assert.Equal(t, "mentor@example.com", board[0]["mentor_email"])
	assert.Equal(t, "Ann", board[0]["mentor"])
	assert.Equal(t, float64(5), board[0]["average_rating"])

	// Статистика: публичная и для директора
	resp, body = do(t, http.MethodGet, "/tickets/stats", hacker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	public := decode[map[string]any](t, body)
	assert.Equal(t, float64(1), public["total_tickets"])
	assert.NotContains(t, public, "status_counts")

	resp, body = do(t, http.MethodGet, "/tickets/stats", director, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detailed := decode[map[string]any](t, body)
	assert.Equal(t, float64(1), detailed["distinct_mentors"])
	counts := detailed["status_counts"].(map[string]any)
	assert.Equal(t, float64(1), counts["CLOSED"])
	assert.Equal(t, float64(0), counts["OPEN"])
}
