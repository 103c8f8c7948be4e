package lcs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/niklvrr/mentorq/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20

	readPath    = "/read"
	slackDMPath = "/slack-dm"
)

var (
	ErrProfileNotFound = errors.New("lcs: profile not found")
	ErrEmptyDMLink     = errors.New("lcs: empty slack dm link")
)

// Client HTTP клиент LCS. Любой не 2xx ответ (HTTP или statusCode в конверте)
// возвращается как *domain.UpstreamError с исходным кодом и телом.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type readQuery struct {
	Email string `json:"email"`
}

type readRequest struct {
	Email string    `json:"email"`
	Token string    `json:"token"`
	Query readQuery `json:"query"`
}

type slackDMRequest struct {
	Email      string `json:"email"`
	Token      string `json:"token"`
	OtherEmail string `json:"other_email"`
}

// envelope LCS всегда отвечает {"statusCode": ..., "body": ...}
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

type slackDMBody struct {
	SlackDMLink string `json:"slack_dm_link"`
}

func (c *Client) ResolveProfile(ctx context.Context, cred domain.Credential) (domain.Profile, error) {
	req := readRequest{
		Email: cred.Email,
		Token: cred.Token,
		Query: readQuery{Email: cred.Email},
	}

	body, err := c.call(ctx, readPath, req)
	if err != nil {
		return domain.Profile{}, err
	}

	var profiles []domain.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return domain.Profile{}, c.internal(fmt.Errorf("decode profile: %w", err))
	}
	if len(profiles) == 0 {
		return domain.Profile{}, ErrProfileNotFound
	}

	c.log.Debug("lcs profile resolved",
		zap.String("email", profiles[0].Email),
		zap.Bool("organizer", profiles[0].Roles.Organizer),
		zap.Bool("director", profiles[0].Roles.Director),
		zap.Bool("mentor", profiles[0].Roles.Mentor),
	)
	return profiles[0], nil
}

func (c *Client) CreateDMLink(ctx context.Context, cred domain.Credential, otherEmail string) (string, error) {
	req := slackDMRequest{
		Email:      cred.Email,
		Token:      cred.Token,
		OtherEmail: otherEmail,
	}

	body, err := c.call(ctx, slackDMPath, req)
	if err != nil {
		return "", err
	}

	var dm slackDMBody
	if err := json.Unmarshal(body, &dm); err != nil {
		return "", c.internal(fmt.Errorf("decode slack dm link: %w", err))
	}
	if dm.SlackDMLink == "" {
		return "", c.internal(ErrEmptyDMLink)
	}
	return dm.SlackDMLink, nil
}

// call выполняет POST и возвращает поле body конверта
func (c *Client) call(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("lcs request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, c.internal(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.internal(fmt.Errorf("read response: %w", err))
	}

	c.log.Debug("lcs request completed",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.upstream(path, resp.StatusCode, respBody)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, c.internal(fmt.Errorf("decode envelope: %w", err))
	}
	// LCS может ответить 200 с ошибкой внутри конверта
	if env.StatusCode != 0 && (env.StatusCode < 200 || env.StatusCode >= 300) {
		return nil, c.upstream(path, env.StatusCode, respBody)
	}
	return env.Body, nil
}

func (c *Client) upstream(path string, status int, body []byte) error {
	kind := domain.KindForStatus(status)
	c.log.Warn("lcs returned error",
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("kind", string(kind)),
	)
	return &domain.UpstreamError{
		Kind:       kind,
		StatusCode: status,
		Body:       body,
	}
}

// internal сбой транспорта или формата ответа, клиенту уходит 502
func (c *Client) internal(err error) error {
	body, _ := json.Marshal(map[string]string{"body": err.Error()})
	return &domain.UpstreamError{
		Kind:       domain.UpstreamInternal,
		StatusCode: http.StatusBadGateway,
		Body:       body,
	}
}
