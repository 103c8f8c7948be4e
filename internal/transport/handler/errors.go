package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/usecase/service"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HandleError маппит доменные ошибки на HTTP коды и ErrorResponse
func HandleError(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusOK, ErrorResponse{}
	}

	var domainErr *service.DomainError
	if errors.As(err, &domainErr) {
		// Маппим код ошибки на HTTP статус
		statusCode := mapErrorCodeToHTTPStatus(domainErr.Code)
		return statusCode, ErrorResponse{
			Error: ErrorDetail{
				Code:    domainErr.Code,
				Message: domainErr.Message,
				Fields:  domainErr.Fields,
			},
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, ErrorResponse{
			Error: ErrorDetail{
				Code:    "TIMEOUT",
				Message: "request timed out",
			},
		}
	}

	// Неизвестная ошибка - возвращаем 500
	return http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:    service.CodeInternal,
			Message: "internal server error",
		},
	}
}

func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case service.CodeUnauthenticated:
		return http.StatusUnauthorized // 401
	case service.CodeForbidden:
		return http.StatusForbidden // 403
	case service.CodeNotFound:
		return http.StatusNotFound // 404
	case service.CodeInvalidInput:
		return http.StatusBadRequest // 400
	case service.CodeConflict:
		return http.StatusConflict // 409
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteError отправляет ErrorResponse клиенту
func WriteError(w http.ResponseWriter, statusCode int, errResp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errResp)
}

// writeServiceError ошибки LCS отдаются с исходным кодом и телом, остальные через HandleError
func writeServiceError(w http.ResponseWriter, err error) {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		writeUpstream(w, upstream)
		return
	}
	statusCode, errResp := HandleError(err)
	WriteError(w, statusCode, errResp)
}

func writeUpstream(w http.ResponseWriter, upstream *domain.UpstreamError) {
	status := upstream.StatusCode
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}

	contentType := "text/plain; charset=utf-8"
	if json.Valid(upstream.Body) {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write(upstream.Body)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
