package domain

import "fmt"

type UpstreamKind string

const (
	UpstreamCredential UpstreamKind = "credential"
	UpstreamRequest    UpstreamKind = "request"
	UpstreamInternal   UpstreamKind = "internal"
)

// UpstreamError ошибка внешнего сервиса (LCS), код и тело отдаются клиенту как есть
type UpstreamError struct {
	Kind       UpstreamKind
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s error: status=%d body=%s", e.Kind, e.StatusCode, string(e.Body))
}

// KindForStatus классифицирует ответ внешнего сервиса по HTTP коду
func KindForStatus(code int) UpstreamKind {
	switch {
	case code == 401 || code == 403:
		return UpstreamCredential
	case code >= 400 && code < 500:
		return UpstreamRequest
	default:
		return UpstreamInternal
	}
}
