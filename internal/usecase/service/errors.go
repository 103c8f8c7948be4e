package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
)

type DomainError struct {
	Code    string
	Message string
	// поле -> причина, только для INVALID_INPUT
	Fields map[string]string
	Err    error
}

func WrapError(domainError *DomainError, err error) error {
	return &DomainError{
		Code:    domainError.Code,
		Message: domainError.Message,
		Fields:  domainError.Fields,
		Err:     err,
	}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Forbidden отказ в доступе, причина из доменной ошибки уходит клиенту
func Forbidden(err error) error {
	return &DomainError{
		Code:    CodeForbidden,
		Message: err.Error(),
		Err:     err,
	}
}

// InvalidFields ошибка валидации с перечнем полей
func InvalidFields(fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return &DomainError{
		Code:    CodeInvalidInput,
		Message: "invalid fields: " + strings.Join(names, ", "),
		Fields:  fields,
	}
}

var (
	// UNAUTHENTICATED
	ErrUnauthenticated = &DomainError{
		Code:    CodeUnauthenticated,
		Message: "authentication credentials were not provided or are invalid",
	}
	ErrNoStoredCredential = &DomainError{
		Code:    CodeUnauthenticated,
		Message: "no directory credential stored for user, log in again",
	}

	// NOT_FOUND
	ErrTicketNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "ticket not found",
	}
	ErrFeedbackNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "feedback not found",
	}

	// CONFLICT
	ErrFeedbackExists = &DomainError{
		Code:    CodeConflict,
		Message: "feedback for this ticket already exists",
	}

	// INVALID_INPUT
	ErrInvalidInput = &DomainError{
		Code:    CodeInvalidInput,
		Message: "invalid input",
	}
)

// isDomainError ошибки, уже готовые для клиента, пробрасываются без обертки
func isDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}
