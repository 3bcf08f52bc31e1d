package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a ResearchError; each kind maps to one HTTP status.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindScraping   ErrorKind = "scraping"
	KindLLM        ErrorKind = "llm"
	KindStorage    ErrorKind = "storage"
	KindInternal   ErrorKind = "internal"
)

// ErrNotFound is returned by history stores for unknown record IDs.
var ErrNotFound = errors.New("record not found")

// ResearchError is the error type returned by the research operations.
type ResearchError struct {
	Kind    ErrorKind
	Message string
	Source  string // scraping errors only
	Err     error
}

func (e *ResearchError) Error() string {
	var msg string
	switch e.Kind {
	case KindScraping:
		msg = fmt.Sprintf("Scraping error [%s]: %s", e.Source, e.Message)
	case KindLLM:
		msg = "LLM error: " + e.Message
	case KindStorage:
		msg = "Storage error: " + e.Message
	case KindInternal:
		msg = "Internal error: " + e.Message
	default:
		msg = e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResearchError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status for the error kind.
func (e *ResearchError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindScraping:
		return http.StatusBadGateway
	case KindLLM:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func ValidationError(msg string) error {
	return &ResearchError{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) error {
	return &ResearchError{Kind: KindNotFound, Message: msg}
}

func ScrapingError(source string, err error) error {
	return &ResearchError{Kind: KindScraping, Source: source, Message: "request failed", Err: err}
}

func LLMError(msg string, err error) error {
	return &ResearchError{Kind: KindLLM, Message: msg, Err: err}
}

func StorageError(msg string, err error) error {
	return &ResearchError{Kind: KindStorage, Message: msg, Err: err}
}

// StatusCode maps any error to an HTTP status. Unknown errors are 500,
// an expired request context is 504.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var re *ResearchError
	if errors.As(err, &re) {
		return re.StatusCode()
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// ErrorDetail is the client-facing message for err: the ResearchError text,
// or a generic internal error line for anything else.
func ErrorDetail(err error) string {
	var re *ResearchError
	if errors.As(err, &re) {
		return re.Error()
	}
	if errors.Is(err, ErrNotFound) {
		return "Research record not found"
	}
	return "Internal error: " + err.Error()
}
