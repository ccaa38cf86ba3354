package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/moolen/troubleshooter/internal/checks"
	"github.com/moolen/troubleshooter/internal/diagnosis"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeNotFound             = "NOT_FOUND"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeWarehouseUnavailable = "WAREHOUSE_UNAVAILABLE"
	CodeGraphQueryFailed     = "GRAPH_QUERY_FAILED"
	CodeCheckFailed          = "CHECK_FAILED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// ErrPartitionNotFound is returned when fleet metadata has no matching job
var ErrPartitionNotFound = errors.New("no partition for the given job")

// ValidationError is a bad request parameter
type ValidationError struct {
	message string
}

// NewValidationError formats a validation error
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.message
}

// statusFor maps an error to its HTTP status and code
func statusFor(err error) (int, string) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, checks.ErrUnknownCheck), errors.Is(err, ErrPartitionNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, diagnosis.ErrConnectionUnavailable):
		return http.StatusServiceUnavailable, CodeWarehouseUnavailable
	case errors.Is(err, diagnosis.ErrGraphQuery):
		return http.StatusBadGateway, CodeGraphQueryFailed
	case errors.Is(err, diagnosis.ErrCheckExecution):
		return http.StatusInternalServerError, CodeCheckFailed
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

// writeErr responds with the status mapped from err
func writeErr(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	WriteError(w, status, code, err.Error())
}
