package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"
)

// StatusClientClosedRequest is reported when the user aborts an upload
const StatusClientClosedRequest = 499

// AppError is the application error type shared by every layer
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time

	// Set only for errors produced from a remote HTTP response
	UpstreamStatus int
	UpstreamBody   string
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause
func (e AppError) Unwrap() error {
	return e.Raw
}

// Is matches any AppError carrying the same code, so errors.Is(err, Kind(code)) works
// through wrapping.
func (e AppError) Is(target error) bool {
	t, ok := target.(AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// Kind returns a bare AppError usable as an errors.Is target
func Kind(code ErrorCode) AppError {
	return AppError{Code: code}
}

// CodeOf returns the code of the outermost AppError in err's chain
func CodeOf(err error) ErrorCode {
	var appErr AppError
	if stdErrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCode_UNKNOWN
}

// AsRemote finds the first RemoteServiceError in err's chain
func AsRemote(err error) (AppError, bool) {
	for err != nil {
		if appErr, ok := err.(AppError); ok && appErr.Code == ErrorCode_REMOTE_SERVICE {
			return appErr, true
		}
		err = stdErrors.Unwrap(err)
	}
	return AppError{}, false
}

func newError(code ErrorCode, httpCode int, message string, raw error) AppError {
	return AppError{
		Raw:       raw,
		HTTPCode:  httpCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// General Errors
func ErrInternal(err error) AppError {
	return newError(ErrorCode_INTERNAL, http.StatusInternalServerError, "Internal server error", err)
}

func ErrInvalidArgument(message string) AppError {
	return newError(ErrorCode_INVALID_ARGUMENT, http.StatusBadRequest, message, nil)
}

func ErrInvalidPayload() AppError {
	return newError(ErrorCode_INVALID_PAYLOAD, http.StatusBadRequest, "Invalid payload", nil)
}

func ErrNotFound(resource string) AppError {
	return newError(ErrorCode_NOT_FOUND, http.StatusNotFound, fmt.Sprintf("%s not found", resource), nil)
}

func ErrUnauthenticated() AppError {
	return newError(ErrorCode_UNAUTHENTICATED, http.StatusUnauthorized, "Authentication required", nil)
}

// Pipeline Errors

// ErrValidation reports bad or missing caller input
func ErrValidation(message string) AppError {
	return newError(ErrorCode_VALIDATION, http.StatusBadRequest, message, nil)
}

// ErrConfiguration reports missing task-board credentials
func ErrConfiguration(message string) AppError {
	return newError(ErrorCode_CONFIGURATION, http.StatusPreconditionFailed, message, nil)
}

// ErrPrecondition reports an operation invoked in the wrong stage
func ErrPrecondition(message string) AppError {
	return newError(ErrorCode_PRECONDITION, http.StatusConflict, message, nil)
}

// ErrCancelled reports a user-initiated abort
func ErrCancelled(err error) AppError {
	return newError(ErrorCode_CANCELLED, StatusClientClosedRequest, "Upload cancelled by user", err)
}

// ErrRemoteService reports a non-success response or transport failure from a remote API.
// status is 0 when no response was received.
func ErrRemoteService(service string, status int, body string, err error) AppError {
	appErr := newError(ErrorCode_REMOTE_SERVICE, http.StatusBadGateway, fmt.Sprintf("%s request failed", service), err)
	appErr.UpstreamStatus = status
	appErr.UpstreamBody = body
	if status != 0 {
		appErr.Message = fmt.Sprintf("%s returned status %d", service, status)
	}
	return appErr.WithDetail("service", service)
}

func ErrUpload(err error) AppError {
	return newError(ErrorCode_UPLOAD_FAILED, http.StatusBadGateway, "Failed to upload file or get transcription", err)
}

func ErrSummarization(err error) AppError {
	return newError(ErrorCode_SUMMARIZATION_FAILED, http.StatusBadGateway, "Failed to generate summary", err)
}

func ErrTaskExtraction(err error) AppError {
	return newError(ErrorCode_TASK_EXTRACTION_FAILED, http.StatusBadGateway, "Failed to extract tasks", err)
}

func ErrPublish(err error) AppError {
	return newError(ErrorCode_PUBLISH_FAILED, http.StatusBadGateway, "Failed to create Trello card", err)
}

func ErrRecordNotFound(recordID string) AppError {
	return ErrNotFound("Meeting record").WithDetail("record_id", recordID)
}

// Authentication Errors
func ErrInvalidToken() AppError {
	return newError(ErrorCode_AUTH_INVALID_TOKEN, http.StatusUnauthorized, "Invalid authentication token", nil)
}

func ErrInvalidCredentials() AppError {
	return newError(ErrorCode_AUTH_INVALID_CREDENTIALS, http.StatusUnauthorized, "Invalid email or password", nil)
}

func ErrUserAlreadyExists(email string) AppError {
	return newError(ErrorCode_AUTH_USER_ALREADY_EXISTS, http.StatusConflict, "User already exists", nil).
		WithDetail("email", email)
}

func ErrAuthProviderFailed(err error) AppError {
	return newError(ErrorCode_AUTH_PROVIDER_FAILED, http.StatusBadGateway, "Authentication provider request failed", err)
}
