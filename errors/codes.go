package errors

// ErrorCode identifies the kind of an AppError independent of its message
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = 0
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1003
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1004

	// Pipeline
	ErrorCode_VALIDATION             ErrorCode = 2000
	ErrorCode_CONFIGURATION          ErrorCode = 2001
	ErrorCode_PRECONDITION           ErrorCode = 2002
	ErrorCode_CANCELLED              ErrorCode = 2003
	ErrorCode_REMOTE_SERVICE         ErrorCode = 2100
	ErrorCode_UPLOAD_FAILED          ErrorCode = 2101
	ErrorCode_SUMMARIZATION_FAILED   ErrorCode = 2102
	ErrorCode_TASK_EXTRACTION_FAILED ErrorCode = 2103
	ErrorCode_PUBLISH_FAILED         ErrorCode = 2104

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN       ErrorCode = 3000
	ErrorCode_AUTH_INVALID_CREDENTIALS ErrorCode = 3001
	ErrorCode_AUTH_USER_ALREADY_EXISTS ErrorCode = 3002
	ErrorCode_AUTH_PROVIDER_FAILED     ErrorCode = 3003
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                  "UNKNOWN",
	ErrorCode_HTTP_OK:                  "HTTP_OK",
	ErrorCode_INTERNAL:                 "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:         "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                "NOT_FOUND",
	ErrorCode_UNAUTHENTICATED:          "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:          "INVALID_PAYLOAD",
	ErrorCode_VALIDATION:               "VALIDATION",
	ErrorCode_CONFIGURATION:            "CONFIGURATION",
	ErrorCode_PRECONDITION:             "PRECONDITION",
	ErrorCode_CANCELLED:                "CANCELLED",
	ErrorCode_REMOTE_SERVICE:           "REMOTE_SERVICE",
	ErrorCode_UPLOAD_FAILED:            "UPLOAD_FAILED",
	ErrorCode_SUMMARIZATION_FAILED:     "SUMMARIZATION_FAILED",
	ErrorCode_TASK_EXTRACTION_FAILED:   "TASK_EXTRACTION_FAILED",
	ErrorCode_PUBLISH_FAILED:           "PUBLISH_FAILED",
	ErrorCode_AUTH_INVALID_TOKEN:       "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_INVALID_CREDENTIALS: "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_USER_ALREADY_EXISTS: "AUTH_USER_ALREADY_EXISTS",
	ErrorCode_AUTH_PROVIDER_FAILED:     "AUTH_PROVIDER_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText renders the code by name in JSON bodies
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
