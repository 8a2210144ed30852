package common

// SuccessResponse documents the success envelope written by the handlers
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse documents the error envelope written by the handlers
type ErrorResponse struct {
	Code           int               `json:"code"`
	Message        string            `json:"message"`
	Info           string            `json:"info,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
	UpstreamStatus int               `json:"upstream_status,omitempty"`
	UpstreamBody   string            `json:"upstream_body,omitempty"`
}

// MessageResponse is returned by operations without a payload
type MessageResponse struct {
	Message string `json:"message"`
}
