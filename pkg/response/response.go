// Package response defines the JSON envelope every endpoint replies
// with: a success/error marker, the HTTP status code echoed in the
// body, and either the payload or a human-readable error message.
package response

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the envelope written on every endpoint.
type Response struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success wraps a payload for a 2xx reply.
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     statusSuccess,
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error wraps a message for a non-2xx reply.
func Error(statusCode int, message string) Response {
	return Response{
		Status:     statusError,
		StatusCode: statusCode,
		Error:      message,
	}
}
