package pkerror

import "net/http"

type (
	// A PKError represents the error format that can be rendered by the petryk server.
	PKError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Message string `json:"message"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if pkerr, ok := err.(*PKError); ok && pkerr.HTTPCode > 0 {
		return pkerr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new PKError with the given message.
func New(message string) *PKError {
	return &PKError{FieldError: err{Message: message}}
}

// NewWithCode returns a new PKError with the given HTTP status code and message.
func NewWithCode(code int, message string) *PKError {
	return &PKError{HTTPCode: code, FieldError: err{Message: message}}
}

// Error implements error interface.
func (e *PKError) Error() string {
	return e.FieldError.Message
}
