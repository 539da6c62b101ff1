package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the envelope.
const (
	CodeBadRequest = "bad_request"
	CodeNotFound   = "not_found"
	CodeInvalid    = "invalid_profile"
	CodeInternal   = "internal"
)

// APIError is the body of an error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps every error response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError aborts the request with the error envelope.
func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondOK writes payload with status 200.
func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
