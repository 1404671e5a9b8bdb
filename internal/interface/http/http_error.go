package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/familylog/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError maps an application error code onto a response; fallback names
// the failure when the code carries no client meaning.
func fromDomainError(err error, fallback string) *HTTPError {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.CodeNotFound:
		return NewHTTPError(http.StatusNotFound, "not_found", errMessage(err), err)
	case apperrors.CodeUnauthorized:
		return NewHTTPError(http.StatusUnauthorized, "unauthorized", errMessage(err), err)
	case apperrors.CodeInvalidToken:
		return NewHTTPError(http.StatusForbidden, "invalid_token", errMessage(err), err)
	case apperrors.CodeDealSearch, apperrors.CodeReminderFailure:
		return NewHTTPError(http.StatusBadGateway, fallback, errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, fallback, errMessage(err), err)
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
