package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/tempcast/internal/domain/forecast"
	apperrors "github.com/yanqian/tempcast/pkg/errors"
)

// HTTPError is a failed request ready to be rendered as a JSON error envelope.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

// NewHTTPError builds an HTTPError.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// statusByCode maps outlook and forecast error codes to response statuses.
// Codes not listed here are server faults.
var statusByCode = map[string]int{
	apperrors.CodeInvalidInput:      http.StatusBadRequest,
	forecast.CodeInsufficientData:   http.StatusUnprocessableEntity,
	forecast.CodeInvalidForecastDay: http.StatusUnprocessableEntity,
	apperrors.CodeHistory:           http.StatusBadGateway,
	apperrors.CodeNotFound:          http.StatusNotFound,
	apperrors.CodeStorage:           http.StatusInternalServerError,
}

func fromServiceError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	if code == "" {
		return NewHTTPError(http.StatusInternalServerError, apperrors.CodeInternal, "something went wrong", err)
	}
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func asHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fromServiceError(err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	_ = c.Error(err)
	c.Abort()
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, err *HTTPError) {
	message := err.Message
	if message == "" {
		message = http.StatusText(err.Status)
	}
	c.JSON(err.Status, errorBody{Error: errorDetail{Code: err.Code, Message: message}})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
