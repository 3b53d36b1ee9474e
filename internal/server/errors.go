package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/gazette-ocr/internal/common"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, body := errorResponse(err)
	log := s.logger.Warn
	if status >= http.StatusInternalServerError {
		log = s.logger.Error
	}
	log("request failed",
		"path", c.Request().URL.Path,
		"status", status,
		"error_code", body.ErrorCode,
		"error", err,
		"request_id", common.RequestIDFromContext(c.Request().Context()),
	)
	_ = c.JSON(status, body)
}

func errorResponse(err error) (int, ErrorBody) {
	var ae *common.AppError
	if errors.As(err, &ae) {
		return common.HTTPStatus(ae.Kind), ErrorBody{ErrorCode: string(ae.Kind), Message: ae.Message, Detail: ae.Detail}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorBody{ErrorCode: string(kindForStatus(he.Code)), Message: fmt.Sprint(he.Message)}
	}
	return http.StatusInternalServerError, ErrorBody{ErrorCode: string(common.KindInternal), Message: "internal server error"}
}

func kindForStatus(code int) common.Kind {
	switch code {
	case http.StatusNotFound:
		return common.KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusMethodNotAllowed, http.StatusRequestEntityTooLarge:
		return common.KindInvalidInput
	default:
		return common.KindInternal
	}
}

func invalidInput(msg string) error {
	return common.NewAppError(common.KindInvalidInput, msg, common.ErrInvalidInput)
}
