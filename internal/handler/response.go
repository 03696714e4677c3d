package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/murmur-app/murmur-backend/internal/reqctx"
	"github.com/murmur-app/murmur-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// writeServiceError maps service sentinels onto HTTP responses. Unknown
// conversations and conversations the caller is not part of render the same
// generic not-found body. Anything unrecognized is a storage-level fault and
// becomes a 500.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotParticipant):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "not found"))
	case errors.Is(err, service.ErrSelfConversation):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("self", "cannot message yourself"))
	case errors.Is(err, service.ErrBlocked):
		return c.JSON(http.StatusForbidden, NewErrorResponse("blocked", "messaging is blocked between these users"))
	case errors.Is(err, service.ErrNotMutualFollow):
		return c.JSON(http.StatusForbidden, NewErrorResponse("not_mutual_follow", "you must follow each other to start a conversation"))
	case errors.Is(err, service.ErrEmptyBody):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("empty_body", "body is required"))
	case errors.Is(err, service.ErrBodyTooLong):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("body_too_long", "body exceeds maximum length"))
	case errors.Is(err, service.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, NewErrorResponse("username_taken", "username already taken"))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("invalid_credentials", "invalid credentials"))
	case errors.Is(err, service.ErrAccountNotActive):
		return c.JSON(http.StatusForbidden, NewErrorResponse("account_not_active", "account is not active"))
	}
	ctx := c.Request().Context()
	slog.Error("request failed", "rid", reqctx.RID(ctx), "uid", reqctx.UID(ctx), "err", err)
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "internal error"))
}
