package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/murmur-app/murmur-backend/internal/service"
)

type RelationshipHandler struct {
	svc service.RelationshipService
}

func NewRelationshipHandler(svc service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{svc: svc}
}

type CanMessageResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func (h *RelationshipHandler) uidAndTarget(c echo.Context) (uint64, uint64, error) {
	uid, _ := c.Get("uid").(uint64)
	if uid == 0 {
		return 0, 0, c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	target, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, 0, c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid user id"))
	}
	return uid, target, nil
}

func (h *RelationshipHandler) CanMessage(c echo.Context) error {
	uid, target, err := h.uidAndTarget(c)
	if err != nil {
		return err
	}
	decision, err := h.svc.CanMessage(c.Request().Context(), uid, target)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, CanMessageResponse{
		Allowed: decision.Allowed,
		Reason:  string(decision.Reason),
	})
}

func (h *RelationshipHandler) Follow(c echo.Context) error {
	uid, target, err := h.uidAndTarget(c)
	if err != nil {
		return err
	}
	if err := h.svc.Follow(c.Request().Context(), uid, target); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RelationshipHandler) Unfollow(c echo.Context) error {
	uid, target, err := h.uidAndTarget(c)
	if err != nil {
		return err
	}
	if err := h.svc.Unfollow(c.Request().Context(), uid, target); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RelationshipHandler) Block(c echo.Context) error {
	uid, target, err := h.uidAndTarget(c)
	if err != nil {
		return err
	}
	if err := h.svc.Block(c.Request().Context(), uid, target); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RelationshipHandler) Unblock(c echo.Context) error {
	uid, target, err := h.uidAndTarget(c)
	if err != nil {
		return err
	}
	if err := h.svc.Unblock(c.Request().Context(), uid, target); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
