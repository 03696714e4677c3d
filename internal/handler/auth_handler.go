package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/murmur-app/murmur-backend/internal/middleware"
	"github.com/murmur-app/murmur-backend/internal/model"
	"github.com/murmur-app/murmur-backend/internal/service"
)

type AuthHandler struct {
	svc  service.UserService
	auth *middleware.AuthMiddleware
}

func NewAuthHandler(svc service.UserService, auth *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{svc: svc, auth: auth}
}

type RegisterRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "username and password are required"))
	}
	u, err := h.svc.Register(c.Request().Context(), req.Username, req.DisplayName, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	token, err := h.auth.GenerateToken(u.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, SessionResponse{Token: token, User: u})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	u, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	token, err := h.auth.GenerateToken(u.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, SessionResponse{Token: token, User: u})
}
