package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/eventmarket-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eventmarket-backend/internal/http/response"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

// AuthHandler предоставляет HTTP слой для регистрации, входа и статуса аккаунта.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	MobileNumber *string `json:"mobileNumber"`
	Role         string  `json:"role"`
}

// Register обрабатывает POST /users/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		MobileNumber: req.MobileNumber,
		Role:         req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Login обрабатывает POST /users/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Logout обрабатывает POST /users/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, err := common.CurrentClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"loggedOut": true})
}

// Me обрабатывает GET /users/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// UpdateAccountStatus обрабатывает PUT /admin/users/:id/status.
func (h *AuthHandler) UpdateAccountStatus(c *gin.Context) {
	caller, err := common.CurrentCaller(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		Status string  `json:"status" binding:"required"`
		Reason *string `json:"reason"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.auth.UpdateAccountStatus(c.Request.Context(), caller, userID, service.UpdateAccountStatusInput{
		Status: req.Status,
		Reason: req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}
