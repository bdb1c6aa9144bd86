package handler

import (
	"net/http"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/akilliyazili/yazili-backend/internal/service"
	"github.com/akilliyazili/yazili-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// UserHandler handles profile and user listing endpoints.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers godoc
// GET /api/users
// Admin listing of users, optionally filtered by role.
func (h *UserHandler) ListUsers(c *gin.Context) {
	var f model.UserFilter
	if fields := validator.BindQuery(c, &f); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	users, pagination, err := h.userService.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, pagination)
}

// GetProfile godoc
// GET /api/users/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	u, err := h.userService.Get(c.Request.Context(), a.UserID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": u})
}

// UpdateProfile godoc
// PUT /api/users/profile
// Updates name, email or profile picture of the caller.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	u, err := h.userService.UpdateProfile(c.Request.Context(), a, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": u})
}
