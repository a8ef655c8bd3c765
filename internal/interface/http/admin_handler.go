package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/foundly/foundly-api/internal/application"
	"github.com/foundly/foundly-api/internal/domain/entity"
	"github.com/foundly/foundly-api/pkg/helpers"
	"github.com/foundly/foundly-api/pkg/response"
	"github.com/foundly/foundly-api/pkg/validation"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type AdminHandler struct {
	Users  *userapp.UsersService
	Logger *logrus.Logger
}

func NewAdminHandler(users *userapp.UsersService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Logger: logger}
}

// List GET /admin/users?page=1&limit=10
func (h *AdminHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	list, err := h.Users.FindAll(c.Request.Context(), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list.Users, "users", list.Pagination)
}

type createUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" binding:"omitempty,role"`
	Avatar    string `json:"avatar" binding:"omitempty,url"`
}

// Create POST /admin/users
func (h *AdminHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	hash, err := helpers.HashPassword(req.Password)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "hash fail", nil)
		return
	}
	view, err := h.Users.Create(c.Request.Context(), userapp.CreateUserInput{
		Email:     req.Email,
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      entity.UserRole(req.Role),
		Avatar:    req.Avatar,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view, "user created", nil)
}

// Get GET /admin/users/:id
func (h *AdminHandler) Get(c *gin.Context) {
	d, err := h.Users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d, "user", nil)
}

type updateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1"`
	LastName  *string `json:"last_name"`
	Avatar    *string `json:"avatar" binding:"omitempty,url"`
	Role      *string `json:"role" binding:"omitempty,role"`
}

// Update PATCH /admin/users/:id
func (h *AdminHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := userapp.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
	}
	if req.Role != nil {
		r := entity.UserRole(*req.Role)
		in.Role = &r
	}
	view, err := h.Users.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view, "user updated", nil)
}

// Remove DELETE /admin/users/:id marks the user DELETED; the row stays.
func (h *AdminHandler) Remove(c *gin.Context) {
	view, err := h.Users.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view, "user removed", nil)
}

// HardDelete DELETE /admin/users/:id/permanent removes the row and the
// profile with it.
func (h *AdminHandler) HardDelete(c *gin.Context) {
	if err := h.Users.HardDelete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user permanently deleted", nil)
}
