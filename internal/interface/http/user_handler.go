package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/foundly/foundly-api/internal/application"
	"github.com/foundly/foundly-api/internal/interface/middleware"
	"github.com/foundly/foundly-api/pkg/response"
	"github.com/foundly/foundly-api/pkg/validation"
)

const maxAvatarSize = 5 << 20

type UserHandler struct {
	Users  *userapp.UsersService
	Auth   *userapp.AuthService
	Logger *logrus.Logger
}

func NewUserHandler(users *userapp.UsersService, auth *userapp.AuthService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Auth: auth, Logger: logger}
}

// Me GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	d, err := h.Users.FindByID(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d, "profile", nil)
}

type updateMeRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1"`
	LastName  *string `json:"last_name"`
	Avatar    *string `json:"avatar" binding:"omitempty,url"`
}

// UpdateMe PATCH /users/me. Role changes are admin-only and not
// accepted here.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	view, err := h.Users.Update(c.Request.Context(), uid, userapp.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view, "profile updated", nil)
}

// UploadAvatar POST /users/me/avatar, multipart field "avatar".
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file required", nil)
		return
	}
	if fh.Size > maxAvatarSize {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "avatar exceeds 5MB", nil)
		return
	}
	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		response.Error[any](c, http.StatusBadRequest, "avatar must be an image", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "cannot read upload", nil)
		return
	}
	defer f.Close()

	uid := c.GetString(middleware.CtxUserIDKey)
	url, err := h.Auth.UploadAvatar(c.Request.Context(), uid, f, fh.Size, fh.Filename, ct)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar": url}, "avatar updated", nil)
}

// Search GET /users/search?q=...&size=10. Matches on email and names.
func (h *UserHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size := queryInt(c, "size", 10)
	hits, err := h.Users.Search(c.Request.Context(), q, size)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if hits == nil {
		hits = []map[string]any{}
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
