package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/foundly/foundly-api/internal/application"
	"github.com/foundly/foundly-api/internal/domain/entity"
	"github.com/foundly/foundly-api/internal/domain/repository"
	handlers "github.com/foundly/foundly-api/internal/interface/http"
	"github.com/foundly/foundly-api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// memRepo is a minimal in-memory UserRepository for handler tests.
type memRepo struct {
	users map[string]*entity.User
}

func newMemRepo() *memRepo { return &memRepo{users: map[string]*entity.User{}} }

func (r *memRepo) Create(_ context.Context, u *entity.User) error {
	for _, e := range r.users {
		if e.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) List(_ context.Context, offset, limit int) ([]entity.User, error) {
	var all []entity.User
	for _, u := range r.users {
		if u.Status != entity.StatusDeleted {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []entity.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memRepo) Count(_ context.Context) (int, error) {
	n := 0
	for _, u := range r.users {
		if u.Status != entity.StatusDeleted {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) Update(_ context.Context, u *entity.User) error {
	e, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	e.FirstName, e.LastName, e.Avatar, e.Role = u.FirstName, u.LastName, u.Avatar, u.Role
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id string, status entity.UserStatus) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (r *memRepo) UpdateLastLogin(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	return nil
}

func (r *memRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (r *memRepo) SetVerified(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

var _ repository.UserRepository = (*memRepo)(nil)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   json.RawMessage `json:"error"`
}

func adminRouter(repo repository.UserRepository) *gin.Engine {
	users := application.NewUsersService(repo, nil, nil, nil, "", 0)
	h := handlers.NewAdminHandler(users, nil)

	r := gin.New()
	r.GET("/admin/users", h.List)
	r.POST("/admin/users", h.Create)
	r.GET("/admin/users/:id", h.Get)
	r.PATCH("/admin/users/:id", h.Update)
	r.DELETE("/admin/users/:id", h.Remove)
	r.DELETE("/admin/users/:id/permanent", h.HardDelete)
	return r
}

func seedRepo(t *testing.T, repo *memRepo, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		u := &entity.User{
			Email:     fmt.Sprintf("user%02d@example.com", i),
			Password:  "hash",
			FirstName: fmt.Sprintf("User%02d", i),
			Role:      entity.RoleUser,
			Status:    entity.StatusActive,
		}
		require.NoError(t, repo.Create(context.Background(), u))
		u.CreatedAt = u.CreatedAt.Add(time.Duration(i) * time.Second)
		repo.users[u.ID].CreatedAt = u.CreatedAt
		ids = append(ids, u.ID)
	}
	return ids
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminListDefaults(t *testing.T) {
	repo := newMemRepo()
	seedRepo(t, repo, 15)
	r := adminRouter(repo)

	w := doJSON(r, http.MethodGet, "/admin/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success)

	var users []application.UserView
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 10)

	var meta application.Pagination
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	require.Equal(t, 15, meta.Total)
	require.Equal(t, 1, meta.Page)
	require.Equal(t, 10, meta.Limit)
	require.Equal(t, 2, meta.TotalPages)
}

func TestAdminListSecondPage(t *testing.T) {
	repo := newMemRepo()
	seedRepo(t, repo, 15)
	r := adminRouter(repo)

	w := doJSON(r, http.MethodGet, "/admin/users?page=2&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var users []application.UserView
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 5)
}

func TestAdminListBadParamsFallBack(t *testing.T) {
	repo := newMemRepo()
	seedRepo(t, repo, 3)
	r := adminRouter(repo)

	w := doJSON(r, http.MethodGet, "/admin/users?page=zero&limit=-4", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var meta application.Pagination
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	require.Equal(t, 1, meta.Page)
	require.Equal(t, 10, meta.Limit)
}

func TestAdminCreate(t *testing.T) {
	repo := newMemRepo()
	r := adminRouter(repo)

	w := doJSON(r, http.MethodPost, "/admin/users", gin.H{
		"email":      "new@example.com",
		"password":   "longenough",
		"first_name": "New",
		"role":       "ADMIN",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var v application.UserView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.Equal(t, "new@example.com", v.Email)
	require.Equal(t, entity.RoleAdmin, v.Role)

	// password hash never leaves the service
	require.NotContains(t, w.Body.String(), "longenough")
	require.NotContains(t, w.Body.String(), "password")
}

func TestAdminCreateConflict(t *testing.T) {
	repo := newMemRepo()
	seedRepo(t, repo, 1)
	r := adminRouter(repo)

	w := doJSON(r, http.MethodPost, "/admin/users", gin.H{
		"email":      "user00@example.com",
		"password":   "longenough",
		"first_name": "Dup",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminCreateValidation(t *testing.T) {
	repo := newMemRepo()
	r := adminRouter(repo)

	w := doJSON(r, http.MethodPost, "/admin/users", gin.H{
		"email":      "not-an-email",
		"password":   "short",
		"first_name": "",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminGetNotFound(t *testing.T) {
	repo := newMemRepo()
	r := adminRouter(repo)

	w := doJSON(r, http.MethodGet, "/admin/users/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUpdate(t *testing.T) {
	repo := newMemRepo()
	ids := seedRepo(t, repo, 1)
	r := adminRouter(repo)

	w := doJSON(r, http.MethodPatch, "/admin/users/"+ids[0], gin.H{
		"first_name": "Renamed",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var v application.UserView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.Equal(t, "Renamed", v.FirstName)
	require.Equal(t, "user00@example.com", v.Email)
}

func TestAdminRemoveThenGet(t *testing.T) {
	repo := newMemRepo()
	ids := seedRepo(t, repo, 1)
	r := adminRouter(repo)

	w := doJSON(r, http.MethodDelete, "/admin/users/"+ids[0], nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var v application.UserView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.Equal(t, entity.StatusDeleted, v.Status)

	// still retrievable by id after the soft delete
	w = doJSON(r, http.MethodGet, "/admin/users/"+ids[0], nil)
	require.Equal(t, http.StatusOK, w.Code)

	// but gone from the listing
	w = doJSON(r, http.MethodGet, "/admin/users", nil)
	var listEnv envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listEnv))
	var meta application.Pagination
	require.NoError(t, json.Unmarshal(listEnv.Meta, &meta))
	require.Equal(t, 0, meta.Total)
}

func TestAdminHardDelete(t *testing.T) {
	repo := newMemRepo()
	ids := seedRepo(t, repo, 1)
	r := adminRouter(repo)

	w := doJSON(r, http.MethodDelete, "/admin/users/"+ids[0]+"/permanent", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/admin/users/"+ids[0], nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, "/admin/users/"+ids[0]+"/permanent", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
