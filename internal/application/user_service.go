package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/foundly/foundly-api/internal/domain/entity"
	repo "github.com/foundly/foundly-api/internal/domain/repository"
	"github.com/foundly/foundly-api/pkg/helpers"
)

var (
	ErrEmailExists  = errors.New("user with this email already exists")
	ErrUserNotFound = errors.New("user not found")
)

func cacheKeyUser(id string) string {
	return "user:id:" + id
}

// UsersService owns the rules around user records: uniqueness on create,
// existence on every read-back, soft/hard delete, and response shaping.
// Redis and Elasticsearch are optional collaborators; a nil client turns
// the cache or the search index off.
type UsersService struct {
	Repo         repo.UserRepository
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	CacheTTL     time.Duration
}

func NewUsersService(repo repo.UserRepository, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, cacheTTL time.Duration) *UsersService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &UsersService{
		Repo:         repo,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		CacheTTL:     cacheTTL,
	}
}

type CreateUserInput struct {
	Email     string
	Password  string // bcrypt hash; hashing happens at the boundary
	FirstName string
	LastName  string
	Role      entity.UserRole
	Avatar    string
}

type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Avatar    *string
	Role      *entity.UserRole
}

// UserView is the projection returned by create, list and update. It
// never carries the password hash or the profile relation.
type UserView struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name,omitempty"`
	Role          entity.UserRole   `json:"role"`
	Status        entity.UserStatus `json:"status"`
	Avatar        string            `json:"avatar,omitempty"`
	EmailVerified bool              `json:"email_verified"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// UserDetail extends UserView with the last login time and the profile
// relation; only FindByID returns it.
type UserDetail struct {
	UserView
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	Profile     *entity.Profile `json:"profile,omitempty"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

type UserList struct {
	Users      []UserView `json:"users"`
	Pagination Pagination `json:"pagination"`
}

func viewOf(u *entity.User) *UserView {
	return &UserView{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		Status:        u.Status,
		Avatar:        u.Avatar,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func detailOf(u *entity.User) *UserDetail {
	return &UserDetail{
		UserView:    *viewOf(u),
		LastLoginAt: u.LastLoginAt,
		Profile:     u.Profile,
	}
}

// Create inserts a new user after checking the email is free among
// non-deleted records. The storage-level unique constraint backs the
// check up; both paths surface ErrEmailExists.
func (s *UsersService) Create(ctx context.Context, in CreateUserInput) (*UserView, error) {
	_, err := s.Repo.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	u := &entity.User{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
		Status:    entity.StatusActive,
		Avatar:    in.Avatar,
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.indexUser(ctx, u)
	return viewOf(u), nil
}

// FindAll returns one page of non-deleted users, newest first, plus
// pagination metadata. Page and count queries run concurrently; both are
// read-only so ordering between them does not matter. Page and limit are
// forwarded untouched; the persistence layer owns out-of-range behavior.
func (s *UsersService) FindAll(ctx context.Context, page, limit int) (*UserList, error) {
	offset := (page - 1) * limit

	var (
		users []entity.User
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.Repo.List(gctx, offset, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.Repo.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, *viewOf(&users[i]))
	}
	return &UserList{
		Users: views,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, nil
}

// FindByID returns the extended projection, soft-deleted records
// included. Reads go through the redis cache when one is configured.
func (s *UsersService) FindByID(ctx context.Context, id string) (*UserDetail, error) {
	if s.Redis != nil {
		var cached UserDetail
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, cacheKeyUser(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	d := detailOf(u)
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, cacheKeyUser(id), d, s.CacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("user cache write failed")
		}
	}
	return d, nil
}

// FindByEmail returns the full stored record, password hash included.
// It exists for credential verification; callers must not serialize the
// result onto an unauthenticated response path. Absence propagates as
// the repository's not-found error.
func (s *UsersService) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.Repo.GetByEmail(ctx, email)
}

// Update patches mutable profile fields and returns the standard
// projection. The read doubles as the existence check; a delete racing
// in between surfaces as ErrUserNotFound from the update itself.
func (s *UsersService) Update(ctx context.Context, id string, in UpdateUserInput) (*UserView, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	if in.Role != nil {
		u.Role = *in.Role
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.invalidate(ctx, id)
	if u.Status != entity.StatusDeleted {
		s.indexUser(ctx, u)
	}
	return viewOf(u), nil
}

// SetVerified marks the user's email address as verified.
func (s *UsersService) SetVerified(ctx context.Context, id string) error {
	if err := s.Repo.SetVerified(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *UsersService) UpdatePassword(ctx context.Context, id, hash string) error {
	if err := s.Repo.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Remove soft-deletes: the status flips to DELETED and the row stays.
// The record drops out of listings and of the search index but remains
// retrievable by id.
func (s *UsersService) Remove(ctx context.Context, id string) (*UserView, error) {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	u, err := s.Repo.UpdateStatus(ctx, id, entity.StatusDeleted)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.invalidate(ctx, id)
	s.removeFromIndex(ctx, id)
	return viewOf(u), nil
}

// HardDelete physically removes the row.
func (s *UsersService) HardDelete(ctx context.Context, id string) error {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.invalidate(ctx, id)
	s.removeFromIndex(ctx, id)
	return nil
}

func (s *UsersService) invalidate(ctx context.Context, id string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, cacheKeyUser(id)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("user cache invalidation failed")
	}
}

func (s *UsersService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"avatar":     u.Avatar,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

func (s *UsersService) removeFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match query on email and name fields.
func (s *UsersService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
