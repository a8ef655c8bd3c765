package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/foundly/foundly-api/internal/application"
	"github.com/foundly/foundly-api/internal/domain/entity"
)

func newCachedService(t *testing.T) (*application.UsersService, *stubRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := newStubRepo()
	return application.NewUsersService(repo, rdb, nil, nil, "", time.Minute), repo, mr
}

func TestFindByIDReadsThroughCache(t *testing.T) {
	svc, repo, mr := newCachedService(t)
	ctx := context.Background()
	ids := seedUsers(t, svc, 1)

	d, err := svc.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.True(t, mr.Exists("user:id:"+ids[0]))

	// a write that sidesteps the service is not visible until the TTL
	// runs out; the second read must come from the cache
	repo.users[ids[0]].FirstName = "Changed"
	again, err := svc.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, d.FirstName, again.FirstName)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	svc, _, mr := newCachedService(t)
	ctx := context.Background()
	ids := seedUsers(t, svc, 1)

	_, err := svc.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.True(t, mr.Exists("user:id:"+ids[0]))

	first := "Janet"
	_, err = svc.Update(ctx, ids[0], application.UpdateUserInput{FirstName: &first})
	require.NoError(t, err)
	require.False(t, mr.Exists("user:id:"+ids[0]))

	d, err := svc.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, "Janet", d.FirstName)
}

func TestSetVerifiedInvalidatesCache(t *testing.T) {
	svc, _, _ := newCachedService(t)
	ctx := context.Background()
	ids := seedUsers(t, svc, 1)

	d, err := svc.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.False(t, d.EmailVerified)

	require.NoError(t, svc.SetVerified(ctx, ids[0]))

	d, err = svc.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.True(t, d.EmailVerified)
}

func TestSetVerifiedUnknownUser(t *testing.T) {
	svc, _, _ := newCachedService(t)

	err := svc.SetVerified(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, application.ErrUserNotFound)
}

func TestUpdatePasswordInvalidatesCache(t *testing.T) {
	svc, repo, mr := newCachedService(t)
	ctx := context.Background()
	ids := seedUsers(t, svc, 1)

	_, err := svc.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.True(t, mr.Exists("user:id:"+ids[0]))

	require.NoError(t, svc.UpdatePassword(ctx, ids[0], "$2a$10$newhashnewhashnewhashn"))
	require.False(t, mr.Exists("user:id:"+ids[0]))
	require.Equal(t, "$2a$10$newhashnewhashnewhashn", repo.users[ids[0]].Password)
}

func TestUpdatePasswordUnknownUser(t *testing.T) {
	svc, _, _ := newCachedService(t)

	err := svc.UpdatePassword(context.Background(), uuid.NewString(), "hash")
	require.ErrorIs(t, err, application.ErrUserNotFound)
}

func TestRemoveInvalidatesCache(t *testing.T) {
	svc, _, mr := newCachedService(t)
	ctx := context.Background()
	ids := seedUsers(t, svc, 1)

	_, err := svc.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.True(t, mr.Exists("user:id:"+ids[0]))

	_, err = svc.Remove(ctx, ids[0])
	require.NoError(t, err)
	require.False(t, mr.Exists("user:id:"+ids[0]))

	d, err := svc.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, entity.StatusDeleted, d.Status)
}

func TestHardDeleteInvalidatesCache(t *testing.T) {
	svc, _, mr := newCachedService(t)
	ctx := context.Background()
	ids := seedUsers(t, svc, 1)

	_, err := svc.FindByID(ctx, ids[0])
	require.NoError(t, err)

	require.NoError(t, svc.HardDelete(ctx, ids[0]))
	require.False(t, mr.Exists("user:id:"+ids[0]))

	_, err = svc.FindByID(ctx, ids[0])
	require.ErrorIs(t, err, application.ErrUserNotFound)
}
