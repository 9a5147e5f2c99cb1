package redisstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/jrsteele09/go-waterres-client/kvstore"
	"github.com/jrsteele09/go-waterres-client/kvstore/redisstore"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := redisstore.New(db)

	mock.ExpectGet("waterres:water_resources_token").RedisNil()
	mock.ExpectSet("waterres:water_resources_token", "a.b.c", 0).SetVal("OK")
	mock.ExpectGet("waterres:water_resources_token").SetVal("a.b.c")
	mock.ExpectDel("waterres:water_resources_token").SetVal(1)

	_, err := s.Get(ctx, "water_resources_token")
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, s.Set(ctx, "water_resources_token", "a.b.c"))

	v, err := s.Get(ctx, "water_resources_token")
	require.NoError(t, err)
	require.Equal(t, "a.b.c", v)

	require.NoError(t, s.Delete(ctx, "water_resources_token"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_PrefixAndErrors(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := redisstore.New(db, redisstore.WithPrefix("kiosk-7:"))

	mock.ExpectGet("kiosk-7:k").SetErr(errors.New("connection refused"))
	mock.ExpectPing().SetVal("PONG")

	_, err := s.Get(ctx, "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, kvstore.ErrNotFound)
	require.Contains(t, err.Error(), "connection refused")

	require.NoError(t, s.HealthCheck(ctx))
	require.Error(t, s.Set(ctx, "", "v"))
	require.NoError(t, mock.ExpectationsWereMet())
}
