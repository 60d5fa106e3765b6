package subscription

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_PutGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, DefaultTTL)
	ctx := context.Background()

	entry := Entry{UserID: 7, Subscribed: true, CheckedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(entry)
	require.NoError(t, err)

	mock.ExpectSet("steampool:subscription:7", string(data), DefaultTTL).SetVal("OK")
	require.NoError(t, store.Put(ctx, entry))

	mock.ExpectGet("steampool:subscription:7").SetVal(string(data))
	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, entry.UserID, got.UserID)
	assert.True(t, got.Subscribed)
	assert.True(t, entry.CheckedAt.Equal(got.CheckedAt))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, DefaultTTL)

	mock.ExpectGet("steampool:subscription:8").RedisNil()

	_, err := store.Get(context.Background(), 8)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_CorruptEntry(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, DefaultTTL)

	mock.ExpectGet("steampool:subscription:9").SetVal("{not json")

	_, err := store.Get(context.Background(), 9)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
