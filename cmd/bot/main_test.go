package main

import (
	"context"
	"testing"
	"time"

	"steampool/internal/config"
	"steampool/internal/conversation"
	"steampool/internal/dispatch"
	"steampool/internal/domain"
	"steampool/internal/subscription"
	"steampool/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestOpenCache_Memory(t *testing.T) {
	cache, memory, err := openCache(context.Background(), &config.Config{CacheDriver: config.CacheMemory})
	require.NoError(t, err)
	require.NotNil(t, memory)
	assert.Same(t, memory, cache.Store)
	assert.NoError(t, cache.Close())
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runJanitor(ctx, nil, subscription.NewMemoryStore(), time.Hour, time.Minute, testutil.NewTestLogger())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate"}, names)

	flag := root.PersistentFlags().Lookup("migrations")
	require.NotNil(t, flag)
	assert.Equal(t, "file://migrations", flag.DefValue)
}

func TestHandlerContext(t *testing.T) {
	parent, stop := context.WithCancel(context.Background())
	ctx, cancel := handlerContext(parent)
	defer cancel()

	stop()
	assert.NoError(t, ctx.Err())

	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestDrain_LetsTurnsFinish(t *testing.T) {
	logger := testutil.NewTestLogger()
	loop := dispatch.NewLoop(logger)
	ctx, cancel := handlerContext(context.Background())
	defer cancel()

	var seen error
	require.NoError(t, loop.Submit(1, func() {
		time.Sleep(20 * time.Millisecond)
		seen = ctx.Err()
	}))

	drain(loop, cancel, time.Second, logger)
	assert.NoError(t, seen)
	assert.Equal(t, 0, loop.Busy())
}

func TestDrain_CancelsTurnsAfterTimeout(t *testing.T) {
	logger := testutil.NewTestLogger()
	loop := dispatch.NewLoop(logger)
	ctx, cancel := handlerContext(context.Background())
	defer cancel()

	finished := make(chan struct{})
	require.NoError(t, loop.Submit(1, func() {
		<-ctx.Done()
		close(finished)
	}))

	drain(loop, cancel, 20*time.Millisecond, logger)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("turn context was not cancelled")
	}
}

func TestJanitorPass(t *testing.T) {
	logger, logs := testutil.NewObservedLogger()
	engine := conversation.NewEngine(testutil.NewFakeMessenger(), logger)
	memory := subscription.NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	engine.Start(7, domain.MessageRef{ChatID: 7, MessageID: 1}, domain.Step{Flow: domain.FlowSearch, Kind: domain.StepAwaitingExtra, Extra: domain.ExtraQuery}, domain.Draft{})
	require.NoError(t, memory.Put(ctx, subscription.Entry{UserID: 1, Subscribed: true, CheckedAt: now.Add(-time.Hour)}))
	require.NoError(t, memory.Put(ctx, subscription.Entry{UserID: 2, Subscribed: true, CheckedAt: now}))
	_, err := memory.Get(ctx, 2)
	require.NoError(t, err)
	_, err = memory.Get(ctx, 3)
	require.ErrorIs(t, err, subscription.ErrCacheMiss)

	janitorPass(engine, memory, time.Hour, 15*time.Minute, now, logger)

	entries := logs.FilterMessage("Janitor pass").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(0), fields["conversations"])
	assert.Equal(t, int64(1), fields["active"])
	assert.Equal(t, int64(1), fields["cache_entries"])
	assert.Equal(t, int64(1), fields["cache_size"])
	assert.Equal(t, int64(1), fields["cache_hits"])
	assert.Equal(t, int64(1), fields["cache_misses"])
}
