package middleware

import (
	"context"
	"errors"
	"testing"

	"steampool/internal/dispatch"
	"steampool/internal/subscription"
	"steampool/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubscription(t *testing.T) {
	tests := []struct {
		name        string
		update      dispatch.Update
		member      bool
		memberErr   error
		expectQuery bool
		wantNext    bool
	}{
		{
			name:        "member passes",
			update:      dispatch.Update{Kind: dispatch.KindCommand, UserID: 1, Command: "/start"},
			member:      true,
			expectQuery: true,
			wantNext:    true,
		},
		{
			name:        "non-member is blocked",
			update:      dispatch.Update{Kind: dispatch.KindText, UserID: 1, Text: "bob"},
			expectQuery: true,
		},
		{
			name:        "failed query is blocked",
			update:      dispatch.Update{Kind: dispatch.KindCallback, UserID: 1, Key: "add_account"},
			memberErr:   errors.New("api down"),
			expectQuery: true,
		},
		{
			name:     "exempt callback skips the gate",
			update:   dispatch.Update{Kind: dispatch.KindCallback, UserID: 1, Key: "check_subscription"},
			wantNext: true,
		},
		{
			name:        "exempt key only applies to callbacks",
			update:      dispatch.Update{Kind: dispatch.KindCommand, UserID: 1, Command: "check_subscription"},
			expectQuery: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(testutil.MockMembershipChecker)
			if tt.expectQuery {
				checker.On("IsMember", mock.Anything, int64(1)).Return(tt.member, tt.memberErr).Once()
			}
			gate := subscription.NewGate(checker, subscription.NewMemoryStore(), testutil.NewTestLogger())

			nextRan, blockedRan := false, false
			next := func(_ context.Context, _ *dispatch.Update) error {
				nextRan = true
				return nil
			}
			blocked := func(_ context.Context, _ *dispatch.Update) error {
				blockedRan = true
				return nil
			}

			h := Subscription(gate, blocked, testutil.NewTestLogger(), "check_subscription")(next)
			u := tt.update
			require.NoError(t, h(context.Background(), &u))

			assert.Equal(t, tt.wantNext, nextRan)
			assert.Equal(t, !tt.wantNext, blockedRan)
			checker.AssertExpectations(t)
		})
	}
}

func TestLogging(t *testing.T) {
	logger, logs := testutil.NewObservedLogger()
	h := Logging(logger)(func(_ context.Context, _ *dispatch.Update) error {
		return nil
	})

	u := &dispatch.Update{ID: "req-1", Kind: dispatch.KindCallback, UserID: 4, Key: "view_accounts", Payload: "2"}
	require.NoError(t, h(context.Background(), u))

	entries := logs.FilterMessage("Update handled").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, int64(4), fields["user_id"])
	assert.Equal(t, "view_accounts", fields["key"])
	assert.Equal(t, "callback", fields["kind"])
}

func TestLogging_Error(t *testing.T) {
	logger, logs := testutil.NewObservedLogger()
	boom := errors.New("boom")
	h := Logging(logger)(func(_ context.Context, _ *dispatch.Update) error {
		return boom
	})

	err := h(context.Background(), &dispatch.Update{Kind: dispatch.KindText})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, logs.FilterMessage("Update failed").Len())
}

func TestRecover(t *testing.T) {
	h := Recover(testutil.NewTestLogger())(func(_ context.Context, _ *dispatch.Update) error {
		panic("boom")
	})

	err := h(context.Background(), &dispatch.Update{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
