package handler

import (
	"errors"
	"testing"

	"steampool/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

func TestRenderKeyboard(t *testing.T) {
	kb := domain.NewKeyboard(
		domain.Row(domain.Link("Подписаться", "https://t.me/steampool")),
		domain.Row(
			domain.Data("<", "view_accounts", "1"),
			domain.Data("2/3", "current_page"),
		),
	)

	markup := renderKeyboard(kb)

	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 1)
	assert.Equal(t, "https://t.me/steampool", markup.InlineKeyboard[0][0].URL)

	require.Len(t, markup.InlineKeyboard[1], 2)
	assert.Equal(t, "<", markup.InlineKeyboard[1][0].Text)
	assert.Equal(t, "view_accounts", markup.InlineKeyboard[1][0].Unique)
	assert.Equal(t, "1", markup.InlineKeyboard[1][0].Data)
	assert.Equal(t, "current_page", markup.InlineKeyboard[1][1].Unique)
	assert.Empty(t, markup.InlineKeyboard[1][1].Data)
}

func TestOptions(t *testing.T) {
	assert.Nil(t, options(nil))
	assert.Len(t, options(domain.NewKeyboard()), 1)
}

func TestIsNotModified(t *testing.T) {
	assert.True(t, isNotModified(errors.New("telegram: Bad Request: message is not modified: specified new message content and reply markup are exactly the same (400)")))
	assert.False(t, isNotModified(errors.New("telegram: Bad Request: message to edit not found (400)")))
}

func TestStored(t *testing.T) {
	msgID, chatID := stored(domain.MessageRef{ChatID: 5, MessageID: 42}).MessageSig()
	assert.Equal(t, "42", msgID)
	assert.Equal(t, int64(5), chatID)
}

func TestIsMember(t *testing.T) {
	tests := []struct {
		name   string
		member *tele.ChatMember
		want   bool
	}{
		{name: "creator", member: &tele.ChatMember{Role: tele.Creator}, want: true},
		{name: "administrator", member: &tele.ChatMember{Role: tele.Administrator}, want: true},
		{name: "member", member: &tele.ChatMember{Role: tele.Member}, want: true},
		{name: "restricted member", member: &tele.ChatMember{Role: tele.Restricted, Member: true}, want: true},
		{name: "restricted non-member", member: &tele.ChatMember{Role: tele.Restricted}},
		{name: "left", member: &tele.ChatMember{Role: tele.Left}},
		{name: "kicked", member: &tele.ChatMember{Role: tele.Kicked}},
		{name: "nil", member: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isMember(tt.member))
		})
	}
}
