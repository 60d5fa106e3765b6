package handler

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v3"
)

// MembershipChecker asks Telegram whether a user is in the required channel
type MembershipChecker struct {
	bot       *tele.Bot
	channelID int64
}

// NewMembershipChecker creates a checker for channelID
func NewMembershipChecker(bot *tele.Bot, channelID int64) *MembershipChecker {
	return &MembershipChecker{bot: bot, channelID: channelID}
}

// IsMember implements subscription.MembershipChecker
func (m *MembershipChecker) IsMember(_ context.Context, userID int64) (bool, error) {
	member, err := m.bot.ChatMemberOf(&tele.Chat{ID: m.channelID}, &tele.User{ID: userID})
	if err != nil {
		return false, fmt.Errorf("get chat member: %w", err)
	}
	return isMember(member), nil
}

func isMember(member *tele.ChatMember) bool {
	if member == nil {
		return false
	}
	switch member.Role {
	case tele.Creator, tele.Administrator, tele.Member:
		return true
	case tele.Restricted:
		return member.Member
	default:
		return false
	}
}
