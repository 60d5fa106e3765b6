package handler

import (
	"steampool/internal/dispatch"
	"steampool/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Dispatcher accepts updates for asynchronous handling
type Dispatcher interface {
	Dispatch(u *dispatch.Update) error
}

// Handler turns Telegram updates into dispatch updates
type Handler struct {
	bot        *tele.Bot
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(bot *tele.Bot, dispatcher Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		bot:        bot,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	u := h.newUpdate(c, dispatch.KindCommand)
	u.Command = "/start"
	return h.dispatch(c, u)
}

// handleText handles free text, which belongs to the active step if any
func (h *Handler) handleText(c tele.Context) error {
	u := h.newUpdate(c, dispatch.KindText)
	u.Text = c.Text()
	return h.dispatch(c, u)
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	u := h.newUpdate(c, dispatch.KindCallback)
	u.CallbackID = callback.ID
	u.Key, u.Payload = parseCallbackData(callback.Unique, callback.Data)
	if callback.Message != nil && callback.Message.Chat != nil {
		u.Message = domain.MessageRef{ChatID: callback.Message.Chat.ID, MessageID: callback.Message.ID}
	}
	return h.dispatch(c, u)
}

func (h *Handler) newUpdate(c tele.Context, kind dispatch.Kind) *dispatch.Update {
	u := &dispatch.Update{Kind: kind}
	if sender := c.Sender(); sender != nil {
		u.UserID = sender.ID
		u.Username = sender.Username
		if u.Username == "" {
			u.Username = sender.FirstName
		}
	}
	if chat := c.Chat(); chat != nil {
		u.ChatID = chat.ID
	} else {
		u.ChatID = u.UserID
	}
	if kind != dispatch.KindCallback {
		if msg := c.Message(); msg != nil {
			u.Message = domain.MessageRef{ChatID: u.ChatID, MessageID: msg.ID}
		}
	}
	return u
}

func (h *Handler) dispatch(c tele.Context, u *dispatch.Update) error {
	if u.UserID == 0 {
		h.logger.Warn("Dropped update without sender", zap.Stringer("kind", u.Kind))
		return nil
	}
	if err := h.dispatcher.Dispatch(u); err != nil {
		h.logger.Warn("Failed to dispatch update",
			zap.Int64("user_id", u.UserID),
			zap.Stringer("kind", u.Kind),
			zap.Error(err),
		)
		if u.Kind == dispatch.KindCallback {
			return c.Respond()
		}
	}
	return nil
}
