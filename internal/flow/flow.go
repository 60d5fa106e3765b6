// Package flow implements the bot's menus and wizards on top of the
// conversation engine.
package flow

import (
	"context"
	"strconv"

	"steampool/internal/conversation"
	"steampool/internal/dispatch"
	"steampool/internal/domain"
	"steampool/internal/probe"
	"steampool/internal/service"

	"go.uber.org/zap"
)

// Prober verifies credentials against the platform
type Prober interface {
	Check(ctx context.Context, login, secret string) probe.Result
	Exists(ctx context.Context, login string) (probe.Existence, probe.Result)
}

// Subscriptions forces a fresh membership check
type Subscriptions interface {
	Refresh(ctx context.Context, userID int64) bool
}

// GateExempt lists the callback keys that work without a subscription
var GateExempt = []string{keyCheckSubscription}

// Config holds what flows need from configuration
type Config struct {
	AdminIDs   []int64
	ChannelURL string
}

var (
	stepAddLogin    = domain.Step{Flow: domain.FlowAdd, Kind: domain.StepAwaitingLogin}
	stepAddPassword = domain.Step{Flow: domain.FlowAdd, Kind: domain.StepAwaitingPassword}
	stepAddGames    = domain.Step{Flow: domain.FlowAdd, Kind: domain.StepAwaitingExtra, Extra: domain.ExtraGames}
	stepAddConfirm  = domain.Step{Flow: domain.FlowAdd, Kind: domain.StepAwaitingConfirmation}

	stepEditTarget   = domain.Step{Flow: domain.FlowEdit, Kind: domain.StepAwaitingExtra, Extra: domain.ExtraTarget}
	stepEditLogin    = domain.Step{Flow: domain.FlowEdit, Kind: domain.StepAwaitingLogin}
	stepEditPassword = domain.Step{Flow: domain.FlowEdit, Kind: domain.StepAwaitingPassword}
	stepEditGames    = domain.Step{Flow: domain.FlowEdit, Kind: domain.StepAwaitingExtra, Extra: domain.ExtraGames}
	stepEditConfirm  = domain.Step{Flow: domain.FlowEdit, Kind: domain.StepAwaitingConfirmation}

	stepCheckLogin    = domain.Step{Flow: domain.FlowCheck, Kind: domain.StepAwaitingLogin}
	stepCheckPassword = domain.Step{Flow: domain.FlowCheck, Kind: domain.StepAwaitingPassword}
	stepCheckBatch    = domain.Step{Flow: domain.FlowCheck, Kind: domain.StepAwaitingExtra, Extra: domain.ExtraBatch}

	stepRequest = domain.Step{Flow: domain.FlowRequest, Kind: domain.StepAwaitingExtra, Extra: domain.ExtraRequest}
	stepSearch  = domain.Step{Flow: domain.FlowSearch, Kind: domain.StepAwaitingExtra, Extra: domain.ExtraQuery}
)

// Flows wires menu actions and wizard steps
type Flows struct {
	engine     *conversation.Engine
	prober     Prober
	accounts   *service.AccountService
	requests   *service.RequestService
	subs       Subscriptions
	admins     map[int64]bool
	channelURL string
	logger     *zap.Logger
}

// New creates the flows and registers their steps with the engine
func New(
	engine *conversation.Engine,
	prober Prober,
	accounts *service.AccountService,
	requests *service.RequestService,
	subs Subscriptions,
	cfg Config,
	logger *zap.Logger,
) *Flows {
	admins := make(map[int64]bool, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}

	f := &Flows{
		engine:     engine,
		prober:     prober,
		accounts:   accounts,
		requests:   requests,
		subs:       subs,
		admins:     admins,
		channelURL: cfg.ChannelURL,
		logger:     logger,
	}

	engine.Register(stepAddLogin, f.handleLogin)
	engine.Register(stepAddPassword, f.handlePassword)
	engine.Register(stepAddGames, f.handleGames)
	engine.Register(stepAddConfirm, f.handleConfirm)

	engine.Register(stepEditTarget, f.handleEditTarget)
	engine.Register(stepEditLogin, f.handleLogin)
	engine.Register(stepEditPassword, f.handlePassword)
	engine.Register(stepEditGames, f.handleGames)
	engine.Register(stepEditConfirm, f.handleConfirm)

	engine.Register(stepCheckLogin, f.handleLogin)
	engine.Register(stepCheckPassword, f.handlePassword)
	engine.Register(stepCheckBatch, f.handleBatch)

	engine.Register(stepRequest, f.handleRequest)
	engine.Register(stepSearch, f.handleSearch)

	return f
}

// Register binds commands and menu actions to the router
func (f *Flows) Register(r *dispatch.Router) {
	r.Command("/start", f.handleStart)

	r.Action(keyBackToMenu, f.handleBackToMenu)
	r.Action(keyCheckSubscription, f.handleCheckSubscription)
	r.Action(keyCurrentPage, f.handleNoop)

	r.Action(keySubmitRequest, f.handleSubmitRequest)
	r.Action(keySearchAccounts, f.handleSearchAccounts)
	r.Action(keyCheckAccounts, f.handleCheckAccounts)
	r.Action(keyCheckBatch, f.handleCheckBatch)

	r.Action(keyAddAccount, f.handleAddAccount)
	r.Action(keyManageAccounts, f.handleManageAccounts)
	r.Action(keyEditAccount, f.handleEditAccount)
	r.Action(keyStartEdit, f.handleStartEdit)
	r.Action(keyEditLogin, f.handleEditField)
	r.Action(keyEditPass, f.handleEditField)
	r.Action(keyEditGames, f.handleEditField)
	r.Action(keyDeleteAccount, f.handleDeleteAccount)
	r.Action(keyConfirmDelete, f.handleConfirmDelete)

	r.Action(keyAdminPanel, f.handleAdminPanel)
	r.Action(keyViewAccounts, f.handleViewAccounts)
	r.Action(keyViewRequests, f.handleViewRequests)
}

// IsAdmin reports whether the user is an administrator
func (f *Flows) IsAdmin(userID int64) bool {
	return f.admins[userID]
}

// Blocked shows the subscription screen and drops any flow in progress
func (f *Flows) Blocked(ctx context.Context, u *dispatch.Update) error {
	f.engine.Cancel(u.UserID)
	text, kb := subscriptionScreen(f.channelURL)
	f.present(ctx, u, text, kb)
	return nil
}

// present renders a screen outside any step
func (f *Flows) present(ctx context.Context, u *dispatch.Update, text string, kb *domain.Keyboard) {
	conversation.Present(ctx, f.engine.Messenger(), f.logger, u.Panel(), text, kb)
}

// begin installs step and renders its first prompt
func (f *Flows) begin(ctx context.Context, u *dispatch.Update, step domain.Step, draft domain.Draft, text string, kb *domain.Keyboard) {
	t := f.engine.Start(u.UserID, u.Panel(), step, draft)
	t.Show(ctx, text, kb)
}

// deny answers the callback with a permission alert
func (f *Flows) deny(u *dispatch.Update) error {
	u.Alert = textNoRights
	return nil
}

// fail logs a store error and shows the generic failure screen
func (f *Flows) fail(ctx context.Context, u *dispatch.Update, msg string, err error) error {
	f.logger.Error(msg, zap.Int64("user_id", u.UserID), zap.Error(err))
	text, kb := failureScreen()
	f.present(ctx, u, text, kb)
	return nil
}

// failTurn is fail for step handlers
func (f *Flows) failTurn(ctx context.Context, t *conversation.Turn, msg string, err error) conversation.Transition {
	f.logger.Error(msg, zap.Int64("user_id", t.UserID), zap.Stringer("step", t.Step), zap.Error(err))
	text, kb := failureScreen()
	t.Show(ctx, text, kb)
	return conversation.Done()
}

func (f *Flows) handleNoop(_ context.Context, _ *dispatch.Update) error {
	return nil
}

// pageNumber parses a page payload, defaulting to the first page
func pageNumber(payload string) int {
	n, err := strconv.Atoi(payload)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func displayName(in conversation.Input) string {
	if in.Username != "" {
		return in.Username
	}
	return strconv.FormatInt(in.UserID, 10)
}
