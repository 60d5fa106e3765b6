package flow

import (
	"context"

	"steampool/internal/dispatch"
	"steampool/internal/domain"

	"go.uber.org/zap"
)

func (f *Flows) handleStart(ctx context.Context, u *dispatch.Update) error {
	text, kb := mainMenuScreen(f.IsAdmin(u.UserID))
	f.present(ctx, u, text, kb)
	return nil
}

func (f *Flows) handleBackToMenu(ctx context.Context, u *dispatch.Update) error {
	return f.handleStart(ctx, u)
}

func (f *Flows) handleCheckSubscription(ctx context.Context, u *dispatch.Update) error {
	if !f.subs.Refresh(ctx, u.UserID) {
		u.Alert = textNotSubscribed
		return nil
	}
	f.logger.Info("Subscription confirmed", zap.Int64("user_id", u.UserID))
	return f.handleStart(ctx, u)
}

func (f *Flows) handleAdminPanel(ctx context.Context, u *dispatch.Update) error {
	if !f.IsAdmin(u.UserID) {
		return f.deny(u)
	}
	text, kb := adminPanelScreen()
	f.present(ctx, u, text, kb)
	return nil
}

func (f *Flows) handleManageAccounts(ctx context.Context, u *dispatch.Update) error {
	text, kb := manageAccountsScreen(f.IsAdmin(u.UserID))
	f.present(ctx, u, text, kb)
	return nil
}

func (f *Flows) handleViewAccounts(ctx context.Context, u *dispatch.Update) error {
	if !f.IsAdmin(u.UserID) {
		return f.deny(u)
	}
	page, err := f.accounts.Page(ctx, pageNumber(u.Payload))
	if err != nil {
		return f.fail(ctx, u, "Failed to list accounts", err)
	}
	text, kb := accountsScreen(page)
	f.present(ctx, u, text, kb)
	return nil
}

func (f *Flows) handleViewRequests(ctx context.Context, u *dispatch.Update) error {
	if !f.IsAdmin(u.UserID) {
		return f.deny(u)
	}
	page, err := f.requests.Page(ctx, pageNumber(u.Payload))
	if err != nil {
		return f.fail(ctx, u, "Failed to list requests", err)
	}
	text, kb := requestsScreen(page)
	f.present(ctx, u, text, kb)
	return nil
}

func (f *Flows) handleSubmitRequest(ctx context.Context, u *dispatch.Update) error {
	f.begin(ctx, u, stepRequest, domain.Draft{}, textEnterRequest,
		domain.NewKeyboard(cancelButton(keyBackToMenu)))
	return nil
}

func (f *Flows) handleSearchAccounts(ctx context.Context, u *dispatch.Update) error {
	f.begin(ctx, u, stepSearch, domain.Draft{}, textEnterQuery,
		domain.NewKeyboard(cancelButton(keyBackToMenu)))
	return nil
}

func (f *Flows) handleCheckBatch(ctx context.Context, u *dispatch.Update) error {
	f.begin(ctx, u, stepCheckBatch, domain.Draft{}, textEnterBatch,
		domain.NewKeyboard(cancelButton(keyBackToMenu)))
	return nil
}

func (f *Flows) handleCheckAccounts(ctx context.Context, u *dispatch.Update) error {
	f.begin(ctx, u, stepCheckLogin, domain.Draft{}, textEnterCheckLogin,
		domain.NewKeyboard(cancelButton(keyBackToMenu)))
	return nil
}
