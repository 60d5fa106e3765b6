package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"steampool/internal/conversation"
	"steampool/internal/dispatch"
	"steampool/internal/domain"
	"steampool/internal/probe"
	"steampool/internal/service"

	"go.uber.org/zap"
)

func (f *Flows) handleAddAccount(ctx context.Context, u *dispatch.Update) error {
	f.begin(ctx, u, stepAddLogin, domain.Draft{AddedBy: u.UserID}, textEnterLogin,
		domain.NewKeyboard(cancelButton(keyManageAccounts)))
	return nil
}

func (f *Flows) handleEditAccount(ctx context.Context, u *dispatch.Update) error {
	f.begin(ctx, u, stepEditTarget, domain.Draft{}, textEnterTarget,
		domain.NewKeyboard(backButton(keyBackToMenu)))
	return nil
}

func (f *Flows) handleStartEdit(ctx context.Context, u *dispatch.Update) error {
	acc := f.editableAccount(ctx, u)
	if acc == nil {
		return nil
	}
	text, kb := editMenuScreen(*acc)
	f.present(ctx, u, text, kb)
	return nil
}

func (f *Flows) handleEditField(ctx context.Context, u *dispatch.Update) error {
	acc := f.editableAccount(ctx, u)
	if acc == nil {
		return nil
	}

	draft := domain.DraftFromAccount(*acc)
	cancel := domain.NewKeyboard(cancelButton(keyManageAccounts))
	switch u.Key {
	case keyEditLogin:
		f.begin(ctx, u, stepEditLogin, draft, textEnterNewLogin, cancel)
	case keyEditPass:
		f.begin(ctx, u, stepEditPassword, draft, textEnterNewPassword, cancel)
	case keyEditGames:
		f.begin(ctx, u, stepEditGames, draft, textEnterNewGames, cancel)
	}
	return nil
}

func (f *Flows) handleDeleteAccount(ctx context.Context, u *dispatch.Update) error {
	acc := f.editableAccount(ctx, u)
	if acc == nil {
		return nil
	}
	text, kb := deleteConfirmScreen(acc.Login)
	f.present(ctx, u, text, kb)
	return nil
}

func (f *Flows) handleConfirmDelete(ctx context.Context, u *dispatch.Update) error {
	acc := f.editableAccount(ctx, u)
	if acc == nil {
		return nil
	}

	err := f.accounts.Delete(ctx, acc.Login)
	if errors.Is(err, service.ErrAccountNotFound) {
		f.present(ctx, u, textAccountNotFound, domain.NewKeyboard(backButton(keyBackToMenu)))
		return nil
	}
	if err != nil {
		return f.fail(ctx, u, "Failed to delete account", err)
	}

	f.logger.Info("Account deleted",
		zap.Int64("user_id", u.UserID),
		zap.String("login", acc.Login),
	)
	f.present(ctx, u, fmt.Sprintf("✅ Аккаунт %s удален", acc.Login),
		domain.NewKeyboard(backButton(keyBackToMenu)))
	return nil
}

// editableAccount loads the account named by the callback payload. It
// renders the reason and returns nil when the user cannot edit it.
func (f *Flows) editableAccount(ctx context.Context, u *dispatch.Update) *domain.Account {
	acc, err := f.accounts.Find(ctx, u.Payload)
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		f.present(ctx, u, textAccountNotFound, domain.NewKeyboard(backButton(keyBackToMenu)))
		return nil
	case err != nil:
		f.fail(ctx, u, "Failed to load account", err)
		return nil
	case !acc.EditableBy(u.UserID, f.IsAdmin(u.UserID)):
		f.deny(u)
		return nil
	}
	return acc
}

func (f *Flows) handleEditTarget(ctx context.Context, t *conversation.Turn, in conversation.Input) conversation.Transition {
	t.Consume(ctx, in)
	back := domain.NewKeyboard(backButton(keyBackToMenu))

	login := strings.TrimSpace(in.Text)
	if login == "" {
		t.Show(ctx, prompt(textEmptyInput, textEnterTarget), back)
		return conversation.Next(t.Step)
	}

	acc, err := f.accounts.Find(ctx, login)
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		t.Show(ctx, prompt(textAccountNotFound, textEnterTarget), back)
		return conversation.Next(t.Step)
	case err != nil:
		return f.failTurn(ctx, t, "Failed to load account", err)
	case !acc.EditableBy(t.UserID, f.IsAdmin(t.UserID)):
		t.Show(ctx, textNoRights, back)
		return conversation.Done()
	}

	text, kb := editMenuScreen(*acc)
	t.Show(ctx, text, kb)
	return conversation.Done()
}

// handleLogin serves the login step of the add, edit and check flows
func (f *Flows) handleLogin(ctx context.Context, t *conversation.Turn, in conversation.Input) conversation.Transition {
	t.Consume(ctx, in)
	cancel := cancelKeyboard(t.Step.Flow)

	login := strings.TrimSpace(in.Text)
	if login == "" {
		t.Show(ctx, prompt(textEmptyInput, textRetryLogin), cancel)
		return conversation.Next(t.Step)
	}

	if t.Step.Flow == domain.FlowAdd || t.Step.Flow == domain.FlowEdit {
		existing, err := f.accounts.Find(ctx, login)
		if err != nil && !errors.Is(err, service.ErrAccountNotFound) {
			return f.failTurn(ctx, t, "Failed to look up login", err)
		}
		if existing != nil {
			if t.Step.Flow == domain.FlowAdd {
				text, kb := existsScreen(existing.Login, existing.EditableBy(t.UserID, f.IsAdmin(t.UserID)))
				t.Show(ctx, text, kb)
				return conversation.Done()
			}
			if !existing.SameLogin(t.Draft.Target) {
				t.Show(ctx, prompt(textLoginTaken, textRetryLogin), cancel)
				return conversation.Next(t.Step)
			}
		}
	}

	t.Show(ctx, textCheckingLogin, cancel)
	existence, res := f.prober.Exists(ctx, login)
	f.logger.Info("Login probed",
		zap.Int64("user_id", t.UserID),
		zap.String("login", login),
		zap.Stringer("outcome", res.Outcome),
		zap.Duration("elapsed", res.Elapsed),
	)

	switch existence {
	case probe.LoginNotFound:
		t.Show(ctx, prompt(textLoginNotFound, textRetryLogin), cancel)
		return conversation.Next(t.Step)
	case probe.LoginUnknown:
		t.Show(ctx, prompt(textLoginTimeout, textRetryLogin), cancel)
		return conversation.Next(t.Step)
	}

	t.Draft.Login = login
	t.Show(ctx, textEnterPassword, cancel)
	return conversation.Next(domain.Step{Flow: t.Step.Flow, Kind: domain.StepAwaitingPassword})
}

// handlePassword serves the password step of the add, edit and check flows
func (f *Flows) handlePassword(ctx context.Context, t *conversation.Turn, in conversation.Input) conversation.Transition {
	t.Consume(ctx, in)
	cancel := cancelKeyboard(t.Step.Flow)

	secret := in.Text
	if strings.TrimSpace(secret) == "" {
		t.Show(ctx, prompt(textEmptyInput, textRetryPassword), cancel)
		return conversation.Next(t.Step)
	}

	t.Show(ctx, textCheckingAccount, cancel)
	res := f.prober.Check(ctx, t.Draft.Login, secret)
	f.logger.Info("Credentials probed",
		zap.Int64("user_id", t.UserID),
		zap.String("login", t.Draft.Login),
		zap.Stringer("outcome", res.Outcome),
		zap.Duration("elapsed", res.Elapsed),
	)

	if t.Step.Flow == domain.FlowCheck {
		text, kb := checkResultScreen(res)
		t.Show(ctx, text, kb)
		return conversation.Done()
	}

	if res.Outcome != probe.Valid {
		t.Show(ctx, prompt(describe(res), textRetryPassword), cancel)
		return conversation.Next(t.Step)
	}

	t.Draft.Secret = secret
	if t.Step.Flow == domain.FlowAdd {
		t.Show(ctx, prompt("Аккаунт рабочий ✅", textEnterGames), cancel)
		return conversation.Next(stepAddGames)
	}

	text, kb := confirmScreen(t.Draft)
	t.Show(ctx, text, kb)
	return conversation.Next(stepEditConfirm)
}

// handleGames serves the games step of the add and edit flows
func (f *Flows) handleGames(ctx context.Context, t *conversation.Turn, in conversation.Input) conversation.Transition {
	t.Consume(ctx, in)

	games := domain.ParseGames(in.Text)
	if len(games) == 0 {
		t.Show(ctx, prompt(textEmptyGames, textEnterGames), cancelKeyboard(t.Step.Flow))
		return conversation.Next(t.Step)
	}

	t.Draft.Games = games
	text, kb := confirmScreen(t.Draft)
	t.Show(ctx, text, kb)
	return conversation.Next(domain.Step{Flow: t.Step.Flow, Kind: domain.StepAwaitingConfirmation})
}

// handleConfirm saves or discards the draft of the add and edit flows.
// Buttons answer with a choice; typed "да" or "нет" work as well.
func (f *Flows) handleConfirm(ctx context.Context, t *conversation.Turn, in conversation.Input) conversation.Transition {
	choice := in.Choice
	if choice == "" {
		t.Consume(ctx, in)
		choice = parseYesNo(in.Text)
	}

	switch choice {
	case choiceSave:
	case choiceDiscard:
		text := textAddDiscarded
		if t.Step.Flow == domain.FlowEdit {
			text = textEditDiscarded
		}
		t.Show(ctx, text, domain.NewKeyboard(backButton(keyManageAccounts)))
		return conversation.Done()
	default:
		text, _ := confirmScreen(t.Draft)
		t.Show(ctx, prompt(textAnswerYesNo, text), confirmKeyboard())
		return conversation.Next(t.Step)
	}

	if !t.Live() {
		return conversation.Done()
	}

	acc := t.Draft.Account()
	if t.Step.Flow == domain.FlowAdd {
		return f.saveNew(ctx, t, acc)
	}
	return f.saveEdit(ctx, t, acc)
}

func (f *Flows) saveNew(ctx context.Context, t *conversation.Turn, acc domain.Account) conversation.Transition {
	err := f.accounts.Add(ctx, acc)
	if errors.Is(err, service.ErrAccountExists) {
		text, kb := existsScreen(acc.Login, false)
		t.Show(ctx, text, kb)
		return conversation.Done()
	}
	if err != nil {
		return f.failTurn(ctx, t, "Failed to add account", err)
	}

	f.logger.Info("Account added",
		zap.Int64("user_id", t.UserID),
		zap.String("login", acc.Login),
		zap.Int("games", len(acc.Games)),
	)
	t.Show(ctx, fmt.Sprintf("✅ Аккаунт %s успешно добавлен!\n\nХотите добавить еще один аккаунт?", acc.Login),
		domain.NewKeyboard(
			domain.Row(domain.Data("Добавить еще", keyAddAccount)),
			domain.Row(domain.Data("Вернуться к управлению", keyManageAccounts)),
		))
	return conversation.Done()
}

func (f *Flows) saveEdit(ctx context.Context, t *conversation.Turn, acc domain.Account) conversation.Transition {
	back := domain.NewKeyboard(backButton(keyBackToMenu))

	err := f.accounts.Replace(ctx, t.Draft.Target, acc)
	switch {
	case errors.Is(err, service.ErrAccountExists):
		t.Show(ctx, textLoginTaken, back)
		return conversation.Done()
	case errors.Is(err, service.ErrAccountNotFound):
		t.Show(ctx, textAccountNotFound, back)
		return conversation.Done()
	case err != nil:
		return f.failTurn(ctx, t, "Failed to update account", err)
	}

	f.logger.Info("Account updated",
		zap.Int64("user_id", t.UserID),
		zap.String("target", t.Draft.Target),
		zap.String("login", acc.Login),
	)
	t.Show(ctx, fmt.Sprintf("✅ Аккаунт %s обновлен", acc.Login), back)
	return conversation.Done()
}

func cancelKeyboard(flow domain.Flow) *domain.Keyboard {
	if flow == domain.FlowCheck {
		return domain.NewKeyboard(cancelButton(keyBackToMenu))
	}
	return domain.NewKeyboard(cancelButton(keyManageAccounts))
}

func parseYesNo(text string) string {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "да", "д", "yes", "y":
		return choiceSave
	case "нет", "н", "no", "n":
		return choiceDiscard
	default:
		return ""
	}
}
