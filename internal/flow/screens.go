package flow

import (
	"fmt"
	"strconv"
	"strings"

	"steampool/internal/dispatch"
	"steampool/internal/domain"
	"steampool/internal/probe"
)

// Callback keys
const (
	keyBackToMenu        = "back_to_menu"
	keyCheckSubscription = "check_subscription"
	keySubmitRequest     = "submit_request"
	keySearchAccounts    = "search_accounts"
	keyCheckAccounts     = "check_accounts"
	keyCheckBatch        = "check_mass"
	keyAddAccount        = "add_account"
	keyAdminPanel        = "admin_panel"
	keyManageAccounts    = "manage_accounts"
	keyEditAccount       = "edit_account"
	keyStartEdit         = "start_edit"
	keyEditLogin         = "edit_login"
	keyEditPass          = "edit_pass"
	keyEditGames         = "edit_games"
	keyDeleteAccount     = "delete_acc"
	keyConfirmDelete     = "confirm_delete"
	keyViewAccounts      = "view_accounts"
	keyViewRequests      = "view_requests"
	keyCurrentPage       = "current_page"
)

// Flow button choices
const (
	choiceSave    = "save"
	choiceDiscard = "discard"
)

const (
	textMainMenu         = "Выберите действие:"
	textSubscribe        = "Для использования бота необходимо подписаться на канал"
	textNotSubscribed    = "Вы не подписаны на канал!"
	textNoRights         = "Недостаточно прав"
	textFailure          = "Произошла ошибка. Попробуйте позже."
	textEnterLogin       = "Введите логин:"
	textEnterCheckLogin  = "Введите логин для проверки:"
	textEnterTarget      = "Введите логин аккаунта для редактирования:"
	textEnterPassword    = "Введите пароль:"
	textEnterGames       = "Введите список игр (каждая игра с новой строки):"
	textEnterNewLogin    = "Введите новый логин:"
	textEnterNewPassword = "Введите новый пароль:"
	textEnterNewGames    = "Введите новый список игр (каждая игра с новой строки):"
	textEnterRequest     = "Введите текст заявки:"
	textEnterQuery       = "Введите название игры:"
	textCheckingLogin    = "⏳ Проверяем логин..."
	textCheckingAccount  = "⏳ Проверяем аккаунт..."
	textSearching        = "⏳ Ищем рабочий аккаунт..."
	textLoginNotFound    = "❌ Аккаунт с таким логином не найден"
	textLoginTimeout     = "⌛ Не удалось проверить логин, время ожидания истекло"
	textLoginTaken       = "❌ Этот логин уже используется другим аккаунтом"
	textRetryLogin       = "Введите логин повторно:"
	textRetryPassword    = "Введите пароль повторно:"
	textEmptyInput       = "❌ Пустое сообщение"
	textEmptyGames       = "❌ Список игр пуст"
	textAccountNotFound  = "Аккаунт не найден!"
	textDuplicateRequest = "❗ Такая заявка уже была подана"
	textAdminPanel       = "Админ панель:"
	textManageAccounts   = "Управление аккаунтами:"
	textNoAccounts       = "Аккаунтов нет"
	textNoRequests       = "Заявок нет"
	textSaveQuestion     = "Сохранить?"
	textEditDiscarded    = "Изменения отменены"
	textAddDiscarded     = "Добавление отменено"
	textAnswerYesNo      = "Ответьте «да» или «нет», либо нажмите кнопку."
	textEnterBatch       = "Отправьте аккаунты в формате:\nлогин1:пароль1\nлогин2:пароль2"
	textBatchEmpty       = "❌ Не найдено аккаунтов для проверки"
	textBatchHeader      = "Проверка аккаунтов:\n\n"
)

func backButton(key string) []domain.Button {
	return domain.Row(domain.Data("Назад", key))
}

func cancelButton(key string) []domain.Button {
	return domain.Row(domain.Data("Отмена", key))
}

func mainMenuScreen(admin bool) (string, *domain.Keyboard) {
	kb := domain.NewKeyboard(
		domain.Row(domain.Data("Подать заявку", keySubmitRequest)),
		domain.Row(domain.Data("Поиск аккаунтов", keySearchAccounts)),
		domain.Row(domain.Data("Проверка аккаунтов", keyCheckAccounts)),
		domain.Row(domain.Data("Массовая проверка", keyCheckBatch)),
		domain.Row(domain.Data("Добавить аккаунт", keyAddAccount)),
	)
	if admin {
		kb.Rows = append(kb.Rows, domain.Row(domain.Data("Админ панель", keyAdminPanel)))
	}
	return textMainMenu, kb
}

func subscriptionScreen(channelURL string) (string, *domain.Keyboard) {
	kb := domain.NewKeyboard()
	if channelURL != "" {
		kb.Rows = append(kb.Rows, domain.Row(domain.Link("Подписаться", channelURL)))
	}
	kb.Rows = append(kb.Rows, domain.Row(domain.Data("🔄 Проверить подписку", keyCheckSubscription)))
	return textSubscribe, kb
}

func failureScreen() (string, *domain.Keyboard) {
	return textFailure, domain.NewKeyboard(backButton(keyBackToMenu))
}

func adminPanelScreen() (string, *domain.Keyboard) {
	return textAdminPanel, domain.NewKeyboard(
		domain.Row(domain.Data("Аккаунты", keyManageAccounts)),
		domain.Row(domain.Data("Просмотр заявок", keyViewRequests)),
		domain.Row(domain.Data("Вернуться в меню", keyBackToMenu)),
	)
}

func manageAccountsScreen(admin bool) (string, *domain.Keyboard) {
	kb := domain.NewKeyboard(
		domain.Row(domain.Data("Добавить аккаунт", keyAddAccount)),
		domain.Row(domain.Data("Редактировать аккаунт", keyEditAccount)),
	)
	back := keyBackToMenu
	if admin {
		kb.Rows = append(kb.Rows, domain.Row(domain.Data("Список аккаунтов", keyViewAccounts)))
		back = keyAdminPanel
	}
	kb.Rows = append(kb.Rows, backButton(back))
	return textManageAccounts, kb
}

// prompt puts an explanatory line above a question
func prompt(line, question string) string {
	if line == "" {
		return question
	}
	return line + "\n" + question
}

func accountDetails(a domain.Account) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Логин: %s\nПароль: %s\nИгры: %s", a.Login, a.Secret, strings.Join(a.Games, ", "))
	if a.AddedBy != 0 {
		fmt.Fprintf(&b, "\nДобавил: %d", a.AddedBy)
	}
	return b.String()
}

func existsScreen(login string, editable bool) (string, *domain.Keyboard) {
	kb := domain.NewKeyboard()
	if editable {
		kb.Rows = append(kb.Rows, domain.Row(domain.Data("Редактировать", keyStartEdit, login)))
	}
	kb.Rows = append(kb.Rows, backButton(keyManageAccounts))
	return fmt.Sprintf("Аккаунт с логином \"%s\" уже существует!", login), kb
}

func editMenuScreen(a domain.Account) (string, *domain.Keyboard) {
	text := "Аккаунт найден:\n" + accountDetails(a) + "\n\nВыберите что редактировать:"
	return text, domain.NewKeyboard(
		domain.Row(domain.Data("Изменить логин", keyEditLogin, a.Login)),
		domain.Row(domain.Data("Изменить пароль", keyEditPass, a.Login)),
		domain.Row(domain.Data("Изменить игры", keyEditGames, a.Login)),
		domain.Row(domain.Data("Удалить аккаунт", keyDeleteAccount, a.Login)),
		backButton(keyBackToMenu),
	)
}

func confirmScreen(d domain.Draft) (string, *domain.Keyboard) {
	text := "Проверьте данные:\n" + accountDetails(d.Account()) + "\n\n" + textSaveQuestion
	return text, confirmKeyboard()
}

func confirmKeyboard() *domain.Keyboard {
	return domain.NewKeyboard(domain.Row(
		domain.Data("Да", dispatch.FlowKey, choiceSave),
		domain.Data("Нет", dispatch.FlowKey, choiceDiscard),
	))
}

func deleteConfirmScreen(login string) (string, *domain.Keyboard) {
	return fmt.Sprintf("Вы уверены, что хотите удалить аккаунт %s?", login), domain.NewKeyboard(domain.Row(
		domain.Data("Да", keyConfirmDelete, login),
		domain.Data("Нет", keyBackToMenu),
	))
}

// describe explains a probe result in one line
func describe(r probe.Result) string {
	switch r.Outcome {
	case probe.Valid:
		return "✅ Аккаунт доступен и работает"
	case probe.ChallengeRequired:
		return "⚠️ Аккаунт защищен Steam Guard"
	case probe.InvalidCredential:
		return "❌ Неверный пароль"
	case probe.RateLimited:
		return "❌ Слишком много попыток входа, попробуйте позже"
	case probe.Timeout:
		return "⌛ Время проверки истекло"
	default:
		if r.Detail != "" {
			return "❌ Ошибка: " + r.Detail
		}
		return "❌ Неизвестная ошибка"
	}
}

func checkResultScreen(r probe.Result) (string, *domain.Keyboard) {
	if r.Outcome == probe.Valid {
		return describe(r), domain.NewKeyboard(backButton(keyBackToMenu))
	}
	return describe(r), domain.NewKeyboard(
		domain.Row(domain.Data("Попробовать снова", keyCheckAccounts)),
		backButton(keyBackToMenu),
	)
}

// batchProgress is the report so far plus the login being checked
func batchProgress(report, login string) (string, *domain.Keyboard) {
	return report + "⏳ Проверяется: " + login, domain.NewKeyboard(cancelButton(keyBackToMenu))
}

func batchResultScreen(report string, skipped int) (string, *domain.Keyboard) {
	text := strings.TrimRight(report, "\n")
	if skipped > 0 {
		text += fmt.Sprintf("\n\nНе проверено (лимит %d): %d", maxBatch, skipped)
	}
	return text, domain.NewKeyboard(
		domain.Row(domain.Data("Проверить ещё", keyCheckBatch)),
		domain.Row(domain.Data("Вернуться в меню", keyBackToMenu)),
	)
}

// pager builds the navigation row of a listing: "<<" and ">>" jump five
// pages, "<" and ">" one page.
func pager(key string, number, total int) []domain.Button {
	page := func(text string, n int) domain.Button {
		return domain.Data(text, key, strconv.Itoa(n))
	}

	var row []domain.Button
	if number > 1 {
		if number > 5 {
			row = append(row, page("<<", number-5))
		}
		row = append(row, page("<", number-1))
	}
	row = append(row, domain.Data(fmt.Sprintf("%d/%d", number, total), keyCurrentPage))
	if number < total {
		row = append(row, page(">", number+1))
		if total-number >= 5 {
			row = append(row, page(">>", number+5))
		}
	}
	return row
}

func accountsScreen(p domain.Page[domain.Account]) (string, *domain.Keyboard) {
	kb := domain.NewKeyboard()
	if len(p.Items) == 0 {
		kb.Rows = append(kb.Rows, backButton(keyManageAccounts))
		return textNoAccounts, kb
	}

	blocks := make([]string, 0, len(p.Items))
	for _, a := range p.Items {
		blocks = append(blocks, accountDetails(a))
	}
	kb.Rows = append(kb.Rows, domain.Row(domain.Data("Редактировать аккаунт", keyEditAccount)))
	if p.Total > 1 {
		kb.Rows = append(kb.Rows, pager(keyViewAccounts, p.Number, p.Total))
	}
	kb.Rows = append(kb.Rows, backButton(keyManageAccounts))
	return strings.Join(blocks, "\n\n"), kb
}

func requestsScreen(p domain.Page[domain.Request]) (string, *domain.Keyboard) {
	kb := domain.NewKeyboard()
	if len(p.Items) == 0 {
		kb.Rows = append(kb.Rows, backButton(keyAdminPanel))
		return textNoRequests, kb
	}

	blocks := make([]string, 0, len(p.Items))
	for _, r := range p.Items {
		blocks = append(blocks, fmt.Sprintf("От: %s\nЗаявка: %s", r.User, r.Text))
	}
	if p.Total > 1 {
		kb.Rows = append(kb.Rows, pager(keyViewRequests, p.Number, p.Total))
	}
	kb.Rows = append(kb.Rows, backButton(keyAdminPanel))
	return strings.Join(blocks, "\n\n"), kb
}

func searchFoundScreen(game string, a domain.Account) (string, *domain.Keyboard) {
	text := fmt.Sprintf("Найден рабочий аккаунт с игрой \"%s\":\n\nБиблиотека: %s\nЛогин: %s\nПароль: %s",
		game, strings.Join(a.Games, ", "), a.Login, a.Secret)
	return text, domain.NewKeyboard(backButton(keyBackToMenu))
}

func searchEmptyScreen(game string, anyStored bool) (string, *domain.Keyboard) {
	text := fmt.Sprintf("Аккаунты с игрой \"%s\" не найдены.", game)
	if anyStored {
		text = fmt.Sprintf("Рабочие аккаунты с игрой \"%s\" не найдены.", game)
	}
	return text, domain.NewKeyboard(backButton(keyBackToMenu))
}
