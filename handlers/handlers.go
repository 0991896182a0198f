package handlers

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"accessreview/audit"
	"accessreview/codes"
	"accessreview/config"
	"accessreview/review"
	"accessreview/roster"
	"accessreview/store"
	"accessreview/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type BotHandler struct {
	bot        *tgbotapi.BotAPI
	config     *config.Config
	auditLog   *audit.Log
	userStates map[int64]string
	sessions   map[int64]*review.Session
	adminOK    map[int64]bool
	pending    map[int64][]roster.File
}

func NewBotHandler(bot *tgbotapi.BotAPI, cfg *config.Config) *BotHandler {
	return &BotHandler{
		bot:        bot,
		config:     cfg,
		auditLog:   audit.NewLog(cfg.AuditLogPath),
		userStates: make(map[int64]string),
		sessions:   make(map[int64]*review.Session),
		adminOK:    make(map[int64]bool),
		pending:    make(map[int64][]roster.File),
	}
}

func (h *BotHandler) HandleMessage(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := update.Message.Text

	// Прикреплённый документ — файл ростера от администратора
	if update.Message.Document != nil {
		h.handleAddRoster(chatID, update.Message.Document)
		return
	}

	switch {
	case text == "/start":
		h.handleStart(chatID)
	case text == "🔐 Проверка доступа" || text == "/review":
		h.handleReviewStart(chatID)
	case text == "⚙️ Админ-панель" || text == "/admin":
		h.handleAdminPanel(chatID)
	case text == "Обработать загрузку" || text == "/process_roster":
		h.handleProcessRoster(chatID)
	case text == "Коды руководителей" || text == "/codes":
		h.handleShowCodes(chatID)
	case text == "Журнал проверок" || text == "/export_log":
		h.handleExportLog(chatID)
	case text == "Главное меню":
		h.handleStart(chatID)
	case h.userStates[chatID] == "waiting_admin_pass":
		h.processPasscodeInput(chatID, text)
	case h.userStates[chatID] == "waiting_code":
		h.processCodeInput(chatID, text)
	default:
		msg := tgbotapi.NewMessage(chatID, "Не понимаю команду. Используйте кнопки меню.")
		h.bot.Send(msg)
	}
}

func (h *BotHandler) HandleCallback(update tgbotapi.Update) {
	callback := update.CallbackQuery
	data := callback.Data
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	// Закрываем "часики" на кнопке
	h.bot.Request(tgbotapi.NewCallback(callback.ID, ""))

	switch {
	case data == "approve_all":
		h.handleApproveAll(chatID, messageID)
	case strings.HasPrefix(data, "approve_"):
		idx, _ := strconv.Atoi(strings.TrimPrefix(data, "approve_"))
		h.handleToggle(chatID, messageID, idx, false)
	case strings.HasPrefix(data, "remove_"):
		idx, _ := strconv.Atoi(strings.TrimPrefix(data, "remove_"))
		h.handleToggle(chatID, messageID, idx, true)
	case data == "submit_review":
		h.handleSubmit(chatID, messageID)
	case data == "new_review":
		h.handleNewReview(chatID)
	}
}

func (h *BotHandler) handleStart(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Добро пожаловать в портал проверки доступа! Используйте кнопки ниже.")
	msg.ReplyMarkup = GetMainKeyboard()
	h.bot.Send(msg)
}

func (h *BotHandler) handleReviewStart(chatID int64) {
	h.userStates[chatID] = "waiting_code"
	h.sessions[chatID] = review.NewSession()

	msg := tgbotapi.NewMessage(chatID, "Введите ваш 4-значный код доступа:")
	h.bot.Send(msg)
}

func (h *BotHandler) processCodeInput(chatID int64, text string) {
	if !utils.IsAccessCode(text) {
		h.sendError(chatID, "Код должен состоять из 4 цифр")
		return
	}

	codeMap, err := store.LoadCodes(h.config.CodesPath)
	if err != nil {
		h.sendError(chatID, "Ошибка чтения кодов: "+err.Error())
		return
	}

	r, err := h.loadActiveRoster()
	if err != nil {
		if errors.Is(err, store.ErrConfigMissing) {
			h.sendError(chatID, "Активный ростер не настроен. Обратитесь к администратору.")
		} else {
			h.sendError(chatID, "Ошибка загрузки ростера: "+err.Error())
		}
		return
	}

	session, ok := h.sessions[chatID]
	if !ok {
		session = review.NewSession()
		h.sessions[chatID] = session
	}

	if err := session.Start(strings.TrimSpace(text), codeMap, r); err != nil {
		if errors.Is(err, codes.ErrNotFound) {
			// Неверный код: остаёмся в ожидании, без блокировок
			h.sendError(chatID, "Неверный код доступа.")
		} else {
			h.sendError(chatID, "Ошибка начала проверки: "+err.Error())
		}
		return
	}

	delete(h.userStates, chatID)

	msg := tgbotapi.NewMessage(chatID, teamText(session))
	msg.ReplyMarkup = CreateReviewKeyboard(session)
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("Failed to send review screen: %v", err)
	}
}

func teamText(session *review.Session) string {
	text := fmt.Sprintf("Добро пожаловать, %s! Проверьте доступ вашей команды:\n\n", session.Supervisor)

	if len(session.Team) == 0 {
		return text + "В ростере нет сотрудников под вашим руководством."
	}

	for _, emp := range session.Team {
		text += fmt.Sprintf("• %s | %s - %s\n", emp.Label(), emp.Role, emp.RoleName)
	}
	text += "\nОтметьте решение по каждому сотруднику и нажмите «Отправить»."
	return text
}

// handleToggle переключает флаг approve или remove. Флаги независимы,
// сотрудник может быть отмечен в обоих списках сразу
func (h *BotHandler) handleToggle(chatID int64, messageID, idx int, remove bool) {
	session, ok := h.sessions[chatID]
	if !ok || session.Phase != review.InReview {
		h.sendError(chatID, "Сессия устарела. Начните проверку заново.")
		return
	}

	if remove {
		session.ToggleRemove(idx)
	} else {
		session.ToggleApprove(idx)
	}

	h.refreshReviewKeyboard(chatID, messageID, session)
}

func (h *BotHandler) handleApproveAll(chatID int64, messageID int) {
	session, ok := h.sessions[chatID]
	if !ok || session.Phase != review.InReview {
		h.sendError(chatID, "Сессия устарела. Начните проверку заново.")
		return
	}

	session.ApproveAll()
	h.refreshReviewKeyboard(chatID, messageID, session)
}

func (h *BotHandler) refreshReviewKeyboard(chatID int64, messageID int, session *review.Session) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, CreateReviewKeyboard(session))
	if _, err := h.bot.Send(edit); err != nil {
		log.Printf("Failed to update review keyboard: %v", err)
	}
}

func (h *BotHandler) handleSubmit(chatID int64, messageID int) {
	session, ok := h.sessions[chatID]
	if !ok || session.Phase != review.InReview {
		h.sendError(chatID, "Сессия устарела. Начните проверку заново.")
		return
	}

	approved, removed := session.Submit()

	// Ростер перечитывается на момент отправки: решения по записям,
	// исчезнувшим из него, журнал отбросит
	r, err := h.loadActiveRoster()
	if err != nil {
		h.sendError(chatID, "Ошибка загрузки ростера: "+err.Error())
		return
	}

	appended, dropped, err := h.auditLog.Record(session.Supervisor, approved, removed, r)
	if err != nil {
		h.sendError(chatID, "Ошибка записи в журнал: "+err.Error())
		return
	}

	text := fmt.Sprintf("✅ Проверка отправлена!\n\nРуководитель: %s\nЗаписей в журнале: %d\n", session.Supervisor, appended)
	if len(approved) > 0 {
		text += "\nОдобрено:\n"
		for _, label := range approved {
			text += "• " + label + "\n"
		}
	}
	if len(removed) > 0 {
		text += "\nОтозвано:\n"
		for _, label := range removed {
			text += "• " + label + "\n"
		}
	}
	if dropped > 0 {
		text += fmt.Sprintf("\n⚠️ Решений пропущено (нет в текущем ростере): %d\n", dropped)
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, CreateCompletedKeyboard())
	if _, err := h.bot.Send(edit); err != nil {
		log.Printf("Failed to edit review message: %v", err)
	}
}

func (h *BotHandler) handleNewReview(chatID int64) {
	if session, ok := h.sessions[chatID]; ok {
		session.Reset()
	}

	h.handleReviewStart(chatID)
}

// loadActiveRoster читает канонический ростер, на который указывает
// active_config.json
func (h *BotHandler) loadActiveRoster() (*roster.Roster, error) {
	path, err := store.LoadActivePath(h.config.ActiveConfigPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read active roster: %w", err)
	}

	r, _, err := roster.Normalize([]roster.File{{Name: path, Data: data}})
	return r, err
}

func (h *BotHandler) sendError(chatID int64, message string) {
	msg := tgbotapi.NewMessage(chatID, "❌ "+message)
	h.bot.Send(msg)
}

func (h *BotHandler) isAdmin(chatID int64) bool {
	return len(h.config.AdminIDs) == 0 || h.config.IsAdmin(chatID)
}

// sendCodes используется и после загрузки ростера, и по запросу из меню
func (h *BotHandler) sendCodes(chatID int64, codeMap map[string]string) {
	if len(codeMap) == 0 {
		msg := tgbotapi.NewMessage(chatID, "Кодов пока нет. Загрузите ростер.")
		h.bot.Send(msg)
		return
	}

	text := "📋 Коды руководителей:\n\n"
	for _, sup := range sortedSupervisors(codeMap) {
		text += fmt.Sprintf("%s — %s\n", sup, codeMap[sup])
	}

	msg := tgbotapi.NewMessage(chatID, text)
	h.bot.Send(msg)

	h.sendCodesCSV(chatID, codeMap)
}
