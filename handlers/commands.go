package handlers

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"accessreview/codes"
	"accessreview/roster"
	"accessreview/store"
	"accessreview/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *BotHandler) handleAdminPanel(chatID int64) {
	if !h.isAdmin(chatID) {
		h.sendError(chatID, "У вас нет прав для выполнения этой команды")
		return
	}

	if h.adminOK[chatID] {
		msg := tgbotapi.NewMessage(chatID, "Админ-панель уже разблокирована.")
		msg.ReplyMarkup = GetAdminKeyboard()
		h.bot.Send(msg)
		return
	}

	h.userStates[chatID] = "waiting_admin_pass"
	msg := tgbotapi.NewMessage(chatID, "Введите пароль администратора:")
	h.bot.Send(msg)
}

func (h *BotHandler) processPasscodeInput(chatID int64, text string) {
	if text != h.config.AdminPasscode {
		// Неверный пароль: просто спрашиваем снова
		h.sendError(chatID, "Неверный пароль.")
		return
	}

	h.adminOK[chatID] = true
	delete(h.userStates, chatID)

	msg := tgbotapi.NewMessage(chatID,
		"✅ Админ-панель разблокирована.\n\n"+
			"Прикрепите файлы ростера (.csv или .xlsx) сообщениями, "+
			"затем нажмите «Обработать загрузку». Первый файл задаёт схему колонок.")
	msg.ReplyMarkup = GetAdminKeyboard()
	h.bot.Send(msg)
}

// checkAdminUnlocked — все административные действия требуют
// разблокированной панели
func (h *BotHandler) checkAdminUnlocked(chatID int64) bool {
	if !h.isAdmin(chatID) || !h.adminOK[chatID] {
		h.sendError(chatID, "Сначала разблокируйте админ-панель")
		return false
	}
	return true
}

func (h *BotHandler) handleAddRoster(chatID int64, document *tgbotapi.Document) {
	if !h.checkAdminUnlocked(chatID) {
		return
	}

	if !utils.IsRosterFile(document.FileName) {
		h.sendError(chatID, "Файл должен быть в формате .csv или .xlsx")
		return
	}

	fileURL, err := h.bot.GetFileDirectURL(document.FileID)
	if err != nil {
		h.sendError(chatID, "Ошибка получения файла: "+err.Error())
		return
	}

	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("roster_%s%s", document.FileID, utils.GetFileExtension(document.FileName)))
	defer os.Remove(tmpFile)

	if err := utils.DownloadFile(fileURL, tmpFile); err != nil {
		h.sendError(chatID, "Ошибка скачивания файла: "+err.Error())
		return
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		h.sendError(chatID, "Ошибка чтения файла: "+err.Error())
		return
	}

	h.pending[chatID] = append(h.pending[chatID], roster.File{
		Name: utils.SanitizeFileName(document.FileName),
		Data: data,
	})

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"📥 Файл %s добавлен в очередь (всего: %d). Когда все файлы загружены, нажмите «Обработать загрузку».",
		document.FileName, len(h.pending[chatID])))
	h.bot.Send(msg)
}

// handleProcessRoster нормализует очередь загруженных файлов,
// сохраняет канонический ростер, обновляет указатель активного
// датасета и выдаёт коды новым руководителям. При структурной ошибке
// прежний активный ростер остаётся нетронутым
func (h *BotHandler) handleProcessRoster(chatID int64) {
	if !h.checkAdminUnlocked(chatID) {
		return
	}

	files := h.pending[chatID]
	if len(files) == 0 {
		h.sendError(chatID, "Сначала прикрепите хотя бы один файл ростера")
		return
	}
	delete(h.pending, chatID)

	r, skipped, err := roster.Normalize(files)
	if err != nil {
		var schemaErr *roster.SchemaError
		if errors.As(err, &schemaErr) {
			h.sendError(chatID, "В первом файле нет колонки Supervisor. Активный ростер не изменён.")
		} else {
			h.sendError(chatID, "Ошибка обработки файлов: "+err.Error())
		}
		return
	}

	// Сохраняем сырые загрузки рядом с каноническим ростером
	if err := os.MkdirAll(h.config.DataDir, 0755); err != nil {
		h.sendError(chatID, "Ошибка создания каталога данных: "+err.Error())
		return
	}
	for _, file := range files {
		dest := filepath.Join(h.config.DataDir, file.Name)
		if err := os.WriteFile(dest, file.Data, 0644); err != nil {
			log.Printf("Failed to save raw upload %s: %v", file.Name, err)
		}
	}

	csvData, err := r.EncodeCSV()
	if err != nil {
		h.sendError(chatID, "Ошибка сериализации ростера: "+err.Error())
		return
	}

	rosterPath := filepath.Join(h.config.DataDir, fmt.Sprintf("roster_%s.csv", time.Now().Format("20060102_150405")))
	if err := store.WriteDocument(rosterPath, csvData); err != nil {
		h.sendError(chatID, "Ошибка сохранения ростера: "+err.Error())
		return
	}

	if err := store.SaveActivePath(h.config.ActiveConfigPath, rosterPath); err != nil {
		h.sendError(chatID, "Ошибка обновления активного датасета: "+err.Error())
		return
	}

	existing, err := store.LoadCodes(h.config.CodesPath)
	if err != nil {
		h.sendError(chatID, "Ошибка чтения кодов: "+err.Error())
		return
	}

	updated := codes.Issue(r.Supervisors(), existing)
	if err := store.SaveCodes(h.config.CodesPath, updated); err != nil {
		h.sendError(chatID, "Ошибка сохранения кодов: "+err.Error())
		return
	}

	text := fmt.Sprintf("✅ Загрузка обработана.\n\nФайлов: %d\nСтрок в ростере: %d\nРуководителей: %d\n",
		len(files), len(r.Rows), len(r.Supervisors()))
	if skipped > 0 {
		text += fmt.Sprintf("⚠️ Строк пропущено (не подошли под схему): %d\n", skipped)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	h.bot.Send(msg)

	h.sendCodes(chatID, updated)
}

func (h *BotHandler) handleShowCodes(chatID int64) {
	if !h.checkAdminUnlocked(chatID) {
		return
	}

	codeMap, err := store.LoadCodes(h.config.CodesPath)
	if err != nil {
		h.sendError(chatID, "Ошибка чтения кодов: "+err.Error())
		return
	}

	h.sendCodes(chatID, codeMap)
}

func (h *BotHandler) sendCodesCSV(chatID int64, codeMap map[string]string) {
	var sb strings.Builder
	sb.WriteString("Supervisor,Code\n")
	for _, sup := range sortedSupervisors(codeMap) {
		sb.WriteString(fmt.Sprintf("%s,%s\n", sup, codeMap[sup]))
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "supervisor_codes.csv",
		Bytes: []byte(sb.String()),
	})
	doc.Caption = "📋 Коды руководителей"

	if _, err := h.bot.Send(doc); err != nil {
		log.Printf("Failed to send codes CSV: %v", err)
	}
}

func (h *BotHandler) handleExportLog(chatID int64) {
	if !h.checkAdminUnlocked(chatID) {
		return
	}

	if _, err := os.Stat(h.config.AuditLogPath); os.IsNotExist(err) {
		msg := tgbotapi.NewMessage(chatID, "Журнал пока пуст: ни одна проверка не отправлена.")
		h.bot.Send(msg)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(h.config.AuditLogPath))
	doc.Caption = "📊 Журнал проверок доступа"

	if _, err := h.bot.Send(doc); err != nil {
		h.sendError(chatID, "Ошибка отправки журнала: "+err.Error())
	}
}

func sortedSupervisors(codeMap map[string]string) []string {
	supervisors := make([]string, 0, len(codeMap))
	for sup := range codeMap {
		supervisors = append(supervisors, sup)
	}
	sort.Strings(supervisors)
	return supervisors
}
