package handlers

import (
	"fmt"

	"accessreview/review"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func GetMainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🔐 Проверка доступа"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("⚙️ Админ-панель"),
		),
	)
}

func GetAdminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Обработать загрузку"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Коды руководителей"),
			tgbotapi.NewKeyboardButton("Журнал проверок"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Главное меню"),
		),
	)
}

// CreateReviewKeyboard строит клавиатуру экрана проверки: по ряду на
// сотрудника с двумя независимыми переключателями плюс «одобрить всех»
// и «отправить»
func CreateReviewKeyboard(session *review.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for i, emp := range session.Team {
		approveMark := "⬜"
		if session.IsApproved(i) {
			approveMark = "✅"
		}
		removeMark := "⬜"
		if session.IsRemoved(i) {
			removeMark = "🗑"
		}

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", approveMark, emp.UserID),
				fmt.Sprintf("approve_%d", i),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s Убрать", removeMark),
				fmt.Sprintf("remove_%d", i),
			),
		))
	}

	if len(session.Team) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить всех", "approve_all"),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📤 Отправить", "submit_review"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func CreateCompletedKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Начать новую проверку", "new_review"),
		),
	)
}
