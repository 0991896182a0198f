package main

import (
	"log"

	"accessreview/config"
	"accessreview/handlers"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	// Загрузка конфигурации
	cfg := config.Load()
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	if len(cfg.AdminIDs) == 0 {
		log.Println("Warning: ADMIN_IDS not set, admin panel is gated by passcode only")
	}

	// Инициализация бота
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	handler := handlers.NewBotHandler(bot, cfg)

	// Настройка обновлений
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	// Обработка сообщений
	for update := range updates {
		if update.CallbackQuery != nil {
			handler.HandleCallback(update)
			continue
		}

		if update.Message != nil {
			handler.HandleMessage(update)
		}
	}
}
