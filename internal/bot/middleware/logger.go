// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// previewLimit — сколько символов текста попадает в лог.
const previewLimit = 50

// LogMessage логирует входящее сообщение игрока.
// В лог пишутся user_id, chat_id, username, флаг команды и превью текста.
func LogMessage(message *tgbotapi.Message) {
	if message == nil || message.From == nil {
		return
	}

	isCommand := false
	if t := strings.TrimSpace(message.Text); t != "" {
		isCommand = strings.ContainsAny(t[:1], "!./")
	}

	log.WithFields(log.Fields{
		"user_id":    message.From.ID,
		"chat_id":    message.Chat.ID,
		"username":   message.From.UserName,
		"is_command": isCommand,
		"text":       previewText(message.Text),
	}).Debug("Входящее сообщение")
}

// previewText обрезает текст до previewLimit символов.
// Режем по рунам, а не по байтам: кириллица многобайтовая,
// и срез по байтам даёт битый UTF-8 в логах.
func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "..."
}
