package telegram_api

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// Sender отправляет сообщения в Telegram; *BotClient реализует его.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ReportMailer доставляет файлы отчетов в чат бухгалтерии.
// ReportMailer delivers report documents to the accounting chat.
type ReportMailer struct {
	sender Sender
	chatID int64
}

// NewReportMailer создает отправителя отчетов в chatID.
func NewReportMailer(sender Sender, chatID int64) *ReportMailer {
	return &ReportMailer{sender: sender, chatID: chatID}
}

// NewReportDocument собирает сообщение с файлом отчета из памяти.
func NewReportDocument(chatID int64, filename string, data []byte, caption string) tgbotapi.DocumentConfig {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  filename,
		Bytes: data,
	})
	doc.Caption = caption
	return doc
}

// SendReport отправляет файл отчета в чат бухгалтерии.
func (m *ReportMailer) SendReport(filename string, data []byte, caption string) error {
	if m == nil || m.sender == nil {
		return fmt.Errorf("отправка отчетов в Telegram не настроена")
	}
	if len(data) == 0 {
		return fmt.Errorf("пустой файл отчета %s", filename)
	}

	if _, err := m.sender.Send(NewReportDocument(m.chatID, filename, data, caption)); err != nil {
		log.Printf("SendReport: ошибка отправки файла %s в чат %d: %v", filename, m.chatID, err)
		return fmt.Errorf("ошибка отправки отчета в Telegram: %w", err)
	}
	log.Printf("SendReport: файл %s (%d байт) отправлен в чат %d", filename, len(data), m.chatID)
	return nil
}
