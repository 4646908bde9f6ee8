package adminbot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/gratefultolord/aid_docs_bot/internal/bot"
	"github.com/gratefultolord/aid_docs_bot/internal/db"
)

// Notifier sends decisions to applicants through the applicant bot.
type Notifier struct {
	botAPI *tgbotapi.BotAPI
}

func NewNotifier(applicantBot *tgbotapi.BotAPI) *Notifier {
	return &Notifier{botAPI: applicantBot}
}

func (n *Notifier) Notify(telegramUserID int64, status, reason string) error {
	msg := tgbotapi.NewMessage(telegramUserID, decisionText(status, reason))
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(decisionButtons(status)...))

	if _, err := n.botAPI.Send(msg); err != nil {
		return errors.Wrap(err, "Notifier.Notify")
	}
	return nil
}

func decisionButtons(status string) []tgbotapi.KeyboardButton {
	buttons := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(bot.BtnWriteAdmin)}
	if status == db.StatusNeedsRevision {
		buttons = append([]tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(bot.BtnReupload)}, buttons...)
	}
	return buttons
}
