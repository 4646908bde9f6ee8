package adminbot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/aid_docs_bot/internal/db"
	"github.com/gratefultolord/aid_docs_bot/internal/survey"
)

const (
	BtnCheckRequests = "Проверить заявки"
	BtnListRequests  = "Список заявок"
	BtnMessages      = "Сообщения пользователей"
	BtnAddAdmin      = "Добавить админа"
	BtnMainMenu      = "Главное меню"
	BtnApprove       = "Одобрить"
	BtnReject        = "Отклонить"
	BtnRevision      = "На доработку"
	BtnCancel        = "Отмена"
	BtnAllStatuses   = "Все"
)

var statusTitles = map[string]string{
	db.StatusPending:       "На проверке",
	db.StatusApproved:      "Одобренные",
	db.StatusRejected:      "Отклонённые",
	db.StatusNeedsRevision: "На доработке",
}

var statusOrder = []string{db.StatusPending, db.StatusNeedsRevision, db.StatusApproved, db.StatusRejected}

func AdminMainMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnCheckRequests),
			tgbotapi.NewKeyboardButton(BtnListRequests),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnMessages),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnAddAdmin),
		),
	)
}

func RequestActionButtons() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnApprove),
			tgbotapi.NewKeyboardButton(BtnReject),
			tgbotapi.NewKeyboardButton(BtnRevision),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnMainMenu),
		),
	)
}

func FilterMenu() tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, s := range statusOrder {
		row = append(row, tgbotapi.NewKeyboardButton(statusTitles[s]))
	}
	return tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnAllStatuses),
			tgbotapi.NewKeyboardButton(BtnMainMenu),
		),
	)
}

func CancelMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnCancel),
		),
	)
}

// statusFromTitle maps a filter button back to a status. "Все" maps to the
// empty status, which lists everything.
func statusFromTitle(title string) (string, bool) {
	if title == BtnAllStatuses {
		return "", true
	}
	for s, t := range statusTitles {
		if t == title {
			return s, true
		}
	}
	return "", false
}

var requestRef = regexp.MustCompile(`^#?(\d+)$`)

// parseRequestID accepts "12" or "#12".
func parseRequestID(text string) (int64, bool) {
	m := requestRef.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

var familyStatusTitles = map[survey.FamilyStatus]string{
	survey.ParentsTogether: "родители живут вместе",
	survey.SingleParent:    "один из родителей в разводе, умер или недоступен",
	survey.Guardian:        "живёт с опекуном",
}

var incomeTitles = map[survey.Income]string{
	survey.HasIncome: "есть доход",
	survey.NoIncome:  "нет дохода",
}

var legalTitles = map[survey.LegalStatus]string{
	survey.HasDocument: "есть свидетельство",
	survey.NoDocument:  "нет свидетельства",
}

var livingWithTitles = map[survey.LivingWith]string{
	survey.LivingWithFather: "с отцом",
	survey.LivingWithMother: "с матерью",
}

// describeAnswers renders the answers of the applicant's branch only.
func describeAnswers(a survey.Answers) []string {
	lines := []string{"Семья: " + familyStatusTitles[a.FamilyStatus]}

	switch a.FamilyStatus {
	case survey.ParentsTogether:
		lines = append(lines,
			"Отец: "+incomeTitles[a.FatherIncome],
			"Мать: "+incomeTitles[a.MotherIncome],
		)
	case survey.SingleParent:
		lines = append(lines,
			"Живёт: "+livingWithTitles[a.LivingWith],
			"Свидетельство о разводе/смерти: "+legalTitles[a.LegalStatus],
			"Родитель: "+incomeTitles[a.SingleParentIncome],
		)
	case survey.Guardian:
		lines = append(lines,
			"Опекун: "+incomeTitles[a.GuardianIncome],
			"Свидетельство о разводе/смерти родителей: "+legalTitles[a.ParentLegalStatus],
		)
	}

	return lines
}

func renderRequest(app *db.Application, docs []db.ApplicationDocument) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Заявка #%d\nИмя: %s\nФамилия: %s\nТелефон: %s\nПодана: %s\n\n",
		app.ID, app.FirstName, app.LastName, app.PhoneNumber, app.CreatedAt.Format("02.01.2006 15:04"))

	for _, line := range describeAnswers(app.Answers.Answers) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString("\nДокументы:\n")
	for i, d := range docs {
		mark := ""
		if d.OCRVerified != nil && *d.OCRVerified {
			mark = " ✓"
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, d.Description, mark)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderRequestList(apps []db.Application) string {
	var b strings.Builder
	for _, a := range apps {
		fmt.Fprintf(&b, "#%d %s %s — %s — %s\n",
			a.ID, a.LastName, a.FirstName, statusTitles[a.Status], a.CreatedAt.Format("02.01.2006"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func decisionText(status, reason string) string {
	switch status {
	case db.StatusApproved:
		return "Ваша заявка одобрена! Сотрудник фонда свяжется с вами."
	case db.StatusRejected:
		return fmt.Sprintf("Ваша заявка отклонена. Причина: %s", reason)
	case db.StatusNeedsRevision:
		return fmt.Sprintf("Ваша заявка требует доработки. Причина: %s\nЗагрузите документы заново.", reason)
	default:
		return "Статус вашей заявки изменён"
	}
}
