package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/aid_docs_bot/internal/db"
	"github.com/gratefultolord/aid_docs_bot/internal/survey"
)

const (
	BtnStartSurvey = "Заполнить анкету"
	BtnWriteAdmin  = "Написать админу"
	BtnBack        = "Назад"
	BtnRestart     = "Начать заново"
	BtnSubmit      = "Отправить заявку"
	BtnReupload    = "Загрузить документы заново"
	BtnCancel      = "Отмена"
)

type option struct {
	Label string
	Value survey.Answer
}

type question struct {
	Text    string
	Options []option
}

var incomeOptions = []option{
	{Label: "Работает, есть доход", Value: survey.HasIncome},
	{Label: "Не работает", Value: survey.NoIncome},
}

var certificateOptions = []option{
	{Label: "Да, есть", Value: survey.HasDocument},
	{Label: "Нет", Value: survey.NoDocument},
}

var questions = map[survey.StepName]question{
	survey.StepChooseFamilyStatus: {
		Text: "Выберите ваше семейное положение",
		Options: []option{
			{Label: "Родители живут вместе", Value: survey.ParentsTogether},
			{Label: "Один из родителей в разводе, умер или недоступен", Value: survey.SingleParent},
			{Label: "Живу с опекуном", Value: survey.Guardian},
		},
	},
	survey.StepFatherIncome: {Text: "Есть ли у отца доход?", Options: incomeOptions},
	survey.StepMotherIncome: {Text: "Есть ли у матери доход?", Options: incomeOptions},
	survey.StepLivingWith: {
		Text: "С кем из родителей вы живёте?",
		Options: []option{
			{Label: "С отцом", Value: survey.LivingWithFather},
			{Label: "С матерью", Value: survey.LivingWithMother},
		},
	},
	survey.StepLegalStatus:        {Text: "Есть ли у вас свидетельство о разводе или о смерти родителя?", Options: certificateOptions},
	survey.StepSingleParentIncome: {Text: "Есть ли доход у родителя, с которым вы живёте?", Options: incomeOptions},
	survey.StepGuardianIncome:     {Text: "Есть ли доход у опекуна?", Options: incomeOptions},
	survey.StepParentLegalStatus:  {Text: "Есть ли у вас свидетельство о разводе или о смерти родителей?", Options: certificateOptions},
}

// parseAnswer maps a keyboard label to the answer of step.
func parseAnswer(step survey.StepName, text string) (survey.Field, survey.Answer, bool) {
	q, ok := questions[step]
	if !ok {
		return survey.FieldNone, nil, false
	}

	text = NormalizeText(text)
	for _, o := range q.Options {
		if NormalizeText(o.Label) == text {
			return step.Field(), o.Value, true
		}
	}

	return survey.FieldNone, nil, false
}

func questionKeyboard(q question, canGoBack bool) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(q.Options)+1)
	for _, o := range q.Options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(o.Label)))
	}

	var nav []tgbotapi.KeyboardButton
	if canGoBack {
		nav = append(nav, tgbotapi.NewKeyboardButton(BtnBack))
	}
	nav = append(nav, tgbotapi.NewKeyboardButton(BtnRestart))
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(nav...))

	return tgbotapi.NewReplyKeyboard(rows...)
}

func renderDocuments(docs []survey.Document) string {
	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// documentRecords pairs every required document with its upload.
func documentRecords(docs []survey.Document, uploads []Upload) []db.ApplicationDocument {
	n := len(docs)
	if len(uploads) < n {
		n = len(uploads)
	}

	records := make([]db.ApplicationDocument, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, db.ApplicationDocument{
			Position:    i,
			Kind:        string(docs[i].Kind),
			Description: docs[i].Description,
			FilePath:    uploads[i].Path,
			OCRVerified: uploads[i].OCRVerified,
		})
	}
	return records
}
