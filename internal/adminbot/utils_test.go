package adminbot

import (
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"

	"github.com/gratefultolord/aid_docs_bot/internal/db"
	"github.com/gratefultolord/aid_docs_bot/internal/survey"
)

func TestParseRequestID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12", 12, true},
		{"#12", 12, true},
		{"  #7 ", 7, true},
		{"#", 0, false},
		{"12a", 0, false},
		{BtnCheckRequests, 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		id, ok := parseRequestID(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, id, tt.in)
	}
}

func TestStatusFromTitle(t *testing.T) {
	for _, s := range statusOrder {
		got, ok := statusFromTitle(statusTitles[s])
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}

	got, ok := statusFromTitle(BtnAllStatuses)
	assert.True(t, ok)
	assert.Empty(t, got)

	_, ok = statusFromTitle("Удалённые")
	assert.False(t, ok)
}

func TestDescribeAnswers(t *testing.T) {
	lines := describeAnswers(survey.Answers{
		FamilyStatus:       survey.SingleParent,
		LivingWith:         survey.LivingWithMother,
		LegalStatus:        survey.NoDocument,
		SingleParentIncome: survey.HasIncome,
	})
	assert.Equal(t, []string{
		"Семья: один из родителей в разводе, умер или недоступен",
		"Живёт: с матерью",
		"Свидетельство о разводе/смерти: нет свидетельства",
		"Родитель: есть доход",
	}, lines)

	lines = describeAnswers(survey.Answers{
		FamilyStatus: survey.ParentsTogether,
		FatherIncome: survey.NoIncome,
		MotherIncome: survey.HasIncome,
	})
	assert.Equal(t, []string{
		"Семья: родители живут вместе",
		"Отец: нет дохода",
		"Мать: есть доход",
	}, lines)

	assert.Len(t, describeAnswers(survey.Answers{FamilyStatus: survey.Guardian}), 3)
}

func TestRenderRequest(t *testing.T) {
	app := &db.Application{
		ID:          5,
		FirstName:   "Иван",
		LastName:    "Петров",
		PhoneNumber: "+79991234567",
		Answers:     db.Answers{Answers: survey.Answers{FamilyStatus: survey.Guardian, GuardianIncome: survey.HasIncome, ParentLegalStatus: survey.HasDocument}},
		CreatedAt:   time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}
	docs := []db.ApplicationDocument{
		{Description: "Заявление", OCRVerified: nil},
		{Description: "Справка о составе семьи", OCRVerified: pointer.ToBool(true)},
		{Description: "Копия свидетельства", OCRVerified: pointer.ToBool(false)},
	}

	out := renderRequest(app, docs)
	assert.Contains(t, out, "Заявка #5")
	assert.Contains(t, out, "Подана: 01.03.2024 10:30")
	assert.Contains(t, out, "Опекун: есть доход")
	assert.Contains(t, out, "1. Заявление\n")
	assert.Contains(t, out, "2. Справка о составе семьи ✓\n")
	assert.True(t, len(out) > 0 && out[len(out)-1] != '\n')
	assert.Contains(t, out, "3. Копия свидетельства")
	assert.NotContains(t, out, "3. Копия свидетельства ✓")
}

func TestRenderRequestList(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := renderRequestList([]db.Application{
		{ID: 2, FirstName: "Анна", LastName: "Смирнова", Status: db.StatusPending, CreatedAt: created},
		{ID: 1, FirstName: "Иван", LastName: "Петров", Status: db.StatusApproved, CreatedAt: created},
	})

	assert.Equal(t,
		"#2 Смирнова Анна — На проверке — 01.03.2024\n#1 Петров Иван — Одобренные — 01.03.2024", out)
}

func TestDecisionText(t *testing.T) {
	assert.Contains(t, decisionText(db.StatusRejected, "нет подписи"), "Причина: нет подписи")
	assert.Contains(t, decisionText(db.StatusNeedsRevision, "размыто"), "Причина: размыто")
	assert.Contains(t, decisionText(db.StatusApproved, ""), "одобрена")
}

func TestDecisionButtons(t *testing.T) {
	labels := func(status string) []string {
		var out []string
		for _, b := range decisionButtons(status) {
			out = append(out, b.Text)
		}
		return out
	}

	assert.Equal(t, []string{"Загрузить документы заново", "Написать админу"}, labels(db.StatusNeedsRevision))
	assert.Equal(t, []string{"Написать админу"}, labels(db.StatusRejected))
	assert.Equal(t, []string{"Написать админу"}, labels(db.StatusApproved))
}
