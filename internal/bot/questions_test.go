package bot

import (
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratefultolord/aid_docs_bot/internal/survey"
)

func TestQuestions_CoverEveryAnsweredStep(t *testing.T) {
	for _, status := range []survey.FamilyStatus{survey.ParentsTogether, survey.SingleParent, survey.Guardian} {
		for _, step := range survey.Sequence(status) {
			if step == survey.StepResult {
				continue
			}
			q, ok := questions[step]
			require.True(t, ok, "no question for %s", step)
			assert.NotEmpty(t, q.Options, step)
		}
	}
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name      string
		step      survey.StepName
		text      string
		wantField survey.Field
		wantValue survey.Answer
		wantOK    bool
	}{
		{
			name:      "family status",
			step:      survey.StepChooseFamilyStatus,
			text:      "Живу с опекуном",
			wantField: survey.FieldFamilyStatus,
			wantValue: survey.Guardian,
			wantOK:    true,
		},
		{
			name:      "case and spaces",
			step:      survey.StepFatherIncome,
			text:      "  не работает ",
			wantField: survey.FieldFatherIncome,
			wantValue: survey.NoIncome,
			wantOK:    true,
		},
		{
			name:      "same label on another step",
			step:      survey.StepGuardianIncome,
			text:      "Работает, есть доход",
			wantField: survey.FieldGuardianIncome,
			wantValue: survey.HasIncome,
			wantOK:    true,
		},
		{
			name:      "living with",
			step:      survey.StepLivingWith,
			text:      "С матерью",
			wantField: survey.FieldLivingWith,
			wantValue: survey.LivingWithMother,
			wantOK:    true,
		},
		{name: "unknown label", step: survey.StepLegalStatus, text: "может быть"},
		{name: "result step", step: survey.StepResult, text: "Нет"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, value, ok := parseAnswer(tt.step, tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantField, field)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestParseAnswer_DrivesQuestionnaire(t *testing.T) {
	q := survey.New()
	for _, label := range []string{
		"Один из родителей в разводе, умер или недоступен",
		"С отцом",
		"Да, есть",
		"Не работает",
	} {
		field, value, ok := parseAnswer(q.CurrentStep().Name, label)
		require.True(t, ok, label)
		require.True(t, q.Advance(field, value), label)
	}

	require.True(t, q.Done())
	assert.Equal(t, survey.Answers{
		FamilyStatus:       survey.SingleParent,
		LivingWith:         survey.LivingWithFather,
		LegalStatus:        survey.HasDocument,
		SingleParentIncome: survey.NoIncome,
	}, q.Answers())
}

func TestQuestionKeyboard(t *testing.T) {
	q := questions[survey.StepFatherIncome]

	kb := questionKeyboard(q, true)
	require.Len(t, kb.Keyboard, 3)
	assert.Equal(t, "Работает, есть доход", kb.Keyboard[0][0].Text)
	assert.Equal(t, []string{BtnBack, BtnRestart}, []string{kb.Keyboard[2][0].Text, kb.Keyboard[2][1].Text})

	kb = questionKeyboard(questions[survey.StepChooseFamilyStatus], false)
	last := kb.Keyboard[len(kb.Keyboard)-1]
	require.Len(t, last, 1)
	assert.Equal(t, BtnRestart, last[0].Text)
}

func TestRenderDocuments(t *testing.T) {
	docs := survey.Documents(survey.Answers{FamilyStatus: survey.Guardian, GuardianIncome: survey.HasIncome, ParentLegalStatus: survey.NoDocument})

	out := renderDocuments(docs)
	assert.Contains(t, out, "1. "+docs[0].Description+"\n")
	assert.Contains(t, out, "6. "+docs[5].Description)
	assert.NotContains(t, out, "7. ")
	assert.Equal(t, "", renderDocuments(nil))
}

func TestDocumentRecords(t *testing.T) {
	docs := survey.Documents(survey.Answers{FamilyStatus: survey.ParentsTogether, FatherIncome: survey.HasIncome, MotherIncome: survey.HasIncome})
	uploads := []Upload{
		{Path: "doc_files/1.jpg"},
		{Path: "doc_files/2.jpg", OCRVerified: pointer.ToBool(true)},
	}

	records := documentRecords(docs, uploads)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[1].Position)
	assert.Equal(t, string(survey.KindVolunteerProof), records[1].Kind)
	assert.Equal(t, docs[1].Description, records[1].Description)
	assert.Equal(t, "doc_files/2.jpg", records[1].FilePath)
	assert.Equal(t, pointer.ToBool(true), records[1].OCRVerified)
	assert.Nil(t, records[0].OCRVerified)
}
