package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type move struct {
	field Field
	value Answer
}

func TestQuestionnaire_StepSequences(t *testing.T) {
	tests := []struct {
		name  string
		moves []move
		want  []StepName
	}{
		{
			name: "parents together",
			moves: []move{
				{FieldFamilyStatus, ParentsTogether},
				{FieldFatherIncome, HasIncome},
				{FieldMotherIncome, NoIncome},
			},
			want: []StepName{StepChooseFamilyStatus, StepFatherIncome, StepMotherIncome, StepResult},
		},
		{
			name: "single parent",
			moves: []move{
				{FieldFamilyStatus, SingleParent},
				{FieldLivingWith, LivingWithMother},
				{FieldLegalStatus, NoDocument},
				{FieldSingleParentIncome, HasIncome},
			},
			want: []StepName{StepChooseFamilyStatus, StepLivingWith, StepLegalStatus, StepSingleParentIncome, StepResult},
		},
		{
			name: "guardian",
			moves: []move{
				{FieldFamilyStatus, Guardian},
				{FieldGuardianIncome, NoIncome},
				{FieldParentLegalStatus, HasDocument},
			},
			want: []StepName{StepChooseFamilyStatus, StepGuardianIncome, StepParentLegalStatus, StepResult},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New()
			visited := []StepName{q.CurrentStep().Name}
			for _, m := range tt.moves {
				require.True(t, q.Advance(m.field, m.value), "advance %v at %s", m.field, q.CurrentStep().Name)
				visited = append(visited, q.CurrentStep().Name)
			}
			assert.Equal(t, tt.want, visited)
			assert.True(t, q.Done())
			assert.False(t, q.CanGoNext())
			assert.False(t, q.CanGoBack())

			status := tt.moves[0].value.(FamilyStatus)
			assert.Equal(t, tt.want, Sequence(status))
			assert.Equal(t, status, q.CurrentStep().Branch)
		})
	}
}

func TestQuestionnaire_UndecidedSequence(t *testing.T) {
	assert.Equal(t, []StepName{StepChooseFamilyStatus}, Sequence(FamilyStatusNone))

	q := New()
	assert.Equal(t, Step{Name: StepChooseFamilyStatus}, q.CurrentStep())
	assert.False(t, q.CanGoNext())
	assert.False(t, q.CanGoBack())
	assert.Nil(t, q.RequiredDocuments())
}

func TestQuestionnaire_AdvanceRefusesUnsetValue(t *testing.T) {
	tests := []struct {
		name  string
		setup []move
		try   move
	}{
		{name: "unset family status", try: move{FieldFamilyStatus, FamilyStatusNone}},
		{name: "nil answer", try: move{FieldFamilyStatus, nil}},
		{
			name:  "unset father income",
			setup: []move{{FieldFamilyStatus, ParentsTogether}},
			try:   move{FieldFatherIncome, IncomeUnset},
		},
		{
			name:  "unset living with",
			setup: []move{{FieldFamilyStatus, SingleParent}},
			try:   move{FieldLivingWith, LivingWithNone},
		},
		{
			name:  "field of another step",
			setup: []move{{FieldFamilyStatus, ParentsTogether}},
			try:   move{FieldMotherIncome, HasIncome},
		},
		{
			name:  "field of another branch",
			setup: []move{{FieldFamilyStatus, Guardian}},
			try:   move{FieldFatherIncome, HasIncome},
		},
		{
			name:  "wrong answer type",
			setup: []move{{FieldFamilyStatus, SingleParent}},
			try:   move{FieldLivingWith, HasIncome},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New()
			for _, m := range tt.setup {
				require.True(t, q.Advance(m.field, m.value))
			}
			before := *q

			assert.False(t, q.Advance(tt.try.field, tt.try.value))
			assert.Equal(t, before, *q)
			assert.False(t, q.Next())
			assert.Equal(t, before, *q)
		})
	}
}

func TestQuestionnaire_AdvanceAtResultIsNoop(t *testing.T) {
	q := New()
	require.True(t, q.Advance(FieldFamilyStatus, Guardian))
	require.True(t, q.Advance(FieldGuardianIncome, HasIncome))
	require.True(t, q.Advance(FieldParentLegalStatus, NoDocument))
	before := *q

	assert.False(t, q.Advance(FieldParentLegalStatus, HasDocument))
	assert.False(t, q.Retreat())
	assert.Equal(t, before, *q)
}

func TestQuestionnaire_RetreatFromFirstStep(t *testing.T) {
	q := New()
	assert.False(t, q.Retreat())

	require.True(t, q.Select(FieldFamilyStatus, SingleParent))
	before := *q
	assert.False(t, q.Retreat())
	assert.Equal(t, before, *q)
}

func TestQuestionnaire_RetreatClearsLeftStep(t *testing.T) {
	q := New()
	require.True(t, q.Advance(FieldFamilyStatus, SingleParent))
	require.True(t, q.Advance(FieldLivingWith, LivingWithFather))
	require.True(t, q.Select(FieldLegalStatus, HasDocument))

	require.True(t, q.Retreat())
	assert.Equal(t, StepLivingWith, q.CurrentStep().Name)
	assert.Equal(t, Answers{FamilyStatus: SingleParent, LivingWith: LivingWithFather}, q.Answers())

	require.True(t, q.Retreat())
	assert.Equal(t, StepChooseFamilyStatus, q.CurrentStep().Name)
	assert.Equal(t, Answers{FamilyStatus: SingleParent}, q.Answers())
	assert.True(t, q.CanGoNext())
}

func TestQuestionnaire_SwitchingFamilyStatusResetsBranch(t *testing.T) {
	q := New()
	require.True(t, q.Advance(FieldFamilyStatus, ParentsTogether))
	require.True(t, q.Advance(FieldFatherIncome, HasIncome))
	require.True(t, q.Select(FieldMotherIncome, NoIncome))
	require.True(t, q.Retreat())
	require.True(t, q.Retreat())

	require.True(t, q.Select(FieldFamilyStatus, Guardian))
	assert.Equal(t, Answers{FamilyStatus: Guardian}, q.Answers())

	// stale answers cannot leak in through Answers internals either
	q.answers.FatherIncome = HasIncome
	require.True(t, q.Select(FieldFamilyStatus, SingleParent))
	assert.Equal(t, Answers{FamilyStatus: SingleParent}, q.Answers())

	require.True(t, q.Next())
	assert.Equal(t, Step{Branch: SingleParent, Name: StepLivingWith}, q.CurrentStep())
}

func TestQuestionnaire_Reset(t *testing.T) {
	q := New()
	require.True(t, q.Advance(FieldFamilyStatus, ParentsTogether))
	require.True(t, q.Advance(FieldFatherIncome, HasIncome))
	require.True(t, q.Advance(FieldMotherIncome, HasIncome))
	require.True(t, q.Done())
	require.NotEmpty(t, q.RequiredDocuments())

	q.Reset()
	assert.Equal(t, Step{Name: StepChooseFamilyStatus}, q.CurrentStep())
	assert.Equal(t, Answers{}, q.Answers())
	assert.Nil(t, q.RequiredDocuments())
}

func TestQuestionnaire_RequiredDocumentsAtResult(t *testing.T) {
	q := New()
	require.True(t, q.Advance(FieldFamilyStatus, ParentsTogether))
	require.True(t, q.Advance(FieldFatherIncome, HasIncome))
	assert.Nil(t, q.RequiredDocuments())

	require.True(t, q.Advance(FieldMotherIncome, NoIncome))
	assert.Equal(t, BuildRequiredDocuments(q.Answers()), q.RequiredDocuments())
}

func TestAnswers_Complete(t *testing.T) {
	assert.False(t, Answers{}.Complete())
	assert.False(t, Answers{FamilyStatus: Guardian, GuardianIncome: NoIncome}.Complete())
	assert.True(t, Answers{FamilyStatus: Guardian, GuardianIncome: NoIncome, ParentLegalStatus: NoDocument}.Complete())

	q := New()
	require.True(t, q.Advance(FieldFamilyStatus, SingleParent))
	require.True(t, q.Advance(FieldLivingWith, LivingWithFather))
	require.True(t, q.Advance(FieldLegalStatus, HasDocument))
	assert.False(t, q.Answers().Complete())
	require.True(t, q.Advance(FieldSingleParentIncome, HasIncome))
	assert.True(t, q.Answers().Complete())
}
