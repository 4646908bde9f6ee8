package survey

// StepName identifies one screen of the questionnaire.
type StepName string

const (
	StepChooseFamilyStatus StepName = "choose-family-status"
	StepFatherIncome       StepName = "father-income"
	StepMotherIncome       StepName = "mother-income"
	StepLivingWith         StepName = "living-with"
	StepLegalStatus        StepName = "legal-status"
	StepSingleParentIncome StepName = "single-parent-income"
	StepGuardianIncome     StepName = "guardian-income"
	StepParentLegalStatus  StepName = "parent-legal-status"
	StepResult             StepName = "result"
)

var stepFields = map[StepName]Field{
	StepChooseFamilyStatus: FieldFamilyStatus,
	StepFatherIncome:       FieldFatherIncome,
	StepMotherIncome:       FieldMotherIncome,
	StepLivingWith:         FieldLivingWith,
	StepLegalStatus:        FieldLegalStatus,
	StepSingleParentIncome: FieldSingleParentIncome,
	StepGuardianIncome:     FieldGuardianIncome,
	StepParentLegalStatus:  FieldParentLegalStatus,
}

var sequences = map[FamilyStatus][]StepName{
	ParentsTogether: {StepChooseFamilyStatus, StepFatherIncome, StepMotherIncome, StepResult},
	SingleParent:    {StepChooseFamilyStatus, StepLivingWith, StepLegalStatus, StepSingleParentIncome, StepResult},
	Guardian:        {StepChooseFamilyStatus, StepGuardianIncome, StepParentLegalStatus, StepResult},
}

var undecided = []StepName{StepChooseFamilyStatus}

// Field returns the answer slot the step collects. The result step collects
// nothing and returns FieldNone.
func (n StepName) Field() Field {
	return stepFields[n]
}

// Step is a position in the questionnaire. Branch is FamilyStatusNone while
// the applicant is still choosing the family status.
type Step struct {
	Branch FamilyStatus
	Name   StepName
}

// Sequence returns the ordered steps visited for the given family status.
func Sequence(status FamilyStatus) []StepName {
	return append([]StepName(nil), sequenceOf(status)...)
}

func sequenceOf(status FamilyStatus) []StepName {
	if seq, ok := sequences[status]; ok {
		return seq
	}
	return undecided
}

// Complete reports whether every question of the branch selected by
// a.FamilyStatus is answered.
func (a Answers) Complete() bool {
	for _, step := range sequenceOf(a.FamilyStatus) {
		field := step.Field()
		if field == FieldNone {
			continue
		}
		if v := a.Get(field); v == nil || !v.IsSet() {
			return false
		}
	}
	return true
}

// Questionnaire walks one applicant through the eligibility questions.
// It is owned by a single session and is not safe for concurrent use.
type Questionnaire struct {
	answers Answers
	pos     int
}

func New() *Questionnaire {
	return &Questionnaire{}
}

func (q *Questionnaire) CurrentStep() Step {
	name := sequenceOf(q.answers.FamilyStatus)[q.pos]
	if name == StepChooseFamilyStatus {
		return Step{Name: name}
	}
	return Step{Branch: q.answers.FamilyStatus, Name: name}
}

// Done reports whether the result step has been reached. Only Reset is
// meaningful afterwards.
func (q *Questionnaire) Done() bool {
	return q.CurrentStep().Name == StepResult
}

func (q *Questionnaire) CanGoNext() bool {
	step := q.CurrentStep().Name
	if step == StepResult {
		return false
	}
	v := q.answers.Get(step.Field())
	return v != nil && v.IsSet()
}

func (q *Questionnaire) CanGoBack() bool {
	return q.pos > 0 && !q.Done()
}

// Select records value for the current step without moving. It refuses
// unset values and fields the current step does not collect. Choosing a
// different family status wipes every branch answer.
func (q *Questionnaire) Select(field Field, value Answer) bool {
	if value == nil || !value.IsSet() {
		return false
	}

	step := q.CurrentStep().Name
	if step == StepResult || step.Field() != field {
		return false
	}

	if field == FieldFamilyStatus {
		status, ok := value.(FamilyStatus)
		if !ok {
			return false
		}
		if status != q.answers.FamilyStatus {
			q.answers.clearBranch()
		}
	}

	return q.answers.set(field, value)
}

// Next moves to the following step of the active branch once the current
// step is answered.
func (q *Questionnaire) Next() bool {
	if !q.CanGoNext() {
		return false
	}
	q.pos++
	return true
}

// Advance answers the current step and moves forward. The state is left
// untouched when the answer is refused.
func (q *Questionnaire) Advance(field Field, value Answer) bool {
	if !q.Select(field, value) {
		return false
	}
	return q.Next()
}

// Retreat steps back and clears the answer of the step being left.
func (q *Questionnaire) Retreat() bool {
	if !q.CanGoBack() {
		return false
	}
	leaving := sequenceOf(q.answers.FamilyStatus)[q.pos]
	q.answers.clear(leaving.Field())
	q.pos--
	return true
}

func (q *Questionnaire) Reset() {
	*q = Questionnaire{}
}

// Answers returns a copy of the answers collected so far.
func (q *Questionnaire) Answers() Answers {
	return q.answers
}

// RequiredDocuments returns the document list once the result step is
// reached, nil before that.
func (q *Questionnaire) RequiredDocuments() []string {
	if !q.Done() {
		return nil
	}
	return BuildRequiredDocuments(q.answers)
}
