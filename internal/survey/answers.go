package survey

import (
	"strconv"

	"github.com/pkg/errors"
)

// Answer is a single questionnaire answer. The zero value of every answer
// type means the question has not been answered yet.
type Answer interface {
	IsSet() bool
}

type FamilyStatus uint8

const (
	FamilyStatusNone FamilyStatus = iota
	// ParentsTogether: both parents live together (branch A).
	ParentsTogether
	// SingleParent: one parent is divorced, deceased or unreachable (branch B).
	SingleParent
	// Guardian: the applicant lives with a non-parental guardian (branch C).
	Guardian
)

type LivingWith uint8

const (
	LivingWithNone LivingWith = iota
	LivingWithFather
	LivingWithMother
)

type Income uint8

const (
	IncomeUnset Income = iota
	HasIncome
	NoIncome
)

// LegalStatus tells whether the applicant holds a divorce or death certificate.
type LegalStatus uint8

const (
	LegalStatusUnset LegalStatus = iota
	HasDocument
	NoDocument
)

var (
	familyStatusNames = []string{"", "A", "B", "C"}
	livingWithNames   = []string{"", "father", "mother"}
	incomeNames       = []string{"", "has_income", "no_income"}
	legalStatusNames  = []string{"", "has_document", "no_document"}
)

func (s FamilyStatus) IsSet() bool { return s != FamilyStatusNone }
func (l LivingWith) IsSet() bool   { return l != LivingWithNone }
func (i Income) IsSet() bool       { return i != IncomeUnset }
func (l LegalStatus) IsSet() bool  { return l != LegalStatusUnset }

func (s FamilyStatus) String() string { return enumName(familyStatusNames, int(s), "FamilyStatus") }
func (l LivingWith) String() string   { return enumName(livingWithNames, int(l), "LivingWith") }
func (i Income) String() string       { return enumName(incomeNames, int(i), "Income") }
func (l LegalStatus) String() string  { return enumName(legalStatusNames, int(l), "LegalStatus") }

func (s FamilyStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (l LivingWith) MarshalText() ([]byte, error)   { return []byte(l.String()), nil }
func (i Income) MarshalText() ([]byte, error)       { return []byte(i.String()), nil }
func (l LegalStatus) MarshalText() ([]byte, error)  { return []byte(l.String()), nil }

func (s *FamilyStatus) UnmarshalText(text []byte) error {
	i, err := parseEnum(familyStatusNames, string(text), "family status")
	*s = FamilyStatus(i)
	return err
}

func (l *LivingWith) UnmarshalText(text []byte) error {
	i, err := parseEnum(livingWithNames, string(text), "living with")
	*l = LivingWith(i)
	return err
}

func (i *Income) UnmarshalText(text []byte) error {
	v, err := parseEnum(incomeNames, string(text), "income")
	*i = Income(v)
	return err
}

func (l *LegalStatus) UnmarshalText(text []byte) error {
	i, err := parseEnum(legalStatusNames, string(text), "legal status")
	*l = LegalStatus(i)
	return err
}

func enumName(names []string, i int, typ string) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return typ + "(" + strconv.Itoa(i) + ")"
}

func parseEnum(names []string, name, what string) (int, error) {
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, errors.Errorf("survey: unknown %s %q", what, name)
}

// Field names one answer slot of Answers.
type Field uint8

const (
	FieldNone Field = iota
	FieldFamilyStatus
	FieldFatherIncome
	FieldMotherIncome
	FieldLivingWith
	FieldLegalStatus
	FieldSingleParentIncome
	FieldGuardianIncome
	FieldParentLegalStatus
)

// branchFields are the fields that depend on the family status.
var branchFields = []Field{
	FieldFatherIncome,
	FieldMotherIncome,
	FieldLivingWith,
	FieldLegalStatus,
	FieldSingleParentIncome,
	FieldGuardianIncome,
	FieldParentLegalStatus,
}

// Answers holds everything the applicant has told the questionnaire so far.
// Only the fields of the branch selected by FamilyStatus are ever set.
type Answers struct {
	FamilyStatus       FamilyStatus `json:"family_status,omitempty"`
	FatherIncome       Income       `json:"father_income,omitempty"`
	MotherIncome       Income       `json:"mother_income,omitempty"`
	LivingWith         LivingWith   `json:"living_with,omitempty"`
	LegalStatus        LegalStatus  `json:"legal_status,omitempty"`
	SingleParentIncome Income       `json:"single_parent_income,omitempty"`
	GuardianIncome     Income       `json:"guardian_income,omitempty"`
	ParentLegalStatus  LegalStatus  `json:"parent_legal_status,omitempty"`
}

// Get returns the answer stored in field, or nil for an unknown field.
func (a Answers) Get(field Field) Answer {
	switch field {
	case FieldFamilyStatus:
		return a.FamilyStatus
	case FieldLivingWith:
		return a.LivingWith
	}
	if p := a.income(field); p != nil {
		return *p
	}
	if p := a.legal(field); p != nil {
		return *p
	}
	return nil
}

func (a *Answers) set(field Field, v Answer) bool {
	switch value := v.(type) {
	case FamilyStatus:
		if field != FieldFamilyStatus {
			return false
		}
		a.FamilyStatus = value
	case LivingWith:
		if field != FieldLivingWith {
			return false
		}
		a.LivingWith = value
	case Income:
		p := a.income(field)
		if p == nil {
			return false
		}
		*p = value
	case LegalStatus:
		p := a.legal(field)
		if p == nil {
			return false
		}
		*p = value
	default:
		return false
	}
	return true
}

func (a *Answers) clear(field Field) {
	switch field {
	case FieldFamilyStatus:
		a.FamilyStatus = FamilyStatusNone
	case FieldLivingWith:
		a.LivingWith = LivingWithNone
	}
	if p := a.income(field); p != nil {
		*p = IncomeUnset
	}
	if p := a.legal(field); p != nil {
		*p = LegalStatusUnset
	}
}

func (a *Answers) clearBranch() {
	for _, f := range branchFields {
		a.clear(f)
	}
}

func (a *Answers) income(field Field) *Income {
	switch field {
	case FieldFatherIncome:
		return &a.FatherIncome
	case FieldMotherIncome:
		return &a.MotherIncome
	case FieldSingleParentIncome:
		return &a.SingleParentIncome
	case FieldGuardianIncome:
		return &a.GuardianIncome
	}
	return nil
}

func (a *Answers) legal(field Field) *LegalStatus {
	switch field {
	case FieldLegalStatus:
		return &a.LegalStatus
	case FieldParentLegalStatus:
		return &a.ParentLegalStatus
	}
	return nil
}
