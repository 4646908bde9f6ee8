package survey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func kinds(docs []Document) []DocumentKind {
	out := make([]DocumentKind, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Kind)
	}
	return out
}

func TestDocuments_ParentsTogether(t *testing.T) {
	a := Answers{FamilyStatus: ParentsTogether, FatherIncome: HasIncome, MotherIncome: NoIncome}
	docs := Documents(a)

	assert.Equal(t, []DocumentKind{
		KindApplicationForm,
		KindVolunteerProof,
		KindConsent,
		KindIDCopy,
		KindEmployedIncome,
		KindGovernmentIncome,
	}, kinds(docs))
	assert.Equal(t, []Holder{HolderFather, HolderMother, HolderApplicant}, docs[2].Holders)
	assert.Equal(t, []Holder{HolderFather, HolderMother, HolderApplicant}, docs[3].Holders)
	assert.Equal(t, []Holder{HolderFather}, docs[4].Holders)
	assert.Equal(t, []Holder{HolderMother}, docs[5].Holders)

	lines := BuildRequiredDocuments(a)
	assert.Equal(t, []string{
		"Заявление на получение стипендии (стандартная форма)",
		"Подтверждение волонтёрской деятельности",
		"Согласие на сбор и раскрытие персональных данных (отец, мать, заявитель)",
		"Копии удостоверений личности (отец, мать, заявитель)",
		"Справка о доходах с места работы (отец)",
		"Справка о доходах, заверенная госорганом (мать, не работает)",
	}, lines)
}

func TestDocuments_SingleParent(t *testing.T) {
	a := Answers{
		FamilyStatus:       SingleParent,
		LivingWith:         LivingWithMother,
		LegalStatus:        NoDocument,
		SingleParentIncome: HasIncome,
	}
	docs := Documents(a)

	assert.Equal(t, []DocumentKind{
		KindApplicationForm,
		KindVolunteerProof,
		KindConsent,
		KindIDCopy,
		KindFamilyStatusCertificate,
		KindEmployedIncome,
	}, kinds(docs))
	assert.Equal(t, []Holder{HolderMother}, docs[5].Holders)

	for _, d := range docs {
		assert.NotContains(t, d.Holders, HolderFather)
		assert.NotContains(t, d.Description, HolderFather.Title())
	}
}

func TestDocuments_SingleParentWithCertificate(t *testing.T) {
	a := Answers{
		FamilyStatus:       SingleParent,
		LivingWith:         LivingWithFather,
		LegalStatus:        HasDocument,
		SingleParentIncome: NoIncome,
	}

	assert.Equal(t, []DocumentKind{
		KindApplicationForm,
		KindVolunteerProof,
		KindConsent,
		KindIDCopy,
		KindDivorceOrDeathCertificate,
		KindGovernmentIncome,
	}, kinds(Documents(a)))
}

func TestDocuments_GuardianAlwaysNeedsFamilyCertificate(t *testing.T) {
	tests := []struct {
		name  string
		legal LegalStatus
		want  []DocumentKind
	}{
		{
			name:  "has document",
			legal: HasDocument,
			want: []DocumentKind{
				KindApplicationForm, KindVolunteerProof, KindConsent, KindIDCopy,
				KindGovernmentIncome, KindDivorceOrDeathCertificate, KindFamilyStatusCertificate,
			},
		},
		{
			name:  "no document",
			legal: NoDocument,
			want: []DocumentKind{
				KindApplicationForm, KindVolunteerProof, KindConsent, KindIDCopy,
				KindGovernmentIncome, KindFamilyStatusCertificate,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Answers{FamilyStatus: Guardian, GuardianIncome: NoIncome, ParentLegalStatus: tt.legal}
			docs := Documents(a)
			assert.Equal(t, tt.want, kinds(docs))
			assert.Equal(t, []Holder{HolderGuardian, HolderApplicant}, docs[2].Holders)
			assert.True(t, strings.Contains(docs[4].Description, HolderGuardian.Title()))
		})
	}
}

func TestDocuments_Incomplete(t *testing.T) {
	assert.Nil(t, BuildRequiredDocuments(Answers{}))
	assert.Nil(t, Documents(Answers{FatherIncome: HasIncome}))

	assert.Equal(t,
		[]DocumentKind{KindApplicationForm, KindVolunteerProof, KindConsent, KindIDCopy},
		kinds(Documents(Answers{FamilyStatus: ParentsTogether})),
	)
	assert.Equal(t,
		[]DocumentKind{KindApplicationForm, KindVolunteerProof},
		kinds(Documents(Answers{FamilyStatus: SingleParent})),
	)
	assert.Equal(t,
		[]DocumentKind{KindApplicationForm, KindVolunteerProof, KindConsent, KindIDCopy, KindFamilyStatusCertificate},
		kinds(Documents(Answers{FamilyStatus: Guardian})),
	)
}

func TestBuildRequiredDocuments_Deterministic(t *testing.T) {
	answers := []Answers{
		{FamilyStatus: ParentsTogether, FatherIncome: NoIncome, MotherIncome: HasIncome},
		{FamilyStatus: SingleParent, LivingWith: LivingWithFather, LegalStatus: HasDocument, SingleParentIncome: HasIncome},
		{FamilyStatus: Guardian, GuardianIncome: HasIncome, ParentLegalStatus: HasDocument},
	}
	for _, a := range answers {
		first := BuildRequiredDocuments(a)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, BuildRequiredDocuments(a))
		}
	}
}
