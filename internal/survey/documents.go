package survey

import (
	"fmt"
	"strings"
)

type DocumentKind string

const (
	KindApplicationForm           DocumentKind = "application_form"
	KindVolunteerProof            DocumentKind = "volunteer_proof"
	KindConsent                   DocumentKind = "consent"
	KindIDCopy                    DocumentKind = "id_copy"
	KindEmployedIncome            DocumentKind = "employed_income"
	KindGovernmentIncome          DocumentKind = "government_income"
	KindDivorceOrDeathCertificate DocumentKind = "divorce_or_death_certificate"
	KindFamilyStatusCertificate   DocumentKind = "family_status_certificate"
)

// Holder is the person a document belongs to.
type Holder string

const (
	HolderFather    Holder = "father"
	HolderMother    Holder = "mother"
	HolderGuardian  Holder = "guardian"
	HolderApplicant Holder = "applicant"
)

var holderTitles = map[Holder]string{
	HolderFather:    "отец",
	HolderMother:    "мать",
	HolderGuardian:  "опекун",
	HolderApplicant: "заявитель",
}

func (h Holder) Title() string {
	if t, ok := holderTitles[h]; ok {
		return t
	}
	return string(h)
}

type Document struct {
	Kind        DocumentKind `json:"kind"`
	Holders     []Holder     `json:"holders,omitempty"`
	Description string       `json:"description"`
}

// BuildRequiredDocuments lists the documents the applicant must supply, in
// display order. It never fails: unanswered questions only shorten the list.
func BuildRequiredDocuments(a Answers) []string {
	docs := Documents(a)
	if docs == nil {
		return nil
	}
	lines := make([]string, 0, len(docs))
	for _, d := range docs {
		lines = append(lines, d.Description)
	}
	return lines
}

// Documents is BuildRequiredDocuments with the kind and holders of every line.
func Documents(a Answers) []Document {
	if !a.FamilyStatus.IsSet() {
		return nil
	}

	docs := []Document{
		{Kind: KindApplicationForm, Description: "Заявление на получение стипендии (стандартная форма)"},
		{Kind: KindVolunteerProof, Description: "Подтверждение волонтёрской деятельности"},
	}

	switch a.FamilyStatus {
	case ParentsTogether:
		docs = append(docs,
			consent(HolderFather, HolderMother, HolderApplicant),
			idCopies(HolderFather, HolderMother, HolderApplicant),
		)
		docs = appendIncome(docs, HolderFather, a.FatherIncome)
		docs = appendIncome(docs, HolderMother, a.MotherIncome)

	case SingleParent:
		parent, ok := parentOf(a.LivingWith)
		if ok {
			docs = append(docs, consent(parent, HolderApplicant), idCopies(parent, HolderApplicant))
		}
		switch a.LegalStatus {
		case HasDocument:
			docs = append(docs, divorceOrDeathCertificate())
		case NoDocument:
			docs = append(docs, familyStatusCertificate())
		}
		if ok {
			docs = appendIncome(docs, parent, a.SingleParentIncome)
		}

	case Guardian:
		docs = append(docs,
			consent(HolderGuardian, HolderApplicant),
			idCopies(HolderGuardian, HolderApplicant),
		)
		docs = appendIncome(docs, HolderGuardian, a.GuardianIncome)
		if a.ParentLegalStatus == HasDocument {
			docs = append(docs, divorceOrDeathCertificate())
		}
		// Required for guardians whatever the legal status answer is.
		docs = append(docs, familyStatusCertificate())
	}

	return docs
}

func parentOf(l LivingWith) (Holder, bool) {
	switch l {
	case LivingWithFather:
		return HolderFather, true
	case LivingWithMother:
		return HolderMother, true
	}
	return "", false
}

func consent(holders ...Holder) Document {
	return Document{
		Kind:        KindConsent,
		Holders:     holders,
		Description: fmt.Sprintf("Согласие на сбор и раскрытие персональных данных (%s)", titles(holders)),
	}
}

func idCopies(holders ...Holder) Document {
	return Document{
		Kind:        KindIDCopy,
		Holders:     holders,
		Description: fmt.Sprintf("Копии удостоверений личности (%s)", titles(holders)),
	}
}

func appendIncome(docs []Document, h Holder, income Income) []Document {
	switch income {
	case HasIncome:
		return append(docs, Document{
			Kind:        KindEmployedIncome,
			Holders:     []Holder{h},
			Description: fmt.Sprintf("Справка о доходах с места работы (%s)", h.Title()),
		})
	case NoIncome:
		return append(docs, Document{
			Kind:        KindGovernmentIncome,
			Holders:     []Holder{h},
			Description: fmt.Sprintf("Справка о доходах, заверенная госорганом (%s, не работает)", h.Title()),
		})
	}
	return docs
}

func divorceOrDeathCertificate() Document {
	return Document{Kind: KindDivorceOrDeathCertificate, Description: "Копия свидетельства о разводе или о смерти"}
}

func familyStatusCertificate() Document {
	return Document{Kind: KindFamilyStatusCertificate, Description: "Справка о составе семьи"}
}

func titles(holders []Holder) string {
	out := make([]string, 0, len(holders))
	for _, h := range holders {
		out = append(out, h.Title())
	}
	return strings.Join(out, ", ")
}
