package ocr

import (
	"os"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gratefultolord/aid_docs_bot/internal/survey"
)

// Rules maps a document kind to the keywords expected on it. A document
// passes when at least one keyword is found in its recognised text.
type Rules map[survey.DocumentKind][]string

// DefaultRules covers the documents whose titles are printed on the page.
// The application form and volunteer proof vary too much to check.
func DefaultRules() Rules {
	return Rules{
		survey.KindConsent:                   {"согласие", "персональных данных"},
		survey.KindIDCopy:                    {"паспорт", "удостоверение", "свидетельство о рождении"},
		survey.KindEmployedIncome:            {"справка о доходах", "2-ндфл", "заработная плата"},
		survey.KindGovernmentIncome:          {"справка", "пособие", "центр занятости", "социальной защиты"},
		survey.KindDivorceOrDeathCertificate: {"свидетельство о расторжении брака", "свидетельство о смерти"},
		survey.KindFamilyStatusCertificate:   {"состав семьи", "справка о составе"},
	}
}

type rulesFile struct {
	Documents map[string][]string `yaml:"documents"`
}

// LoadRules reads keyword overrides from a YAML file of the form
//
//	documents:
//	  consent: ["согласие"]
//
// Kinds listed in the file replace the defaults; an empty list disables the
// check for that kind.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "ocr.LoadRules")
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "ocr.LoadRules: parse %s", path)
	}

	for kind, words := range f.Documents {
		if len(words) == 0 {
			delete(rules, survey.DocumentKind(kind))
			continue
		}
		rules[survey.DocumentKind(kind)] = words
	}

	return rules, nil
}

// Match returns the keywords found in text. Case, punctuation and line
// breaks are ignored.
func Match(text string, keywords []string) []string {
	haystack := normalize(text)

	var found []string
	for _, kw := range keywords {
		if n := normalize(kw); n != "" && strings.Contains(haystack, n) {
			found = append(found, kw)
		}
	}
	return found
}

func normalize(s string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
			space = false
		case !space:
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}
