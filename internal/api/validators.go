package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/gratefultolord/aid_docs_bot/internal/db"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	reasonRequiredTag = "reason_required"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report json names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterStructValidation(decisionStructValidation, decisionRequest{})

	// RegisterTranslation wants a registration func; the message comes from
	// translateCustom alone.
	registerFn := func(ut.Translator) error { return nil }
	_ = validate.RegisterTranslation(reasonRequiredTag, translator, registerFn, translateCustom)
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case reasonRequiredTag:
		return "a reason is required to reject an application or send it back for revision"
	default:
		return ""
	}
}

// decisionStructValidation requires a reason for every decision except approval.
func decisionStructValidation(sl validator.StructLevel) {
	if d, ok := sl.Current().Interface().(decisionRequest); ok {
		if d.Decision != db.StatusApproved && strings.TrimSpace(d.Reason) == "" {
			sl.ReportError(d.Reason, "reason", "Reason", reasonRequiredTag, "")
		}
	}
}

// requestValidator plugs validate into echo.Context.Validate.
type requestValidator struct{}

func (requestValidator) Validate(i interface{}) error {
	return validate.Struct(i)
}
