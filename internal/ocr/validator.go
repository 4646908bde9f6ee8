package ocr

import (
	"context"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"

	"github.com/gratefultolord/aid_docs_bot/internal/survey"
)

// Recognizer extracts plain text from an image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// TesseractRecognizer runs Tesseract through gosseract. A new client is
// created per call since gosseract clients are not safe for concurrent use.
type TesseractRecognizer struct {
	languages []string
	recognize func(image []byte) (string, error)
}

func NewTesseractRecognizer(languages ...string) *TesseractRecognizer {
	r := &TesseractRecognizer{languages: languages}
	r.recognize = r.tesseract
	return r
}

type recognition struct {
	text string
	err  error
}

// Recognize returns when the text is ready or ctx is done. Tesseract itself
// cannot be interrupted: after a timeout the recognition finishes in the
// background and its result is dropped.
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan recognition, 1)
	go func() {
		text, err := r.recognize(image)
		done <- recognition{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "TesseractRecognizer: recognize text")
	case res := <-done:
		return res.text, res.err
	}
}

func (r *TesseractRecognizer) tesseract(image []byte) (string, error) {
	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", errors.Wrap(err, "TesseractRecognizer: set image")
	}
	if len(r.languages) > 0 {
		if err := c.SetLanguage(r.languages...); err != nil {
			return "", errors.Wrap(err, "TesseractRecognizer: set languages")
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", errors.Wrap(err, "TesseractRecognizer: recognize text")
	}
	return text, nil
}

type Result struct {
	// Checked is false when no rule exists for the document kind.
	Checked bool
	Matched []string
}

func (r Result) Passed() bool {
	return !r.Checked || len(r.Matched) > 0
}

type Validator struct {
	recognizer Recognizer
	rules      Rules
}

func NewValidator(recognizer Recognizer, rules Rules) *Validator {
	return &Validator{recognizer: recognizer, rules: rules}
}

// Check recognises image and looks for the keywords of kind.
func (v *Validator) Check(ctx context.Context, kind survey.DocumentKind, image []byte) (Result, error) {
	keywords, ok := v.rules[kind]
	if !ok || len(keywords) == 0 {
		return Result{}, nil
	}

	text, err := v.recognizer.Recognize(ctx, image)
	if err != nil {
		return Result{}, errors.Wrapf(err, "Validator.Check %s", kind)
	}

	return Result{Checked: true, Matched: Match(text, keywords)}, nil
}
