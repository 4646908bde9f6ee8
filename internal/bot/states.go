package bot

import (
	"github.com/gratefultolord/aid_docs_bot/internal/survey"
)

const (
	StateStart       = "start"
	StateFirstName   = "first_name"
	StateLastName    = "last_name"
	StatePhoneNumber = "phone_number"
	StateSurvey      = "survey"
	StateDocuments   = "documents"
	StateConfirm     = "confirm"
	StateRevision    = "revision"
	StateWriteAdmin  = "write_admin"
)

type UserState struct {
	Step        string
	FirstName   string
	LastName    string
	PhoneNumber string

	Survey    *survey.Questionnaire
	Documents []survey.Document
	Uploads   []Upload
	Gate      *survey.FinishGate

	// ApplicationID is set while re-uploading documents of an application
	// sent back for revision.
	ApplicationID int64
}

// Upload is a saved file for Documents[i], where i is its index in Uploads.
type Upload struct {
	Path        string
	OCRVerified *bool
}

func (s *UserState) uploadedPaths() []string {
	paths := make([]string, 0, len(s.Uploads))
	for _, u := range s.Uploads {
		paths = append(paths, u.Path)
	}
	return paths
}
