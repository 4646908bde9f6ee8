package db

import (
	"database/sql"
	"database/sql/driver"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/gratefultolord/aid_docs_bot/internal/survey"
)

const (
	StatusPending       = "pending"
	StatusApproved      = "approved"
	StatusRejected      = "rejected"
	StatusNeedsRevision = "needs_revision"
)

// IsValidStatus reports whether s is one of the application statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusNeedsRevision:
		return true
	}
	return false
}

// Answers stores the questionnaire snapshot in a JSONB column.
type Answers struct {
	survey.Answers
}

func (a Answers) Value() (driver.Value, error) {
	data, err := json.Marshal(a.Answers)
	if err != nil {
		return nil, errors.Wrap(err, "Answers.Value")
	}
	return data, nil
}

func (a *Answers) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		a.Answers = survey.Answers{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("Answers.Scan: unsupported type %T", src)
	}

	var parsed survey.Answers
	if err := json.Unmarshal(data, &parsed); err != nil {
		return errors.Wrap(err, "Answers.Scan")
	}
	a.Answers = parsed
	return nil
}

type Application struct {
	ID              int64     `db:"id" json:"id"`
	TelegramUserID  int64     `db:"telegram_user_id" json:"telegram_user_id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	PhoneNumber     string    `db:"phone_number" json:"phone_number"`
	Answers         Answers   `db:"answers" json:"answers"`
	Status          string    `db:"status" json:"status"`
	RejectionReason *string   `db:"rejection_reason" json:"rejection_reason"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	Documents []ApplicationDocument `db:"-" json:"documents,omitempty"`
}

type ApplicationDocument struct {
	ID            int64     `db:"id" json:"id"`
	ApplicationID int64     `db:"application_id" json:"application_id"`
	Position      int       `db:"position" json:"position"`
	Kind          string    `db:"kind" json:"kind"`
	Description   string    `db:"description" json:"description"`
	FilePath      string    `db:"file_path" json:"-"`
	OCRVerified   *bool     `db:"ocr_verified" json:"ocr_verified"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
	}
}

// Create stores a pending application together with its documents and
// returns the new application id.
func (r *ApplicationRepository) Create(app *Application, docs []ApplicationDocument) (int64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, errors.Wrap(err, "ApplicationRepository.Create: begin")
	}
	defer tx.Rollback()

	var id int64
	err = tx.Get(&id, `
	    INSERT INTO applications
		(telegram_user_id, first_name, last_name, phone_number, answers, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING id
	`,
		app.TelegramUserID,
		app.FirstName,
		app.LastName,
		app.PhoneNumber,
		app.Answers,
	)
	if err != nil {
		return 0, errors.Wrap(err, "ApplicationRepository.Create")
	}

	if err := insertDocuments(tx, id, docs); err != nil {
		return 0, errors.Wrap(err, "ApplicationRepository.Create")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "ApplicationRepository.Create: commit")
	}

	return id, nil
}

func (r *ApplicationRepository) GetByID(id int64) (*Application, error) {
	var app Application

	err := r.db.Get(&app, `
	    SELECT * FROM applications
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, errors.Wrap(notFound(err), "ApplicationRepository.GetByID")
	}

	return &app, nil
}

func (r *ApplicationRepository) GetLatestByTelegramUserID(telegramUserID int64) (*Application, error) {
	var app Application

	err := r.db.Get(&app, `
	    SELECT * FROM applications
		WHERE telegram_user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, telegramUserID)
	if err != nil {
		return nil, errors.Wrap(notFound(err), "ApplicationRepository.GetLatestByTelegramUserID")
	}

	return &app, nil
}

// GetNextPending returns the oldest pending application, or nil when the
// queue is empty.
func (r *ApplicationRepository) GetNextPending() (*Application, error) {
	var app Application

	err := r.db.Get(&app, `
	    SELECT * FROM applications
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT 1
	`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "ApplicationRepository.GetNextPending")
	}

	return &app, nil
}

// ListByStatus returns applications newest first. An empty status lists all.
func (r *ApplicationRepository) ListByStatus(status string, limit int) ([]Application, error) {
	apps := []Application{}

	err := r.db.Select(&apps, `
	    SELECT * FROM applications
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, errors.Wrap(err, "ApplicationRepository.ListByStatus")
	}

	return apps, nil
}

func (r *ApplicationRepository) UpdateStatus(id int64, status string, reason *string) error {
	res, err := r.db.Exec(`
	    UPDATE applications
		SET status = $1, rejection_reason = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`, status, reason, id)
	if err != nil {
		return errors.Wrap(err, "ApplicationRepository.UpdateStatus")
	}

	return errors.Wrap(mustAffect(res), "ApplicationRepository.UpdateStatus")
}

// ReplaceDocuments swaps the documents of an application sent back for
// revision and puts it back into the review queue.
func (r *ApplicationRepository) ReplaceDocuments(id, telegramUserID int64, docs []ApplicationDocument) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "ApplicationRepository.ReplaceDocuments: begin")
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
	    UPDATE applications
		SET status = 'pending', rejection_reason = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND telegram_user_id = $2
	`, id, telegramUserID)
	if err != nil {
		return errors.Wrap(err, "ApplicationRepository.ReplaceDocuments")
	}
	if err := mustAffect(res); err != nil {
		return errors.Wrap(err, "ApplicationRepository.ReplaceDocuments")
	}

	if _, err := tx.Exec(`DELETE FROM application_documents WHERE application_id = $1`, id); err != nil {
		return errors.Wrap(err, "ApplicationRepository.ReplaceDocuments: delete")
	}

	if err := insertDocuments(tx, id, docs); err != nil {
		return errors.Wrap(err, "ApplicationRepository.ReplaceDocuments")
	}

	return errors.Wrap(tx.Commit(), "ApplicationRepository.ReplaceDocuments: commit")
}

func (r *ApplicationRepository) ListDocuments(applicationID int64) ([]ApplicationDocument, error) {
	docs := []ApplicationDocument{}

	err := r.db.Select(&docs, `
	    SELECT * FROM application_documents
		WHERE application_id = $1
		ORDER BY position ASC
	`, applicationID)
	if err != nil {
		return nil, errors.Wrap(err, "ApplicationRepository.ListDocuments")
	}

	return docs, nil
}

func (r *ApplicationRepository) GetDocument(applicationID, documentID int64) (*ApplicationDocument, error) {
	var doc ApplicationDocument

	err := r.db.Get(&doc, `
	    SELECT * FROM application_documents
		WHERE application_id = $1 AND id = $2
	`, applicationID, documentID)
	if err != nil {
		return nil, errors.Wrap(notFound(err), "ApplicationRepository.GetDocument")
	}

	return &doc, nil
}

func insertDocuments(tx *sqlx.Tx, applicationID int64, docs []ApplicationDocument) error {
	for i, d := range docs {
		_, err := tx.Exec(`
		    INSERT INTO application_documents
			(application_id, position, kind, description, file_path, ocr_verified)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, applicationID, i, d.Kind, d.Description, d.FilePath, d.OCRVerified)
		if err != nil {
			return errors.Wrapf(err, "insert document %d", i)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
