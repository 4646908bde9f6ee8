package db

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type Admin struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	CreatedAt time.Time `db:"created_at"`
}

// AdminMessage is a message an applicant left for the officers.
type AdminMessage struct {
	ID             int64     `db:"id"`
	TelegramUserID int64     `db:"telegram_user_id"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Message        string    `db:"message"`
	CreatedAt      time.Time `db:"created_at"`
}

type AdminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{
		db: db,
	}
}

func (r *AdminRepository) GetAll() ([]Admin, error) {
	var admins []Admin

	err := r.db.Select(&admins, `
	    SELECT * FROM admins
	`)
	if err != nil {
		return nil, errors.Wrap(err, "AdminRepository.GetAll")
	}

	return admins, nil
}

func (r *AdminRepository) IsAdmin(chatID int64) (bool, error) {
	var exists bool

	err := r.db.Get(&exists, `
	    SELECT EXISTS (SELECT 1 FROM admins WHERE chat_id = $1)
	`, chatID)
	if err != nil {
		return false, errors.Wrap(err, "AdminRepository.IsAdmin")
	}

	return exists, nil
}

func (r *AdminRepository) Create(chatID int64) error {
	_, err := r.db.Exec(`
	    INSERT INTO admins (chat_id) VALUES ($1)
		ON CONFLICT (chat_id) DO NOTHING
	`, chatID)
	if err != nil {
		return errors.Wrap(err, "AdminRepository.Create")
	}

	return nil
}

func (r *AdminRepository) CreateMessage(telegramUserID int64, firstName, lastName, message string) error {
	query := `INSERT INTO admin_messages (telegram_user_id, first_name, last_name, message) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query, telegramUserID, firstName, lastName, message)
	if err != nil {
		return errors.Wrap(err, "AdminRepository.CreateMessage")
	}

	return nil
}

func (r *AdminRepository) GetLatestMessages(limit int) ([]AdminMessage, error) {
	var messages []AdminMessage

	err := r.db.Select(&messages, `
	    SELECT * FROM admin_messages
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "AdminRepository.GetLatestMessages")
	}

	return messages, nil
}
