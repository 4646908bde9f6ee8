package db

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/gratefultolord/aid_docs_bot/internal/config"
)

// ErrNotFound is returned by repositories when the requested row does not exist.
var ErrNotFound = errors.New("not found")

type DB struct {
	Conn *sqlx.DB
}

func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
}

func New(cfg *config.Config) (*DB, error) {
	dbConn, err := sqlx.Connect("postgres", DSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "db.New: cannot connect to database")
	}

	dbConn.SetMaxOpenConns(20)
	dbConn.SetMaxIdleConns(5)
	dbConn.SetConnMaxLifetime(60 * time.Minute)

	return &DB{Conn: dbConn}, nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}

// RunMigrations executes the given SQL scripts in order. Scripts are
// expected to be idempotent.
func RunMigrations(conn *sqlx.DB, paths ...string) error {
	for _, path := range paths {
		script, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "db.RunMigrations: read %s", path)
		}

		if _, err := conn.Exec(string(script)); err != nil {
			return errors.Wrapf(err, "db.RunMigrations: exec %s", path)
		}
	}

	return nil
}
