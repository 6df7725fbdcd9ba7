package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GonzanDev/sellos-pro/internal/checkout"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// Repository keeps submission records in Postgres so a repeated submission
// survives a process restart without creating a second preference.
type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) GetByKey(ctx context.Context, key string) (*checkout.SubmissionRecord, error) {
	query := `
		SELECT submission_key, session_id, status, preference_id, redirect_url, amount, created_at, updated_at
		FROM checkout_submissions
		WHERE submission_key = $1
	`

	record := &checkout.SubmissionRecord{}
	var status string
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&record.Key,
		&record.SessionID,
		&status,
		&record.PreferenceID,
		&record.RedirectURL,
		&record.Amount,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, checkout.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}

	record.Status = checkout.SubmissionStatus(status)
	return record, nil
}

func (r *Repository) Create(ctx context.Context, record *checkout.SubmissionRecord) error {
	query := `
		INSERT INTO checkout_submissions (submission_key, session_id, status, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (submission_key) DO UPDATE
		SET status = EXCLUDED.status, updated_at = now()
	`

	if _, err := r.db.ExecContext(ctx, query, record.Key, record.SessionID, record.Status.String(), record.Amount); err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

func (r *Repository) SetResult(ctx context.Context, key string, status checkout.SubmissionStatus, preferenceID, redirectURL string) error {
	query := `
		UPDATE checkout_submissions
		SET status = $2, preference_id = $3, redirect_url = $4, updated_at = now()
		WHERE submission_key = $1
	`

	result, err := r.db.ExecContext(ctx, query, key, status.String(), preferenceID, redirectURL)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return checkout.ErrSubmissionNotFound
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
