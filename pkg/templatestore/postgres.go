package templatestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/models"
)

// PostgresStore serves contact templates from Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a template store on an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// List returns active templates, optionally restricted to one channel.
func (s *PostgresStore) List(ctx context.Context, channel models.Channel) ([]models.ContactTemplate, error) {
	query := `
		SELECT id, name, type, subject, content, is_active, created_at
		FROM contact_templates
		WHERE is_active = TRUE
	`
	args := []any{}
	if channel != "" {
		query += " AND type = $1"
		args = append(args, string(channel))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var out []models.ContactTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Get returns one template by id.
func (s *PostgresStore) Get(ctx context.Context, id int) (*models.ContactTemplate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, subject, content, is_active, created_at
		FROM contact_templates
		WHERE id = $1
	`, id)

	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("template")
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// Seed inserts the given templates when the table is empty. Idempotent:
// a populated table is left untouched.
func (s *PostgresStore) Seed(ctx context.Context, templates []models.ContactTemplate) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_templates`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count templates: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, t := range templates {
		subject := sql.NullString{String: t.Subject, Valid: t.Subject != ""}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO contact_templates (name, type, subject, content, is_active)
			VALUES ($1, $2, $3, $4, $5)
		`, t.Name, string(t.Type), subject, t.Content, t.IsActive)
		if err != nil {
			return fmt.Errorf("failed to seed template %q: %w", t.Name, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.ContactTemplate, error) {
	var t models.ContactTemplate
	var subject sql.NullString
	if err := row.Scan(&t.ID, &t.Name, &t.Type, &subject, &t.Content, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Subject = subject.String
	return &t, nil
}
