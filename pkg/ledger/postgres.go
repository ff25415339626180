package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leadpulse/leadpulse/pkg/models"
)

// PostgresStore persists the contact ledger in Postgres. Rows are only
// ever inserted through this type; response fields are updated by the
// separate inbound-response path.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a ledger store on an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append records one contact attempt.
func (s *PostgresStore) Append(ctx context.Context, attempt models.ContactAttempt) error {
	query := `
		INSERT INTO contact_attempts (id, lead_id, contact_type, message_content, sent_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.LeadID,
		string(attempt.ContactType),
		attempt.MessageContent,
		attempt.SentAt,
		string(attempt.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to append contact attempt: %w", err)
	}
	return nil
}

// ByLead returns the lead's attempts, most recent first. The attempt id is
// monotonic within a process, so it breaks sent_at ties by insertion order.
func (s *PostgresStore) ByLead(ctx context.Context, leadID int) ([]models.ContactAttempt, error) {
	query := `
		SELECT id, lead_id, contact_type, message_content, sent_at, status, response_content, response_received_at
		FROM contact_attempts
		WHERE lead_id = $1
		ORDER BY sent_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts by lead: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// Recent returns the n most recent attempts across all leads.
func (s *PostgresStore) Recent(ctx context.Context, n int) ([]models.ContactAttempt, error) {
	query := `
		SELECT id, lead_id, contact_type, message_content, sent_at, status, response_content, response_received_at
		FROM contact_attempts
		ORDER BY sent_at DESC, id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent attempts: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

func scanAttempts(rows *sql.Rows) ([]models.ContactAttempt, error) {
	var out []models.ContactAttempt
	for rows.Next() {
		var a models.ContactAttempt
		var response sql.NullString
		if err := rows.Scan(
			&a.ID,
			&a.LeadID,
			&a.ContactType,
			&a.MessageContent,
			&a.SentAt,
			&a.Status,
			&response,
			&a.ResponseReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact attempt: %w", err)
		}
		a.ResponseContent = response.String
		out = append(out, a)
	}
	return out, rows.Err()
}
