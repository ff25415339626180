package leadstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/models"
	"github.com/lib/pq"
)

const (
	cacheKeyPrefix = "leads:list:"
	cacheTTL       = 5 * time.Minute
)

// PostgresStore is the system-of-record lead store. List results are
// cached in Redis and invalidated on every write.
type PostgresStore struct {
	db    *sql.DB
	cache domain.CacheRepository
}

// NewPostgresStore creates a lead store. cache may be nil to disable
// list caching.
func NewPostgresStore(db *sql.DB, cache domain.CacheRepository) *PostgresStore {
	return &PostgresStore{db: db, cache: cache}
}

const leadColumns = `
	id, first_name, last_name, facebook_name, facebook_profile_url, email, phone,
	town, group_name, keywords, notes, status, contact_status, date_added,
	last_contacted, lead_score, profile_data, source, url, created_at, updated_at
`

// List returns leads matching the filter, newest first.
func (s *PostgresStore) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	cacheKey := listCacheKey(filter)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var leads []models.Lead
			if err := json.Unmarshal([]byte(cached), &leads); err == nil {
				return leads, nil
			}
		}
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.ContactStatus != "" {
		query += " AND contact_status = " + arg(filter.ContactStatus)
	}
	if filter.Status != "" {
		query += " AND status = " + arg(filter.Status)
	}
	if filter.Source != "" {
		query += " AND source = " + arg(filter.Source)
	}
	if filter.Town != "" {
		query += " AND town = " + arg(filter.Town)
	}
	if filter.MinScore > 0 {
		query += " AND lead_score >= " + arg(filter.MinScore)
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (first_name ILIKE %s OR last_name ILIKE %s OR group_name ILIKE %s OR notes ILIKE %s)", p, p, p, p)
	}
	query += " ORDER BY date_added DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(leads); err == nil {
			s.cache.Set(ctx, cacheKey, string(encoded), cacheTTL)
		}
	}

	return leads, nil
}

// Get returns one lead by id.
func (s *PostgresStore) Get(ctx context.Context, id int) (*models.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// Add inserts a new lead. A lead with the same facebook_name and source is
// considered a duplicate and returns a conflict error; the uniqueness
// constraint lives in the schema, so the policy is owned here, not by
// callers.
func (s *PostgresStore) Add(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	if lead.Source == "" {
		lead.Source = models.SourceFacebook
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if lead.ContactStatus == "" {
		lead.ContactStatus = models.ContactStatusNotContacted
	}

	profile, err := json.Marshal(lead.ProfileData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile data: %w", err)
	}

	query := `
		INSERT INTO leads (
			first_name, last_name, facebook_name, facebook_profile_url, email, phone,
			town, group_name, keywords, notes, status, contact_status, date_added,
			lead_score, profile_data, source, url, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), $13, $14, $15, $16, NOW(), NOW())
		RETURNING id, date_added, created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, query,
		lead.FirstName, lead.LastName, lead.FacebookName, nullString(lead.FacebookProfileURL),
		nullString(lead.Email), nullString(lead.Phone), lead.Town, lead.GroupName,
		pq.Array(lead.Keywords), nullString(lead.Notes), string(lead.Status),
		string(lead.ContactStatus), lead.LeadScore, profile, string(lead.Source),
		nullString(lead.URL),
	).Scan(&lead.ID, &lead.DateAdded, &lead.CreatedAt, &lead.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, domain.NewConflictError("lead already exists")
		}
		return nil, fmt.Errorf("failed to add lead: %w", err)
	}

	s.invalidate(ctx)
	return lead, nil
}

// Update applies a partial update and returns the updated lead.
func (s *PostgresStore) Update(ctx context.Context, id int, patch models.LeadPatch) (*models.Lead, error) {
	query := "UPDATE leads SET updated_at = NOW()"
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if patch.FirstName != nil {
		query += ", first_name = " + arg(*patch.FirstName)
	}
	if patch.LastName != nil {
		query += ", last_name = " + arg(*patch.LastName)
	}
	if patch.Email != nil {
		query += ", email = " + arg(*patch.Email)
	}
	if patch.Phone != nil {
		query += ", phone = " + arg(*patch.Phone)
	}
	if patch.Town != nil {
		query += ", town = " + arg(*patch.Town)
	}
	if patch.GroupName != nil {
		query += ", group_name = " + arg(*patch.GroupName)
	}
	if patch.Keywords != nil {
		query += ", keywords = " + arg(pq.Array(patch.Keywords))
	}
	if patch.Notes != nil {
		query += ", notes = " + arg(*patch.Notes)
	}
	if patch.Status != nil {
		query += ", status = " + arg(string(*patch.Status))
	}
	if patch.ContactStatus != nil {
		query += ", contact_status = " + arg(string(*patch.ContactStatus))
	}
	if patch.LastContacted != nil {
		query += ", last_contacted = " + arg(*patch.LastContacted)
	}
	if patch.LeadScore != nil {
		query += ", lead_score = " + arg(*patch.LeadScore)
	}

	query += " WHERE id = " + arg(id) + " RETURNING " + leadColumns

	row := s.db.QueryRowContext(ctx, query, args...)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	s.invalidate(ctx)
	return lead, nil
}

// Delete removes a lead.
func (s *PostgresStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError("lead")
	}
	s.invalidate(ctx)
	return nil
}

func (s *PostgresStore) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.DeletePattern(ctx, cacheKeyPrefix+"*")
	}
}

func listCacheKey(filter models.LeadFilter) string {
	encoded, _ := json.Marshal(filter)
	sum := sha256.Sum256(encoded)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var l models.Lead
	var profileURL, email, phone, notes, url sql.NullString
	var profile []byte

	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.FacebookName, &profileURL, &email, &phone,
		&l.Town, &l.GroupName, pq.Array(&l.Keywords), &notes, &l.Status, &l.ContactStatus,
		&l.DateAdded, &l.LastContacted, &l.LeadScore, &profile, &l.Source, &url,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.FacebookProfileURL = profileURL.String
	l.Email = email.String
	l.Phone = phone.String
	l.Notes = notes.String
	l.URL = url.String
	if len(profile) > 0 {
		json.Unmarshal(profile, &l.ProfileData)
	}

	return &l, nil
}

func scanLeads(rows *sql.Rows) ([]models.Lead, error) {
	var out []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
