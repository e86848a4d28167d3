package record

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/synergitech/postal-relay/internal/database"
)

// DefaultTable is the delivery-log table name used when none is configured.
const DefaultTable = "emails"

// tablePattern restricts configurable table names to plain identifiers,
// since the name is interpolated into SQL.
var tablePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresStore persists delivery rows in a PostgreSQL table.
type PostgresStore struct {
	db    *database.Postgres
	table string
}

// NewPostgresStore creates a PostgresStore writing to the given table. An
// empty table name selects DefaultTable; names that are not plain SQL
// identifiers are rejected.
func NewPostgresStore(db *database.Postgres, table string) (*PostgresStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid delivery log table name %q", table)
	}

	return &PostgresStore{db: db, table: table}, nil
}

// InsertDelivery writes a single delivery row. Optional fields are stored as
// NULL when empty.
func (s *PostgresStore) InsertDelivery(ctx context.Context, d *Delivery) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (to_name, to_email, from_name, from_email, subject,
		    body, postal_email_id, postal_id, postal_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.table)

	_, err := s.db.ExecContext(ctx, query,
		nullString(d.ToName),
		d.ToEmail,
		nullString(d.FromName),
		d.FromEmail,
		nullString(d.Subject),
		nullString(d.Body),
		d.PostalEmailID,
		d.PostalID,
		d.PostalToken,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert delivery: %w", err)
	}
	return nil
}

// AssignNotifiable back-fills the polymorphic association on every row of the
// send identified by postalEmailID.
func (s *PostgresStore) AssignNotifiable(ctx context.Context, postalEmailID, emailableType, emailableID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET emailable_type = $1, emailable_id = $2
		WHERE postal_email_id = $3
	`, s.table)

	_, err := s.db.ExecContext(ctx, query, emailableType, emailableID, postalEmailID)
	if err != nil {
		return fmt.Errorf("failed to update notifiable association: %w", err)
	}
	return nil
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
