// Package records provides PostgreSQL-backed storage for ingested CSV rows.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/aitooling/internal/common"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/models"
	"github.com/dmitrijs2005/aitooling/internal/dbx"
)

// insertChunkSize bounds the rows per INSERT; three parameters per row
// keeps each statement well under the 65535 bind-parameter limit.
const insertChunkSize = 1000

// PostgresRepository implements record storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AddMany inserts records with multi-row INSERT statements. Callers that
// need all-or-nothing semantics pass a transaction.
func (r *PostgresRepository) AddMany(ctx context.Context, records []*models.DataRecord) error {
	for start := 0; start < len(records); start += insertChunkSize {
		end := min(start+insertChunkSize, len(records))
		if err := r.insertChunk(ctx, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) insertChunk(ctx context.Context, chunk []*models.DataRecord) error {
	var sb strings.Builder
	sb.WriteString("INSERT INTO data_records (name, value, created_at) VALUES ")

	args := make([]any, 0, len(chunk)*3)
	for i, rec := range chunk {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 3
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, rec.Name, rec.Value, rec.CreatedAt)
	}
	sb.WriteString(" RETURNING id")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(chunk) {
			return fmt.Errorf("unexpected rows returned: more than %d", len(chunk))
		}
		if err := rows.Scan(&chunk[i].ID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if i != len(chunk) {
		return fmt.Errorf("unexpected rows returned: %d, want %d", i, len(chunk))
	}
	return nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]*models.DataRecord, error) {
	query := `SELECT id, name, value, created_at FROM data_records ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.DataRecord, 0)
	for rows.Next() {
		var item models.DataRecord
		if err := rows.Scan(&item.ID, &item.Name, &item.Value, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.DataRecord, error) {
	query := `SELECT id, name, value, created_at FROM data_records WHERE id = $1`

	item := &models.DataRecord{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Name, &item.Value, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}
