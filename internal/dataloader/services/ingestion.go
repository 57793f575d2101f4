// Package services contains the dataloader business logic: turning an
// uploaded CSV stream into persisted DataRecords.
package services

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/dmitrijs2005/aitooling/internal/dataloader/csvparser"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/models"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/repositories/repomanager"
	"github.com/dmitrijs2005/aitooling/internal/dbx"
	"github.com/dmitrijs2005/aitooling/internal/logging"
)

type IngestionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewIngestionService(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *IngestionService {
	return &IngestionService{
		db:          db,
		repomanager: rm,
		logger:      logger.With("module", "ingestion"),
		now:         time.Now,
	}
}

// Ingest parses r and stores every row in one transaction, returning the
// number of records stored. The whole input is parsed before anything is
// written, so a format error persists nothing. Parser and repository
// errors are returned unchanged.
func (s *IngestionService) Ingest(ctx context.Context, r io.Reader) (int, error) {
	rows, err := csvparser.NewReader(r).ReadAll()
	if err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		s.logger.Info(ctx, "upload contained no records")
		return 0, nil
	}

	createdAt := s.now().UTC()
	batch := make([]*models.DataRecord, len(rows))
	for i, row := range rows {
		batch[i] = &models.DataRecord{Name: row.Name, Value: row.Value, CreatedAt: createdAt}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Records(tx).AddMany(ctx, batch)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "records ingested", "count", len(batch))
	return len(batch), nil
}

func (s *IngestionService) GetAll(ctx context.Context) ([]*models.DataRecord, error) {
	return s.repomanager.Records(s.db).GetAll(ctx)
}

// GetByID returns common.ErrorNotFound when no record has that id.
func (s *IngestionService) GetByID(ctx context.Context, id int64) (*models.DataRecord, error) {
	return s.repomanager.Records(s.db).GetByID(ctx, id)
}
