package payroll

import (
	"context"

	"gorm.io/gorm"
)

// Persister inserts first-time pay summaries on its own connection, outside
// any transaction the recomputation holds. A unique violation then aborts
// only the insert, and the caller falls back to the locked-update path
// against the row the concurrent winner committed.
type Persister interface {
	TrySave(ctx context.Context, s *PaySummary) error
}

type persister struct {
	db *gorm.DB
}

func NewPersister(db *gorm.DB) Persister {
	return &persister{db: db}
}

func (p *persister) TrySave(ctx context.Context, s *PaySummary) error {
	return p.db.WithContext(ctx).Create(s).Error
}
