// Package storage defines the persistence interface for ingestion bookkeeping.
package storage

import (
	"context"

	"github.com/finsight/newsrag/internal/models"
)

// Storage records ingestion runs and serves namespace statistics.
type Storage interface {
	RecordRun(ctx context.Context, run *models.IngestionRun) error
	ListRuns(ctx context.Context, namespace string, limit int) ([]*models.IngestionRun, error)
	NamespaceStats(ctx context.Context) ([]*models.NamespaceStat, error)
	CountRuns(ctx context.Context) (int64, error)
	Close() error
}
