package models

import "time"

// IngestionRun records one ingestion pass over a namespace: how many articles
// were fetched, how many survived validation, and the resulting index size.
type IngestionRun struct {
	ID        string    `json:"id" db:"id"`
	Namespace string    `json:"namespace" db:"namespace"`
	Fetched   int       `json:"fetched" db:"fetched"`
	Indexed   int       `json:"indexed" db:"indexed"`
	IndexSize int       `json:"index_size" db:"index_size"`
	Persisted bool      `json:"persisted" db:"persisted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NamespaceStat summarizes a namespace for status reporting.
type NamespaceStat struct {
	Namespace string    `json:"namespace"`
	Runs      int       `json:"runs"`
	Documents int       `json:"documents"`
	LastRunAt time.Time `json:"last_run_at"`
}
