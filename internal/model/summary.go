package model

import "time"

// ImportSummary captures metrics from a single catalog import run.
type ImportSummary struct {
	FilePath         string
	FileSHA256       string
	CatalogVersionID int64
	ImportBatchID    string
	RowsRead         int64
	RowsPriced       int64
	RowsSkipped      int64
	RowsByCategory   map[string]int64
	Activated        bool
	DurationStage    time.Duration
	DurationActivate time.Duration
	DurationTotal    time.Duration
}
