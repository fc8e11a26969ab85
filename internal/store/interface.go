package store

import (
	"context"

	"scanhist/internal/models"
)

// ScanStore abstracts scan history backends.
type ScanStore interface {
	InsertScan(ctx context.Context, event models.DecodeEvent) (int64, error)
	RecordScan(ctx context.Context, event models.DecodeEvent) (int64, bool, error)
	RestoreScan(ctx context.Context, scan models.Scan) (int64, bool, error)
	Scans(ctx context.Context) (*ScanCursor, error)
	ListScans(ctx context.Context) ([]models.ScanSummary, error)
	AllScans(ctx context.Context) ([]models.Scan, error)
	GetScan(ctx context.Context, id int64) (*models.Scan, error)
	HasBinaryData(ctx context.Context) (bool, error)
	RemoveScan(ctx context.Context, id int64) error
	RemoveScans(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

var _ ScanStore = (*Store)(nil)
