package services

import (
	"context"
	"time"

	"github.com/terraincognita07/innercalm/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit         = 30
	MaxHistoryLimit             = 365
	DefaultHistoryRemoteTimeout = 2 * time.Second
)

type HistoryRecordReader interface {
	ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.MoodRecord, error)
}

type HistoryService struct {
	records       HistoryRecordReader
	remoteTimeout time.Duration
	logger        *zap.Logger
}

type ReconciledHistory struct {
	Records         []models.MoodRecord
	RemoteAvailable bool
}

func NewHistoryService(records HistoryRecordReader, remoteTimeout time.Duration, logger *zap.Logger) *HistoryService {
	if remoteTimeout <= 0 {
		remoteTimeout = DefaultHistoryRemoteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		records:       records,
		remoteTimeout: remoteTimeout,
		logger:        logger,
	}
}

func NormalizeHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

func (service *HistoryService) Recent(ctx context.Context, ownerID uint, limit int) ([]models.MoodRecord, error) {
	records, err := service.records.ListByOwner(ctx, ownerID, NormalizeHistoryLimit(limit))
	if err != nil {
		return nil, &StoreError{Op: "list mood history", Err: err}
	}
	return records, nil
}

// Reconciled merges the caller's cached snapshot with the stored history.
// A failing or slow store degrades to the snapshot alone instead of an error.
// Snapshot entries that belong to another owner are ignored. The merged
// result keeps at most limit records, newest first.
func (service *HistoryService) Reconciled(ctx context.Context, ownerID uint, local []models.MoodRecord, limit int) ReconciledHistory {
	limit = NormalizeHistoryLimit(limit)
	owned := make([]models.MoodRecord, 0, len(local))
	for _, record := range local {
		if record.OwnerID != 0 && record.OwnerID != ownerID {
			continue
		}
		record.OwnerID = ownerID
		owned = append(owned, record)
	}

	remoteCtx, cancel := context.WithTimeout(ctx, service.remoteTimeout)
	defer cancel()

	remote, err := service.records.ListByOwner(remoteCtx, ownerID, limit)
	if err != nil {
		service.logger.Warn("remote mood history unavailable, using local snapshot",
			zap.Uint("owner_id", ownerID),
			zap.Int("local_count", len(owned)),
			zap.Error(err),
		)
		return ReconciledHistory{Records: truncateHistory(Reconcile(owned, nil, false), limit)}
	}

	return ReconciledHistory{
		Records:         truncateHistory(Reconcile(owned, remote, true), limit),
		RemoteAvailable: true,
	}
}

func truncateHistory(records []models.MoodRecord, limit int) []models.MoodRecord {
	if len(records) > limit {
		return records[:limit]
	}
	return records
}
