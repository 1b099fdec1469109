package db

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/innercalm/internal/models"
	"gorm.io/gorm"
)

type MoodRecordRepository struct {
	database *gorm.DB
}

func NewMoodRecordRepository(database *gorm.DB) *MoodRecordRepository {
	return &MoodRecordRepository{database: database}
}

// Insert writes a new record in its own transaction. Records are never
// updated afterwards.
func (repo *MoodRecordRepository) Insert(ctx context.Context, record *models.MoodRecord) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("insert mood record: %w", err)
		}
		return nil
	})
}

func (repo *MoodRecordRepository) FindLatestByOwner(ctx context.Context, ownerID uint) (models.MoodRecord, bool, error) {
	record := models.MoodRecord{}
	result := repo.database.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id ASC").
		Limit(1).
		Find(&record)
	if result.Error != nil {
		return models.MoodRecord{}, false, fmt.Errorf("find latest mood record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.MoodRecord{}, false, nil
	}
	return record, true, nil
}

func (repo *MoodRecordRepository) ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.MoodRecord, error) {
	query := repo.database.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	records := make([]models.MoodRecord, 0)
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list mood records: %w", err)
	}
	return records, nil
}

func (repo *MoodRecordRepository) ListSince(ctx context.Context, since time.Time) ([]models.MoodRecord, error) {
	records := make([]models.MoodRecord, 0)
	if err := repo.database.WithContext(ctx).
		Where("created_at >= ?", since.UTC()).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list mood records since %s: %w", since.Format(time.RFC3339), err)
	}
	return records, nil
}

func (repo *MoodRecordRepository) CountOwners(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).
		Model(&models.MoodRecord{}).
		Distinct("owner_id").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count owners: %w", err)
	}
	return count, nil
}
