package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/runtime-analysis/pkg/errors"
	"github.com/runtime-analysis/pkg/model"
)

// GormSampleRepository implements SampleRepository using GORM.
type GormSampleRepository struct {
	db      *gorm.DB
	version string
}

// NewGormSampleRepository creates a new GormSampleRepository. The version
// is recorded with every stored sample.
func NewGormSampleRepository(db *gorm.DB, version string) *GormSampleRepository {
	return &GormSampleRepository{db: db, version: version}
}

// SaveSample stores a sample and returns its assigned ID.
func (r *GormSampleRepository) SaveSample(ctx context.Context, sample *model.HeapSample, reportKey string) (int64, error) {
	record, err := newHeapSampleRecord(sample, reportKey, r.version)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to encode sample", err)
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to save sample", err)
	}

	return record.ID, nil
}

// GetSampleByID retrieves a sample by its ID.
func (r *GormSampleRepository) GetSampleByID(ctx context.Context, id int64) (*StoredSample, error) {
	var record HeapSampleRecord

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("sample not found: %d", id))
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to get sample", err)
	}

	return toStoredSample(&record)
}

// ListSamples retrieves the most recent samples for a heap space, newest
// first. An empty space matches all spaces.
func (r *GormSampleRepository) ListSamples(ctx context.Context, space string, limit int) ([]*StoredSample, error) {
	var records []HeapSampleRecord

	q := r.db.WithContext(ctx).Order("taken_at DESC, id DESC").Limit(limit)
	if space != "" {
		q = q.Where("space = ?", space)
	}

	if err := q.Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to query samples", err)
	}

	result := make([]*StoredSample, len(records))
	for i := range records {
		stored, err := toStoredSample(&records[i])
		if err != nil {
			return nil, err
		}
		result[i] = stored
	}

	return result, nil
}

// LatestSample retrieves the most recent sample for a heap space.
func (r *GormSampleRepository) LatestSample(ctx context.Context, space string) (*StoredSample, error) {
	samples, err := r.ListSamples(ctx, space, 1)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("no samples for space: %s", space))
	}
	return samples[0], nil
}

// DeleteSample removes a sample by its ID.
func (r *GormSampleRepository) DeleteSample(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&HeapSampleRecord{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to delete sample", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("sample not found: %d", id))
	}
	return nil
}

func toStoredSample(record *HeapSampleRecord) (*StoredSample, error) {
	sample, err := record.ToModel()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to decode sample", err)
	}
	return &StoredSample{
		ID:        record.ID,
		ReportKey: record.ReportKey,
		Version:   record.Version,
		Sample:    sample,
	}, nil
}
