package repository

import (
	"context"

	"github.com/runtime-analysis/pkg/model"
)

// StoredSample is a heap sample together with its database identity and
// the storage key of its rendered report.
type StoredSample struct {
	ID        int64             `json:"id"`
	ReportKey string            `json:"report_key"`
	Version   string            `json:"version"`
	Sample    *model.HeapSample `json:"sample"`
}

// SampleRepository defines the interface for heap sample persistence.
type SampleRepository interface {
	// SaveSample stores a sample and returns its assigned ID.
	SaveSample(ctx context.Context, sample *model.HeapSample, reportKey string) (int64, error)

	// GetSampleByID retrieves a sample by its ID.
	GetSampleByID(ctx context.Context, id int64) (*StoredSample, error)

	// ListSamples retrieves the most recent samples for a heap space,
	// newest first. An empty space matches all spaces.
	ListSamples(ctx context.Context, space string, limit int) ([]*StoredSample, error)

	// LatestSample retrieves the most recent sample for a heap space.
	LatestSample(ctx context.Context, space string) (*StoredSample, error)

	// DeleteSample removes a sample by its ID.
	DeleteSample(ctx context.Context, id int64) error
}
