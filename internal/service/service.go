// Package service wires the profiler, repositories, and storage into the
// snapshot profiling pipeline.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/runtime-analysis/internal/heap"
	"github.com/runtime-analysis/internal/profiler"
	"github.com/runtime-analysis/internal/repository"
	"github.com/runtime-analysis/internal/storage"
	"github.com/runtime-analysis/pkg/compression"
	"github.com/runtime-analysis/pkg/config"
	apperrors "github.com/runtime-analysis/pkg/errors"
	"github.com/runtime-analysis/pkg/model"
	"github.com/runtime-analysis/pkg/utils"
	"github.com/runtime-analysis/pkg/writer"
)

const tracerName = "runtime-analysis/service"

// ProfileResult describes one profiled snapshot.
type ProfileResult struct {
	SampleID       int64             `json:"sample_id"`
	SnapshotPath   string            `json:"snapshot_path"`
	ReportPath     string            `json:"report_path"`
	ReportKey      string            `json:"report_key"`
	JSONSize       int64             `json:"json_size"`
	CompressedSize int64             `json:"compressed_size"`
	Sample         *model.HeapSample `json:"sample"`
}

// Service runs profiling passes over heap snapshots and persists the
// resulting samples.
type Service struct {
	config *config.Config
	logger utils.Logger
	tracer trace.Tracer

	db    *repository.Repositories
	store storage.Store

	running bool
}

// New creates a new Service instance.
func New(cfg *config.Config, logger utils.Logger) (*Service, error) {
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}

	return &Service{
		config: cfg,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Initialize initializes all service components.
func (s *Service) Initialize(ctx context.Context) error {
	s.logger.Info("Initializing service components...")

	if err := s.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := s.initStorage(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := s.config.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	s.running = true
	s.logger.Info("Service components initialized successfully")
	return nil
}

// initDatabase initializes the database connection and repositories.
func (s *Service) initDatabase() error {
	s.logger.Info("Connecting to database (%s)...", s.config.Database.Type)

	dbConfig := &repository.DBConfig{
		Type:     s.config.Database.Type,
		Path:     s.config.Database.Path,
		Host:     s.config.Database.Host,
		Port:     s.config.Database.Port,
		Database: s.config.Database.Database,
		User:     s.config.Database.User,
		Password: s.config.Database.Password,
		MaxConns: s.config.Database.MaxConns,
	}

	gormDB, err := repository.NewGormDB(dbConfig)
	if err != nil {
		return err
	}

	if err := repository.Migrate(gormDB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	s.db = repository.NewRepositories(gormDB, s.config.Database.Type, s.config.Profiler.Version)
	s.logger.Info("Database connection established")

	return nil
}

// initStorage initializes the report storage backend.
func (s *Service) initStorage() error {
	s.logger.Info("Initializing storage (%s)...", s.config.Storage.Type)

	store, err := storage.New(&s.config.Storage)
	if err != nil {
		return err
	}

	s.store = store
	s.logger.Info("Storage initialized")

	return nil
}

// profilerConfig converts the application configuration to profiler tuning.
func (s *Service) profilerConfig() profiler.Config {
	cfg := profiler.DefaultConfig()
	if s.config.Profiler.MaxCoarserPasses > 0 {
		cfg.MaxCoarserPasses = s.config.Profiler.MaxCoarserPasses
	}
	if s.config.Profiler.MaxRetainersPerLine > 0 {
		cfg.MaxRetainersPerLine = s.config.Profiler.MaxRetainersPerLine
	}
	return cfg
}

// ProfileSnapshot profiles one heap snapshot file: it loads the snapshot,
// runs a full profiling pass, writes a compressed report, stores the
// report, and persists the sample. Gzip and zstd compressed snapshots are
// decompressed transparently.
func (s *Service) ProfileSnapshot(ctx context.Context, snapshotPath string) (*ProfileResult, error) {
	ctx, span := s.tracer.Start(ctx, "ProfileSnapshot",
		trace.WithAttributes(attribute.String("snapshot.path", snapshotPath)))
	defer span.End()

	timer := utils.NewTimer("profile-snapshot", utils.WithLogger(s.logger))

	var h *heap.Heap
	var err error
	timer.TimeFunc("load", func() {
		h, err = s.loadSnapshot(snapshotPath)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded snapshot %s: %d objects, %d bytes used",
		snapshotPath, h.ObjectCount(), h.SizeOfObjects())

	collector := profiler.NewCollectorSink()
	timer.TimeFunc("profile", func() {
		profiler.WriteSample(h, collector, s.profilerConfig())
	})
	sample := collector.Sample()

	result := &ProfileResult{
		SnapshotPath: snapshotPath,
		Sample:       sample,
	}

	timer.TimeFunc("report", func() {
		err = s.writeReport(ctx, sample, snapshotPath, result)
	})
	if err != nil {
		return nil, err
	}

	timer.TimeFunc("persist", func() {
		result.SampleID, err = s.db.Sample.SaveSample(ctx, sample, result.ReportKey)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("sample.id", result.SampleID),
		attribute.Int64("sample.used", sample.Used),
	)
	timer.PrintSummary()
	s.logger.Info("Profiled %s: sample %d, report %s", snapshotPath, result.SampleID, result.ReportKey)

	return result, nil
}

// ProfileSnapshots profiles several snapshot files concurrently. Results
// are returned in input order; the first failure cancels the rest.
func (s *Service) ProfileSnapshots(ctx context.Context, snapshotPaths []string, concurrency int) ([]*ProfileResult, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	results := make([]*ProfileResult, len(snapshotPaths))
	for i, path := range snapshotPaths {
		g.Go(func() error {
			result, err := s.ProfileSnapshot(ctx, path)
			if err != nil {
				return fmt.Errorf("profiling %s: %w", path, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// loadSnapshot reads and parses a snapshot file, decompressing if needed.
func (s *Service) loadSnapshot(path string) (*heap.Heap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSnapshotError, "failed to read snapshot", err)
	}
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.CodeEmptyFile, fmt.Sprintf("snapshot file is empty: %s", path))
	}

	data, err = compression.AutoDecompress(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSnapshotError, "failed to decompress snapshot", err)
	}

	h, err := heap.LoadSnapshot(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSnapshotError, "failed to parse snapshot", err)
	}
	return h, nil
}

// writeReport renders the sample to a compressed JSON report and uploads
// it to the configured store.
func (s *Service) writeReport(ctx context.Context, sample *model.HeapSample, snapshotPath string, result *ProfileResult) error {
	name := reportName(snapshotPath, sample.TakenAt)
	reportPath := s.config.ReportPath(name)

	w := writer.NewReportWriter[*model.HeapSample]()
	stats, err := w.WriteFile(sample, reportPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeProfileError, "failed to write report", err)
	}

	key := "reports/" + name
	if err := s.store.PutFile(ctx, key, reportPath); err != nil {
		return apperrors.Wrap(apperrors.CodeUploadError, "failed to upload report", err)
	}

	result.ReportPath = reportPath
	result.ReportKey = key
	result.JSONSize = stats.JSONSize
	result.CompressedSize = stats.CompressedSize
	return nil
}

// reportName derives the report file name from the snapshot path and
// sample time.
func reportName(snapshotPath string, takenAt time.Time) string {
	base := filepath.Base(snapshotPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s-%s.json.gz", base, takenAt.UTC().Format("20060102T150405"))
}

// Stop stops the service and releases its resources.
func (s *Service) Stop() error {
	s.logger.Info("Stopping service...")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection: %v", err)
		}
	}

	s.running = false
	s.logger.Info("Service stopped")

	return nil
}

// IsRunning returns whether the service is initialized and running.
func (s *Service) IsRunning() bool {
	return s.running
}

// HealthCheck performs a health check on the service.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.db != nil {
		if err := s.db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
	}

	return nil
}

// Repositories exposes the repository layer, mainly for query commands.
func (s *Service) Repositories() *repository.Repositories {
	return s.db
}

// Store exposes the report storage backend.
func (s *Service) Store() storage.Store {
	return s.store
}
