package profiler

import (
	"time"

	"github.com/runtime-analysis/pkg/model"
	"github.com/runtime-analysis/pkg/utils"
)

// Sink receives the structured events of one profiling pass. The profiler
// treats it as an opaque recorder; formatting and persistence belong to
// the implementation.
type Sink interface {
	// BeginSample opens a sample for the given space and event kind and
	// reports overall heap stats.
	BeginSample(space, event string, capacity, used int64)
	// KindItem reports one row of the per-kind instance histogram.
	KindItem(name string, count, bytes int64)
	// Constructor reports one row of the constructor histogram.
	Constructor(name string, count, bytes int64)
	// Retainers reports one rendered retainer line.
	Retainers(line string)
	// EndSample closes the sample.
	EndSample()
}

// LogSink formats sample events through the application logger.
type LogSink struct {
	logger utils.Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger utils.Logger) *LogSink {
	if logger == nil {
		logger = utils.GetGlobalLogger()
	}
	return &LogSink{logger: logger}
}

// BeginSample logs the sample header.
func (s *LogSink) BeginSample(space, event string, capacity, used int64) {
	s.logger.Info("heap-sample-begin,%q,%q", space, event)
	s.logger.Info("heap-sample-stats,%q,%q,%d,%d", space, event, capacity, used)
}

// KindItem logs one kind histogram row.
func (s *LogSink) KindItem(name string, count, bytes int64) {
	s.logger.Info("heap-sample-item,%s,%d,%d", name, count, bytes)
}

// Constructor logs one constructor histogram row.
func (s *LogSink) Constructor(name string, count, bytes int64) {
	s.logger.Info("heap-js-cons-item,%s,%d,%d", name, count, bytes)
}

// Retainers logs one retainer line.
func (s *LogSink) Retainers(line string) {
	s.logger.Info("heap-js-ret-item,%s", line)
}

// EndSample logs the sample trailer.
func (s *LogSink) EndSample() {
	s.logger.Info("heap-sample-end")
}

// CollectorSink accumulates the events of one pass into a model.HeapSample
// for persistence and assertions.
type CollectorSink struct {
	sample model.HeapSample
}

// NewCollectorSink creates an empty collector.
func NewCollectorSink() *CollectorSink {
	return &CollectorSink{}
}

// BeginSample records the sample header.
func (s *CollectorSink) BeginSample(space, event string, capacity, used int64) {
	s.sample = model.HeapSample{
		Space:    space,
		Event:    event,
		TakenAt:  time.Now(),
		Capacity: capacity,
		Used:     used,
	}
}

// KindItem records one kind histogram row.
func (s *CollectorSink) KindItem(name string, count, bytes int64) {
	s.sample.Kinds = append(s.sample.Kinds, model.HistogramRow{Name: name, Count: count, Bytes: bytes})
}

// Constructor records one constructor histogram row.
func (s *CollectorSink) Constructor(name string, count, bytes int64) {
	s.sample.Constructors = append(s.sample.Constructors, model.HistogramRow{Name: name, Count: count, Bytes: bytes})
}

// Retainers records one retainer line.
func (s *CollectorSink) Retainers(line string) {
	s.sample.RetainerLines = append(s.sample.RetainerLines, line)
}

// EndSample is a no-op for the collector.
func (s *CollectorSink) EndSample() {}

// Sample returns the collected sample.
func (s *CollectorSink) Sample() *model.HeapSample {
	return &s.sample
}
