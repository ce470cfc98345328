// Package model defines the shared data types exchanged between the
// profiler, repositories, and storage backends.
package model

import "time"

// HistogramRow is one count/bytes row of a sample histogram, keyed either
// by object kind or by constructor name.
type HistogramRow struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
	Bytes int64  `json:"bytes"`
}

// HeapSample is the complete result of one profiling pass over a heap.
type HeapSample struct {
	Space         string         `json:"space"`
	Event         string         `json:"event"`
	TakenAt       time.Time      `json:"taken_at"`
	Capacity      int64          `json:"capacity"`
	Used          int64          `json:"used"`
	Kinds         []HistogramRow `json:"kinds,omitempty"`
	Constructors  []HistogramRow `json:"constructors,omitempty"`
	RetainerLines []string       `json:"retainer_lines,omitempty"`
}

// ConstructorBytes returns the total bytes attributed across all
// constructor rows.
func (s *HeapSample) ConstructorBytes() int64 {
	var total int64
	for _, row := range s.Constructors {
		total += row.Bytes
	}
	return total
}

// FindConstructor returns the row for the given constructor name.
func (s *HeapSample) FindConstructor(name string) (HistogramRow, bool) {
	for _, row := range s.Constructors {
		if row.Name == name {
			return row, true
		}
	}
	return HistogramRow{}, false
}
