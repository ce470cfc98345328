// Package pprof collects CPU and heap profiles of the tool itself,
// so slow profiling runs over large snapshots can be diagnosed.
package pprof

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
)

// Collector writes CPU and heap profiles for one run into a directory.
type Collector struct {
	outputDir string
	cpuFile   *os.File
}

// NewCollector creates a collector writing into outputDir.
func NewCollector(outputDir string) *Collector {
	if outputDir == "" {
		outputDir = "./pprof"
	}
	return &Collector{outputDir: outputDir}
}

// Start begins CPU profiling. It fails if another CPU profile is active.
func (c *Collector) Start() error {
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create pprof directory: %w", err)
	}

	f, err := os.Create(filepath.Join(c.outputDir, "cpu.pprof"))
	if err != nil {
		return fmt.Errorf("failed to create cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to start cpu profile: %w", err)
	}
	c.cpuFile = f
	return nil
}

// Stop finishes the CPU profile and writes a heap profile alongside it.
func (c *Collector) Stop() error {
	if c.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	if err := c.cpuFile.Close(); err != nil {
		return err
	}
	c.cpuFile = nil

	f, err := os.Create(filepath.Join(c.outputDir, "heap.pprof"))
	if err != nil {
		return fmt.Errorf("failed to create heap profile: %w", err)
	}
	defer f.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write heap profile: %w", err)
	}
	return nil
}

// OutputDir returns the directory profiles are written to.
func (c *Collector) OutputDir() string { return c.outputDir }
