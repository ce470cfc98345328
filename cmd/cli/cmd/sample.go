package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/runtime-analysis/internal/service"
	"github.com/runtime-analysis/pkg/pprof"
)

var (
	sampleConcurrency int
	sampleRetainers   bool
	samplePprofDir    string
)

// sampleCmd profiles one or more heap snapshot files.
var sampleCmd = &cobra.Command{
	Use:   "sample <snapshot>...",
	Short: "Profile heap snapshot files",
	Long: `Profile one or more heap snapshot files.

Each snapshot gets one full profiling pass: a per-kind histogram, a
per-constructor histogram, and retainer clustering. The sample is
archived in the database and the rendered report is uploaded to the
configured store. Gzip and zstd compressed snapshots are accepted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if samplePprofDir != "" {
			collector := pprof.NewCollector(samplePprofDir)
			if err := collector.Start(); err != nil {
				return err
			}
			defer func() {
				if err := collector.Stop(); err != nil {
					logger.Warn("Failed to write profiles: %v", err)
				}
			}()
		}

		svc, err := service.New(cfg, logger)
		if err != nil {
			return err
		}
		if err := svc.Initialize(ctx); err != nil {
			return err
		}
		defer svc.Stop()

		results, err := svc.ProfileSnapshots(ctx, args, sampleConcurrency)
		if err != nil {
			return err
		}

		for _, result := range results {
			sample := result.Sample
			fmt.Printf("%s: sample %d, %s %q, used %d of %d bytes\n",
				result.SnapshotPath, result.SampleID, sample.Space, sample.Event,
				sample.Used, sample.Capacity)
			fmt.Printf("  report: %s (%d -> %d bytes)\n",
				result.ReportKey, result.JSONSize, result.CompressedSize)
			for _, row := range sample.Constructors {
				fmt.Printf("  %s: %d instances, %d bytes\n", row.Name, row.Count, row.Bytes)
			}
			if sampleRetainers {
				for _, line := range sample.RetainerLines {
					fmt.Printf("  retainers: %s\n", line)
				}
			}
		}

		return nil
	},
}

func init() {
	sampleCmd.Flags().IntVarP(&sampleConcurrency, "concurrency", "j", 4, "Snapshots profiled in parallel")
	sampleCmd.Flags().BoolVar(&sampleRetainers, "retainers", false, "Print retainer lines for each sample")
	sampleCmd.Flags().StringVar(&samplePprofDir, "pprof-dir", "", "Write CPU and heap profiles of this run into the directory")
	rootCmd.AddCommand(sampleCmd)
}
