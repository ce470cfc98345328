package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/runtime-analysis/internal/service"
)

var (
	listSpace string
	listLimit int
)

// listCmd lists archived heap samples.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived heap samples",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.New(cfg, logger)
		if err != nil {
			return err
		}
		if err := svc.Initialize(cmd.Context()); err != nil {
			return err
		}
		defer svc.Stop()

		samples, err := svc.Repositories().Sample.ListSamples(cmd.Context(), listSpace, listLimit)
		if err != nil {
			return err
		}

		if len(samples) == 0 {
			fmt.Println("No samples archived.")
			return nil
		}

		for _, stored := range samples {
			sample := stored.Sample
			fmt.Printf("%d\t%s\t%s\tused %d of %d\t%s\n",
				stored.ID, sample.TakenAt.Format("2006-01-02 15:04:05"),
				sample.Space, sample.Used, sample.Capacity, stored.ReportKey)
		}

		return nil
	},
}

// showCmd prints one archived heap sample in full.
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one archived heap sample",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sample id: %s", args[0])
		}

		svc, err := service.New(cfg, logger)
		if err != nil {
			return err
		}
		if err := svc.Initialize(cmd.Context()); err != nil {
			return err
		}
		defer svc.Stop()

		stored, err := svc.Repositories().Sample.GetSampleByID(cmd.Context(), id)
		if err != nil {
			return err
		}

		sample := stored.Sample
		fmt.Printf("Sample %d: %s %q at %s\n", stored.ID, sample.Space, sample.Event,
			sample.TakenAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Used %d of %d bytes, report %s (version %s)\n",
			sample.Used, sample.Capacity, stored.ReportKey, stored.Version)

		fmt.Println("Kinds:")
		for _, row := range sample.Kinds {
			fmt.Printf("  %s: %d instances, %d bytes\n", row.Name, row.Count, row.Bytes)
		}
		fmt.Println("Constructors:")
		for _, row := range sample.Constructors {
			fmt.Printf("  %s: %d instances, %d bytes\n", row.Name, row.Count, row.Bytes)
		}
		fmt.Println("Retainers:")
		for _, line := range sample.RetainerLines {
			fmt.Printf("  %s\n", line)
		}

		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listSpace, "space", "", "Only samples for this heap space")
	listCmd.Flags().IntVar(&listLimit, "limit", 10, "Maximum samples to list")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
