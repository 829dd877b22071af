package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/benchmark-cli/internal/pipeline"
	"github.com/sells-group/benchmark-cli/internal/snapshot"
)

var (
	compareTemplate string
	compareLens     string
	compareSave     bool
	compareFormat   string
	compareOutput   string
)

var compareCmd = &cobra.Command{
	Use:   "compare <snapshot-file>",
	Short: "Benchmark one company snapshot against its industry template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		snap, err := snapshot.LoadFile(args[0])
		if err != nil {
			return err
		}
		if compareTemplate != "" {
			snap.TemplateID = compareTemplate
		}

		env, err := initPipeline(ctx, compareSave)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Run(ctx, snap, pipeline.RunOptions{DealLens: compareLens, Save: compareSave})
		if err != nil {
			return err
		}
		if res.ReportID != "" {
			fmt.Fprintf(os.Stderr, "Saved report %s (template %s, matched on %s)\n", res.ReportID, res.Report.TemplateID, res.MatchedOn)
		}

		return emitReport(res.Report, formatFromPath(compareOutput, compareFormat), compareOutput)
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareTemplate, "template", "", "template id (default: resolved from the snapshot classification)")
	compareCmd.Flags().StringVar(&compareLens, "lens", "", "deal lens override (e.g. growth, carve_out)")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "persist the report to the configured store")
	compareCmd.Flags().StringVar(&compareFormat, "format", "table", "output format: json, table, csv, xlsx")
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "write to file instead of stdout (format follows the extension)")
	rootCmd.AddCommand(compareCmd)
}
