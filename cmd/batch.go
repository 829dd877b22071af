package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/benchmark-cli/internal/pipeline"
	"github.com/sells-group/benchmark-cli/internal/snapshot"
)

var (
	batchDir         string
	batchOutDir      string
	batchLens        string
	batchSave        bool
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Benchmark every snapshot file in a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		paths, err := snapshot.ListDir(batchDir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Fprintln(os.Stderr, "No snapshot files found.")
			return nil
		}

		env, err := initPipeline(ctx, batchSave)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		summary, err := env.Pipeline.RunBatch(ctx, paths, concurrency, pipeline.RunOptions{DealLens: batchLens, Save: batchSave})
		if err != nil && summary == nil {
			return err
		}

		if batchOutDir != "" {
			if wErr := writeBatchReports(batchOutDir, summary); wErr != nil {
				return wErr
			}
		}
		formatBatchSummary(os.Stdout, summary)

		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return eris.Errorf("batch: %d of %d snapshots failed", summary.Failed, len(summary.Items))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory of snapshot files (.json, .yaml)")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "write each report as <company_id>.json into this directory")
	batchCmd.Flags().StringVar(&batchLens, "lens", "", "deal lens override for every snapshot")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "persist each report to the configured store")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent comparisons (default from config)")
	_ = batchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(batchCmd)
}

func writeBatchReports(dir string, summary *pipeline.BatchSummary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create %s", dir)
	}
	for _, it := range summary.Items {
		if it.Result == nil {
			continue
		}
		if err := emitReport(it.Result.Report, "json", filepath.Join(dir, it.Result.Report.CompanyID+".json")); err != nil {
			return err
		}
	}
	return nil
}

func formatBatchSummary(out io.Writer, summary *pipeline.BatchSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SNAPSHOT\tTEMPLATE\tMATCHED_ON\tELIGIBLE\tCONFIDENCE\tREPORT_ID\tERROR")
	_, _ = fmt.Fprintln(w, "--------\t--------\t----------\t--------\t----------\t---------\t-----")

	for _, it := range summary.Items {
		name := filepath.Base(it.Path)
		if it.Err != nil {
			msg := it.Err.Error()
			if i := strings.IndexByte(msg, '\n'); i >= 0 {
				msg = msg[:i]
			}
			if len(msg) > 60 {
				msg = msg[:57] + "..."
			}
			_, _ = fmt.Fprintf(w, "%s\t\t\t\t\t\t%s\n", name, msg)
			continue
		}
		r := it.Result.Report
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\t\n",
			name,
			r.TemplateID,
			it.Result.MatchedOn,
			r.EligibleMetricCount, r.TotalMetricCount,
			r.OverallConfidence,
			truncateID(it.Result.ReportID),
		)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
