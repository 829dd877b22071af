package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/benchmark-cli/internal/store"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect stored benchmark reports",
}

// -- reports list --

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		company, _ := cmd.Flags().GetString("company")
		tpl, _ := cmd.Flags().GetString("template")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		reports, err := st.ListReports(ctx, store.ReportFilter{
			CompanyID:  company,
			TemplateID: tpl,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return eris.Wrap(err, "reports list")
		}

		if len(reports) == 0 {
			fmt.Fprintln(os.Stderr, "No reports found.")
			return nil
		}

		formatReportsList(os.Stdout, reports)
		return nil
	},
}

// -- reports show --

var reportsShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Show a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec, err := st.GetReport(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "reports show")
		}

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		return emitReport(rec.Report, formatFromPath(output, format), output)
	},
}

// -- reports delete --

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <report-id>",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteReport(ctx, args[0]); err != nil {
			return eris.Wrap(err, "reports delete")
		}
		fmt.Fprintf(os.Stderr, "Deleted report %s\n", args[0])
		return nil
	},
}

func init() {
	reportsListCmd.Flags().String("company", "", "filter by company id")
	reportsListCmd.Flags().String("template", "", "filter by template id")
	reportsListCmd.Flags().Int("limit", 50, "max reports to list")
	reportsListCmd.Flags().Int("offset", 0, "skip this many reports")

	reportsShowCmd.Flags().String("format", "json", "output format: json, table, csv, xlsx")
	reportsShowCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsDeleteCmd)
	rootCmd.AddCommand(reportsCmd)
}

func formatReportsList(out io.Writer, reports []store.StoredReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tTEMPLATE\tELIGIBLE\tCONFIDENCE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-------\t--------\t--------\t----------\t-------")

	for _, r := range reports {
		company := r.CompanyID
		if len(company) > 30 {
			company = company[:27] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			r.ID,
			company,
			r.TemplateID+" v"+r.TemplateVersion,
			r.EligibleMetrics, r.TotalMetrics,
			r.OverallConfidence,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}
