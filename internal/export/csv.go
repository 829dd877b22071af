package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// WriteCSV writes the metric comparison rows with a header line.
func WriteCSV(w io.Writer, r *model.BenchmarkReport) error {
	if r == nil {
		return eris.New("export: report is nil")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(metricHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, m := range r.Metrics {
		if err := cw.Write(texts(metricRecord(m))); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", m.MetricID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
