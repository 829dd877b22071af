package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// Sheet names of the exported workbook.
const (
	SheetMetrics  = "Metrics"
	SheetSystems  = "Systems"
	SheetStaffing = "Staffing"
)

// WriteXLSX writes the report as a workbook with Metrics, Systems and
// Staffing sheets.
func WriteXLSX(w io.Writer, r *model.BenchmarkReport) error {
	if r == nil {
		return eris.New("export: report is nil")
	}

	f := xlsx.NewFile()

	metrics := make([][]any, 0, len(r.Metrics))
	for _, m := range r.Metrics {
		metrics = append(metrics, metricRecord(m))
	}
	systems := make([][]any, 0, len(r.Systems))
	for _, s := range r.Systems {
		systems = append(systems, systemRecord(s))
	}
	staffing := make([][]any, 0, len(r.Staffing))
	for _, s := range r.Staffing {
		staffing = append(staffing, staffingRecord(s))
	}

	for _, sh := range []struct {
		name   string
		header []string
		rows   [][]any
	}{
		{SheetMetrics, metricHeader, metrics},
		{SheetSystems, systemHeader, systems},
		{SheetStaffing, staffingHeader, staffing},
	} {
		if err := addSheet(f, sh.name, sh.header, sh.rows); err != nil {
			return err
		}
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func addSheet(f *xlsx.File, name string, header []string, rows [][]any) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}

	hr := sheet.AddRow()
	for _, h := range header {
		c := hr.AddCell()
		c.SetString(h)
		c.GetStyle().Font.Bold = true
	}

	for _, vals := range rows {
		row := sheet.AddRow()
		for _, v := range vals {
			setCell(row.AddCell(), v)
		}
	}
	return nil
}

func setCell(c *xlsx.Cell, v any) {
	switch x := v.(type) {
	case float64:
		c.SetFloat(x)
	case int:
		c.SetInt(x)
	case bool:
		c.SetBool(x)
	default:
		c.SetString(text(v))
	}
}
