package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/benchmark-cli/internal/export"
	"github.com/sells-group/benchmark-cli/internal/model"
)

var reportFormats = []string{"json", "table", "csv", "xlsx"}

// writeReport renders r in the given format.
func writeReport(w io.Writer, r *model.BenchmarkReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(r), "encode report")
	case "table":
		if err := export.WriteTable(w, r); err != nil {
			return err
		}
		_, err := io.WriteString(w, export.SummaryLine(r)+"\n")
		return eris.Wrap(err, "write summary")
	case "csv":
		return export.WriteCSV(w, r)
	case "xlsx":
		return export.WriteXLSX(w, r)
	default:
		return eris.Errorf("unknown format %q (want one of %s)", format, strings.Join(reportFormats, ", "))
	}
}

// formatFromPath infers the output format from a file extension, falling
// back to def.
func formatFromPath(path, def string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	case ".txt":
		return "table"
	}
	return def
}

// emitReport writes r to path, or stdout when path is empty. The xlsx format
// needs a file.
func emitReport(r *model.BenchmarkReport, format, path string) error {
	if path == "" {
		if format == "xlsx" {
			return eris.New("xlsx output requires --output")
		}
		return writeReport(os.Stdout, r, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := writeReport(f, r, format); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}
