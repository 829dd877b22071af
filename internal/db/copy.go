package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyRows streams rows into table over the COPY protocol inside tx. An
// empty batch is a no-op.
func CopyRows(ctx context.Context, tx Tx, table pgx.Identifier, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return 0, eris.Errorf("db: copy %s: row %d has %d values, want %d", table.Sanitize(), i, len(r), len(columns))
		}
	}

	n, err := tx.CopyFrom(ctx, table, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: copy into %s", table.Sanitize())
	}
	return n, nil
}
