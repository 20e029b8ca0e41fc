// Package sheets defines the outbound port for mirroring ledger rows to a
// spreadsheet.
package sheets

import (
	"context"

	"spendtrack/internal/core"
)

// RowAppender mirrors one ledger record, tagged with its owner, to an
// external sheet.
type RowAppender interface {
	AppendRecord(ctx context.Context, owner string, rec core.Record) (rowRef string, err error)
}
