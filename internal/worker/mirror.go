// Package worker mirrors expense events from the queue into an external
// spreadsheet.
package worker

import (
	"context"
	"fmt"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/sheets"
)

// MirrorWorker appends every expense.added event as a spreadsheet row.
// Other event types are acknowledged and skipped.
type MirrorWorker struct {
	appender sheets.RowAppender
	logger   *log.Logger
}

func NewMirrorWorker(appender sheets.RowAppender, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		appender: appender,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage processes one event. An error requeues the delivery, so only
// appender failures return one.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.Message) error {
	if msg.Type != amqp.TypeExpenseAdded {
		w.logger.DebugContext(ctx, "Skipping event", "type", msg.Type)
		return nil
	}

	rec := core.Record{
		Time:        msg.Timestamp,
		Category:    msg.Category,
		Description: msg.Description,
		Amount:      core.Money{Cents: msg.AmountCents},
	}

	ref, err := w.appender.AppendRecord(ctx, msg.Username, rec)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	w.logger.InfoContext(ctx, "Mirrored expense row",
		log.FieldUsername, msg.Username,
		log.FieldCategory, msg.Category,
		log.FieldAmountCents, msg.AmountCents,
		"row_ref", ref)
	return nil
}
