package service

import (
	"context"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/messaging"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SpendListener is told when the spend of a workspace month changed
type SpendListener interface {
	SpendChanged(workspaceID int32, month time.Time)
}

// BudgetAlert is the payload pushed when a month has active warnings
type BudgetAlert struct {
	Month    string           `json:"month"`
	Warnings []domain.Warning `json:"warnings"`
}

// WarningNotifier recomputes a month's warnings after its spend changed and
// pushes them to connected clients and the delivery queue
type WarningNotifier struct {
	statusService *BudgetStatusService
	events        websocket.EventPublisher
	queue         messaging.Publisher
	logger        zerolog.Logger
}

var _ SpendListener = (*WarningNotifier)(nil)

// NewWarningNotifier creates a WarningNotifier. events and queue may be nil.
func NewWarningNotifier(statusService *BudgetStatusService, events websocket.EventPublisher, queue messaging.Publisher) *WarningNotifier {
	return &WarningNotifier{
		statusService: statusService,
		events:        events,
		queue:         queue,
		logger:        log.With().Str("component", "warning_notifier").Logger(),
	}
}

// SpendChanged implements SpendListener. Failures are logged, never returned:
// the write that triggered the call has already succeeded.
func (n *WarningNotifier) SpendChanged(workspaceID int32, month time.Time) {
	month = util.NormalizeMonth(month)
	warnings, err := n.statusService.GetBudgetWarnings(workspaceID, month)
	if err != nil {
		n.logger.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to compute budget warnings")
		return
	}
	if len(warnings) == 0 {
		return
	}

	alert := BudgetAlert{Month: month.Format("2006-01"), Warnings: warnings}
	if n.events != nil {
		n.events.Publish(workspaceID, websocket.BudgetWarning(alert))
	}
	if n.queue != nil {
		msg, err := messaging.NewMessage(messaging.TypeBudgetWarning, workspaceID, alert)
		if err != nil {
			n.logger.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to build warning message")
			return
		}
		if err := n.queue.Publish(context.Background(), msg); err != nil {
			n.logger.Warn().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to queue budget warnings")
		}
	}

	n.logger.Debug().
		Int32("workspace_id", workspaceID).
		Int("warning_count", len(warnings)).
		Msg("Budget warnings pushed")
}
