package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
)

// logCommissionNotifier is the default CommissionNotifier: it records
// commission events on the structured log. Real delivery channels (email
// and the like) live outside the core and can replace this at wiring time;
// the engine receives the collaborator explicitly instead of reaching for a
// process-wide singleton.
type logCommissionNotifier struct {
	logger *slog.Logger
}

// NewLogCommissionNotifier creates a notifier that logs commission events.
func NewLogCommissionNotifier(logger *slog.Logger) portssvc.CommissionNotifier {
	return &logCommissionNotifier{logger: logger}
}

var _ portssvc.CommissionNotifier = (*logCommissionNotifier)(nil)

func (n *logCommissionNotifier) NotifyCommissionsCreated(ctx context.Context, txn domain.Transaction, commissions []domain.Commission) error {
	for _, c := range commissions {
		n.logger.Info("Commission earned",
			slog.String("user_id", c.UserID),
			slog.String("transaction_id", txn.TransactionID),
			slog.Int("level", c.Level),
			slog.String("amount", c.Amount.String()),
		)
	}
	return nil
}
