package services

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
)

// CommissionNotifier is an explicitly constructed collaborator the engine
// calls after a successful commit. Implementations must be best-effort:
// delivery failures are logged by the caller and never abort the sale.
type CommissionNotifier interface {
	// NotifyCommissionsCreated reports newly created commission rows for a
	// transaction.
	NotifyCommissionsCreated(ctx context.Context, txn domain.Transaction, commissions []domain.Commission) error
}
