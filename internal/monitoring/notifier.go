package monitoring

import (
	"context"
	"strconv"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
)

// metricsCommissionNotifier counts created commission rows per level and
// delegates to the wrapped notifier.
type metricsCommissionNotifier struct {
	next portssvc.CommissionNotifier
}

// NewMetricsCommissionNotifier wraps a notifier with per-level counters.
func NewMetricsCommissionNotifier(next portssvc.CommissionNotifier) portssvc.CommissionNotifier {
	return &metricsCommissionNotifier{next: next}
}

func (n *metricsCommissionNotifier) NotifyCommissionsCreated(ctx context.Context, txn domain.Transaction, commissions []domain.Commission) error {
	for _, c := range commissions {
		CommissionsCreated.WithLabelValues(strconv.Itoa(c.Level)).Inc()
	}
	return n.next.NotifyCommissionsCreated(ctx, txn, commissions)
}
