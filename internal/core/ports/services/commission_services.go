package services

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
)

// CommissionSvcFacade defines commission lifecycle operations.
type CommissionSvcFacade interface {
	// GetCommissionByID retrieves one commission row.
	GetCommissionByID(ctx context.Context, commissionID string) (*domain.Commission, error)

	// ListCommissionsByUser lists a user's commissions, optionally filtered
	// by status.
	ListCommissionsByUser(ctx context.Context, userID string, status *domain.CommissionStatus, limit int, offset int) ([]domain.Commission, error)

	// UpdateStatus transitions one commission and maintains paid_at
	// semantics.
	UpdateStatus(ctx context.Context, commissionID string, status domain.CommissionStatus, updaterUserID string) (*domain.Commission, error)

	// BulkUpdateStatus transitions exactly the given set of commissions in
	// one atomic unit; partial application is disallowed.
	BulkUpdateStatus(ctx context.Context, commissionIDs []string, status domain.CommissionStatus, updaterUserID string) error
}
