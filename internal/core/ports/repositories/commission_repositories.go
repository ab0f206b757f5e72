package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CommissionReader defines read operations for commission rows.
type CommissionReader interface {
	// FindCommissionByID retrieves a commission by its ID.
	FindCommissionByID(ctx context.Context, commissionID string) (*domain.Commission, error)

	// FindCommissionsByUser retrieves a user's commissions, optionally
	// filtered by status, newest first.
	FindCommissionsByUser(ctx context.Context, userID string, status *domain.CommissionStatus, limit int, offset int) ([]domain.Commission, error)

	// SumAmountByUserAndStatuses sums commission amounts for a user across
	// the given statuses. Returns zero when no rows match.
	SumAmountByUserAndStatuses(ctx context.Context, userID string, statuses []domain.CommissionStatus) (decimal.Decimal, error)

	// SumPaidByUserSince sums a user's paid commission amounts with
	// created_at >= since.
	SumPaidByUserSince(ctx context.Context, userID string, since time.Time) (decimal.Decimal, error)

	// SumPaidByUserPerLevel sums a user's paid commission amounts grouped by
	// level. Missing levels are absent from the map.
	SumPaidByUserPerLevel(ctx context.Context, userID string) (map[int]decimal.Decimal, error)
}

// CommissionWriter defines status-transition operations for commission rows.
type CommissionWriter interface {
	// UpdateCommissionStatus transitions one commission. paidAt carries the
	// paid timestamp when status is paid and nil otherwise; a transition
	// away from paid clears the stored paid_at.
	UpdateCommissionStatus(ctx context.Context, commissionID string, status domain.CommissionStatus, paidAt *time.Time, updatedBy string, updatedAt time.Time) error

	// UpdateCommissionStatusBulk applies one status change to exactly the
	// given set of ids inside one database transaction. If any id does not
	// match a row the whole batch rolls back.
	UpdateCommissionStatusBulk(ctx context.Context, commissionIDs []string, status domain.CommissionStatus, paidAt *time.Time, updatedBy string, updatedAt time.Time) error
}

// CommissionRepositoryFacade combines commission repository interfaces.
type CommissionRepositoryFacade interface {
	CommissionReader
	CommissionWriter
}
