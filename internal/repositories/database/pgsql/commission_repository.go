package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
)

const commissionColumns = `commission_id, user_id, transaction_id, level, amount, rate, status, paid_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxCommissionRepository struct {
	pool *pgxpool.Pool
}

// NewPgxCommissionRepository creates a new repository for commission rows.
func NewPgxCommissionRepository(pool *pgxpool.Pool) portsrepo.CommissionRepositoryFacade {
	return &PgxCommissionRepository{pool: pool}
}

func scanCommission(row pgx.Row) (*domain.Commission, error) {
	var c domain.Commission
	err := row.Scan(
		&c.CommissionID,
		&c.UserID,
		&c.TransactionID,
		&c.Level,
		&c.Amount,
		&c.Rate,
		&c.Status,
		&c.PaidAt,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindCommissionByID retrieves a commission by its ID.
func (r *PgxCommissionRepository) FindCommissionByID(ctx context.Context, commissionID string) (*domain.Commission, error) {
	query := `SELECT ` + commissionColumns + ` FROM commissions WHERE commission_id = $1;`
	c, err := scanCommission(r.pool.QueryRow(ctx, query, commissionID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find commission by ID %s: %w", commissionID, err)
	}
	return c, nil
}

// FindCommissionsByUser retrieves a user's commissions, optionally filtered
// by status, newest first.
func (r *PgxCommissionRepository) FindCommissionsByUser(ctx context.Context, userID string, status *domain.CommissionStatus, limit int, offset int) ([]domain.Commission, error) {
	query := `SELECT ` + commissionColumns + ` FROM commissions WHERE user_id = $1 AND ($2::text IS NULL OR status = $2) ORDER BY created_at DESC LIMIT $3 OFFSET $4;`
	rows, err := r.pool.Query(ctx, query, userID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query commissions for user %s: %w", userID, err)
	}
	defer rows.Close()

	commissions := []domain.Commission{}
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission row: %w", err)
		}
		commissions = append(commissions, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commission rows: %w", err)
	}
	return commissions, nil
}

// SumAmountByUserAndStatuses sums commission amounts for a user across the
// given statuses. Returns zero when no rows match.
func (r *PgxCommissionRepository) SumAmountByUserAndStatuses(ctx context.Context, userID string, statuses []domain.CommissionStatus) (decimal.Decimal, error) {
	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}
	query := `SELECT COALESCE(SUM(amount), 0) FROM commissions WHERE user_id = $1 AND status = ANY($2);`
	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, userID, statusStrs).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum commissions for user %s: %w", userID, err)
	}
	return sum, nil
}

// SumPaidByUserSince sums a user's paid commission amounts created at or
// after the given instant.
func (r *PgxCommissionRepository) SumPaidByUserSince(ctx context.Context, userID string, since time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM commissions WHERE user_id = $1 AND status = 'paid' AND created_at >= $2;`
	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, userID, since).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum paid commissions since %s for user %s: %w", since.Format(time.RFC3339), userID, err)
	}
	return sum, nil
}

// SumPaidByUserPerLevel sums a user's paid commission amounts grouped by
// level. Missing levels are absent from the map.
func (r *PgxCommissionRepository) SumPaidByUserPerLevel(ctx context.Context, userID string) (map[int]decimal.Decimal, error) {
	query := `SELECT level, COALESCE(SUM(amount), 0) FROM commissions WHERE user_id = $1 AND status = 'paid' GROUP BY level;`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum per-level commissions for user %s: %w", userID, err)
	}
	defer rows.Close()

	sums := map[int]decimal.Decimal{}
	for rows.Next() {
		var level int
		var sum decimal.Decimal
		if err := rows.Scan(&level, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan per-level sum: %w", err)
		}
		sums[level] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating per-level sums: %w", err)
	}
	return sums, nil
}

// UpdateCommissionStatus transitions one commission, setting or clearing the
// stored paid_at alongside the status.
func (r *PgxCommissionRepository) UpdateCommissionStatus(ctx context.Context, commissionID string, status domain.CommissionStatus, paidAt *time.Time, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE commissions
		SET status = $2, paid_at = $3, last_updated_by = $4, last_updated_at = $5
		WHERE commission_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, commissionID, status, paidAt, updatedBy, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update commission %s status: %w", commissionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateCommissionStatusBulk applies one status change to exactly the given
// set of ids inside one DB transaction. If any id does not match a row the
// whole batch rolls back.
func (r *PgxCommissionRepository) UpdateCommissionStatusBulk(ctx context.Context, commissionIDs []string, status domain.CommissionStatus, paidAt *time.Time, updatedBy string, updatedAt time.Time) error {
	if len(commissionIDs) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore rollback error
	}()

	query := `
		UPDATE commissions
		SET status = $2, paid_at = $3, last_updated_by = $4, last_updated_at = $5
		WHERE commission_id = ANY($1);
	`
	tag, err := tx.Exec(ctx, query, commissionIDs, status, paidAt, updatedBy, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to bulk update %d commissions: %w", len(commissionIDs), err)
	}
	if tag.RowsAffected() != int64(len(commissionIDs)) {
		return fmt.Errorf("bulk update matched %d of %d commissions: %w", tag.RowsAffected(), len(commissionIDs), apperrors.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit bulk status update: %w", err)
	}
	return nil
}
