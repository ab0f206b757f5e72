package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
)

type PgxReferralRepository struct {
	pool *pgxpool.Pool
}

// NewPgxReferralRepository creates the read-only repository backing downline
// reconstruction and node enrichment.
func NewPgxReferralRepository(pool *pgxpool.Pool) portsrepo.ReferralRepositoryFacade {
	return &PgxReferralRepository{pool: pool}
}

// FindActiveUsersByReferrerIDs returns active users whose referrer_id is in
// the given set, ordered by creation time.
func (r *PgxReferralRepository) FindActiveUsersByReferrerIDs(ctx context.Context, referrerIDs []string) ([]domain.User, error) {
	if len(referrerIDs) == 0 {
		return []domain.User{}, nil
	}
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE referrer_id = ANY($1) AND is_active = TRUE AND deleted_at IS NULL
		ORDER BY created_at ASC;
	`
	rows, err := r.pool.Query(ctx, query, referrerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query referrals: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referral rows: %w", err)
	}
	return users, nil
}

// CountDirectReferralsByUsers counts active direct referrals per user. Users
// without referrals are absent from the map.
func (r *PgxReferralRepository) CountDirectReferralsByUsers(ctx context.Context, userIDs []string) (map[string]int, error) {
	counts := map[string]int{}
	if len(userIDs) == 0 {
		return counts, nil
	}
	query := `
		SELECT referrer_id, COUNT(*)
		FROM users
		WHERE referrer_id = ANY($1) AND is_active = TRUE AND deleted_at IS NULL
		GROUP BY referrer_id;
	`
	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count direct referrals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var referrerID string
		var count int
		if err := rows.Scan(&referrerID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan referral count: %w", err)
		}
		counts[referrerID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referral counts: %w", err)
	}
	return counts, nil
}

// CountCompletedSalesByReferrers counts completed transactions attributed to
// each referrer. Referrers without sales are absent from the map.
func (r *PgxReferralRepository) CountCompletedSalesByReferrers(ctx context.Context, userIDs []string) (map[string]int, error) {
	counts := map[string]int{}
	if len(userIDs) == 0 {
		return counts, nil
	}
	query := `
		SELECT referrer_id, COUNT(*)
		FROM transactions
		WHERE referrer_id = ANY($1) AND status = 'completed'
		GROUP BY referrer_id;
	`
	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var referrerID string
		var count int
		if err := rows.Scan(&referrerID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan sales count: %w", err)
		}
		counts[referrerID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales counts: %w", err)
	}
	return counts, nil
}

// SumPaidCommissionsByUsers sums paid commission amounts per beneficiary.
// Users without paid commissions are absent from the map.
func (r *PgxReferralRepository) SumPaidCommissionsByUsers(ctx context.Context, userIDs []string) (map[string]decimal.Decimal, error) {
	sums := map[string]decimal.Decimal{}
	if len(userIDs) == 0 {
		return sums, nil
	}
	query := `
		SELECT user_id, COALESCE(SUM(amount), 0)
		FROM commissions
		WHERE user_id = ANY($1) AND status = 'paid'
		GROUP BY user_id;
	`
	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum paid commissions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var sum decimal.Decimal
		if err := rows.Scan(&userID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan paid commission sum: %w", err)
		}
		sums[userID] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating paid commission sums: %w", err)
	}
	return sums, nil
}
