package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
)

const transactionColumns = `transaction_id, customer_email, amount, affiliate_link_id, referrer_id, status, transaction_type, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewPgxTransactionRepository creates a new repository for transaction data.
func NewPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{pool: pool}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.CustomerEmail,
		&txn.Amount,
		&txn.AffiliateLinkID,
		&txn.ReferrerID,
		&txn.Status,
		&txn.Type,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// SaveTransactionWithCommissions persists the transaction, its commission
// rows and the attributed link's conversion bump inside one DB transaction.
// Any failure rolls back the whole unit.
func (r *PgxTransactionRepository) SaveTransactionWithCommissions(ctx context.Context, txn domain.Transaction, commissions []domain.Commission, attributedLinkID *string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore rollback error
	}()

	if attributedLinkID != nil {
		// Atomic SQL add, never read-modify-write
		convQuery := `UPDATE affiliate_links SET conversions = conversions + 1, last_updated_at = $2 WHERE link_id = $1;`
		tag, err := tx.Exec(ctx, convQuery, *attributedLinkID, txn.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to bump conversions for link %s: %w", *attributedLinkID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("attributed link %s missing: %w", *attributedLinkID, apperrors.ErrNotFound)
		}
	}

	txnQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, txnQuery,
		txn.TransactionID,
		txn.CustomerEmail,
		txn.Amount,
		txn.AffiliateLinkID,
		txn.ReferrerID,
		txn.Status,
		txn.Type,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}

	if len(commissions) > 0 {
		batch := &pgx.Batch{}
		commQuery := `
			INSERT INTO commissions (commission_id, user_id, transaction_id, level, amount, rate, status, paid_at, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
		`
		for _, c := range commissions {
			batch.Queue(commQuery,
				c.CommissionID,
				c.UserID,
				c.TransactionID,
				c.Level,
				c.Amount,
				c.Rate,
				c.Status,
				c.PaidAt,
				c.CreatedAt,
				c.CreatedBy,
				c.LastUpdatedAt,
				c.LastUpdatedBy,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for i := range commissions {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("failed to insert commission %d of %d for transaction %s: %w", i+1, len(commissions), txn.TransactionID, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to close commission batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return txn, nil
}

// FindTransactionsByReferrer retrieves transactions attributed to a referrer,
// newest first.
func (r *PgxTransactionRepository) FindTransactionsByReferrer(ctx context.Context, referrerID string, limit int, offset int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE referrer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`
	rows, err := r.pool.Query(ctx, query, referrerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for referrer %s: %w", referrerID, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}
