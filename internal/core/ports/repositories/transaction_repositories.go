package repositories

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
)

// TransactionReader defines read operations for transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its ID.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByReferrer retrieves transactions attributed to a
	// referrer, newest first.
	FindTransactionsByReferrer(ctx context.Context, referrerID string, limit int, offset int) ([]domain.Transaction, error)
}

// TransactionWriter defines the engine's single mutating operation.
type TransactionWriter interface {
	// SaveTransactionWithCommissions persists the transaction and all of its
	// commission rows inside one database transaction. When
	// attributedLinkID is non-nil the link's conversion counter is also
	// incremented in the same unit. Any failure rolls back everything.
	SaveTransactionWithCommissions(ctx context.Context, txn domain.Transaction, commissions []domain.Commission, attributedLinkID *string) error
}

// TransactionRepositoryFacade combines transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
