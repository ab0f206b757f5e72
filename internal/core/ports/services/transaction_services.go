package services

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
)

// CommissionEngineSvcFacade is the single entry point that creates money
// from a sale.
type CommissionEngineSvcFacade interface {
	// RecordTransaction validates the request, resolves attribution, walks
	// the upline and persists the transaction plus its commission rows in
	// one atomic unit. Returns the created transaction.
	RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, creatorUserID string) (*domain.Transaction, error)

	// GetTransactionByID retrieves a recorded transaction.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByReferrer lists transactions attributed to a referrer.
	ListTransactionsByReferrer(ctx context.Context, referrerID string, limit int, offset int) ([]domain.Transaction, error)
}
