package dto

import (
	"time"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordTransactionRequest defines the payload to record a purchase. The
// referral code is optional: an unattributed sale is a normal outcome.
type RecordTransactionRequest struct {
	CustomerEmail   string          `json:"customer_email" binding:"required,email"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	ReferralCode    *string         `json:"referral_code,omitempty"`
	TransactionType *string         `json:"transaction_type,omitempty" binding:"omitempty,oneof=purchase subscription upgrade"`
}

// TransactionResponse defines the data returned for a recorded transaction.
type TransactionResponse struct {
	TransactionID   string          `json:"id"`
	CustomerEmail   string          `json:"customer_email"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	TransactionType string          `json:"transaction_type"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PublicTransactionResponse is the reduced shape returned on the public
// record endpoint.
type PublicTransactionResponse struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
}

// ListTransactionsResponse wraps a list of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		CustomerEmail:   txn.CustomerEmail,
		Amount:          txn.Amount,
		Status:          string(txn.Status),
		TransactionType: string(txn.Type),
		CreatedAt:       txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to DTOs.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToPublicTransactionResponse converts a domain.Transaction to the public DTO.
func ToPublicTransactionResponse(txn *domain.Transaction) PublicTransactionResponse {
	return PublicTransactionResponse{
		TransactionID: txn.TransactionID,
		Amount:        txn.Amount,
		Status:        string(txn.Status),
	}
}
