package dto

import (
	"time"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpdateCommissionStatusRequest defines a single commission status change.
type UpdateCommissionStatusRequest struct {
	Status string `json:"status" binding:"required,commission_status"`
}

// BulkUpdateCommissionStatusRequest applies one status to a set of
// commissions; the whole batch succeeds or fails together.
type BulkUpdateCommissionStatusRequest struct {
	CommissionIDs []string `json:"commissionIDs" binding:"required,min=1"`
	Status        string   `json:"status" binding:"required,commission_status"`
}

// CommissionResponse defines the data returned for a commission row.
type CommissionResponse struct {
	CommissionID  string          `json:"commissionID"`
	UserID        string          `json:"userID"`
	TransactionID string          `json:"transactionID"`
	Level         int             `json:"level"`
	Amount        decimal.Decimal `json:"amount"`
	Rate          decimal.Decimal `json:"rate"`
	Status        string          `json:"status"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListCommissionsResponse wraps a list of commissions.
type ListCommissionsResponse struct {
	Commissions []CommissionResponse `json:"commissions"`
}

// ToCommissionResponse converts a domain.Commission to CommissionResponse DTO.
func ToCommissionResponse(c *domain.Commission) CommissionResponse {
	return CommissionResponse{
		CommissionID:  c.CommissionID,
		UserID:        c.UserID,
		TransactionID: c.TransactionID,
		Level:         c.Level,
		Amount:        c.Amount,
		Rate:          c.Rate,
		Status:        string(c.Status),
		PaidAt:        c.PaidAt,
		CreatedAt:     c.CreatedAt,
	}
}

// ToCommissionResponses converts a slice of domain.Commission to DTOs.
func ToCommissionResponses(commissions []domain.Commission) []CommissionResponse {
	responses := make([]CommissionResponse, len(commissions))
	for i := range commissions {
		responses[i] = ToCommissionResponse(&commissions[i])
	}
	return responses
}
