package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionStatus tracks the payout lifecycle of a commission row.
type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "pending"
	CommissionApproved  CommissionStatus = "approved"
	CommissionPaid      CommissionStatus = "paid"
	CommissionCancelled CommissionStatus = "cancelled"
)

// ValidCommissionStatus reports whether s is one of the known statuses.
func ValidCommissionStatus(s CommissionStatus) bool {
	switch s {
	case CommissionPending, CommissionApproved, CommissionPaid, CommissionCancelled:
		return true
	}
	return false
}

// Commission is one money-owed record for one user at one level of one
// transaction. Rate is frozen at creation time: later configuration edits
// never alter an existing row's Rate or Amount.
type Commission struct {
	CommissionID  string           `json:"commissionID"`
	UserID        string           `json:"userID"`
	TransactionID string           `json:"transactionID" db:"transaction_id"`
	Level         int              `json:"level"`
	Amount        decimal.Decimal  `json:"amount"`
	Rate          decimal.Decimal  `json:"rate"`
	Status        CommissionStatus `json:"status"`
	PaidAt        *time.Time       `json:"paidAt,omitempty" db:"paid_at"`
	AuditFields
}
