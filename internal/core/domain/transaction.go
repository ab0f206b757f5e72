package domain

import "github.com/shopspring/decimal"

// TransactionStatus tracks the lifecycle of a customer transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
	TransactionRefunded  TransactionStatus = "refunded"
)

// TransactionType classifies the kind of monetary event.
type TransactionType string

const (
	TypePurchase     TransactionType = "purchase"
	TypeSubscription TransactionType = "subscription"
	TypeUpgrade      TransactionType = "upgrade"
)

// Transaction records a completed monetary event from an end customer.
// If ReferrerID is set it equals the owner of AffiliateLinkID at creation
// time; both are resolved once and immutable thereafter.
type Transaction struct {
	TransactionID   string            `json:"transactionID"`
	CustomerEmail   string            `json:"customerEmail" db:"customer_email"`
	Amount          decimal.Decimal   `json:"amount"`
	AffiliateLinkID *string           `json:"affiliateLinkID,omitempty" db:"affiliate_link_id"`
	ReferrerID      *string           `json:"referrerID,omitempty" db:"referrer_id"`
	Status          TransactionStatus `json:"status"`
	Type            TransactionType   `json:"type" db:"transaction_type"`
	AuditFields
}
