package domain

// AffiliateLink is a sharable code bound to one user, used to attribute
// incoming transactions. Click and conversion counters only ever increase;
// both increments happen as atomic SQL adds, never read-modify-write.
type AffiliateLink struct {
	LinkID      string `json:"linkID"`
	UserID      string `json:"userID"`
	LinkCode    string `json:"linkCode" db:"link_code"`
	Clicks      int64  `json:"clicks"`
	Conversions int64  `json:"conversions"`
	IsActive    bool   `json:"isActive" db:"is_active"`
	AuditFields
}

// ReferralAttribution captures the outcome of resolving a referral code:
// the link the sale came through and the account to credit at level 1.
type ReferralAttribution struct {
	LinkID     string
	ReferrerID string
}
