package domain

import "time"

// UserRole classifies what a user can do in the system.
type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleAffiliate   UserRole = "affiliate"
	RoleClient      UserRole = "client"
	RoleCoordinator UserRole = "coordinator"
)

// User represents an account capable of referring others.
// ReferralCode is globally unique and immutable once assigned.
// ReferrerID is set once at registration from a referral code and never changed.
type User struct {
	UserID        string   `json:"userID"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	PasswordHash  string   `json:"-" db:"password_hash"`
	Role          UserRole `json:"role"`
	ReferralCode  string   `json:"referralCode" db:"referral_code"`
	ReferrerID    *string  `json:"referrerID,omitempty" db:"referrer_id"`
	CoordinatorID *string  `json:"coordinatorID,omitempty" db:"coordinator_id"`
	Tier          Tier     `json:"tier"`
	IsActive      bool     `json:"isActive" db:"is_active"`
	IsVerified    bool     `json:"isVerified" db:"is_verified"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}
