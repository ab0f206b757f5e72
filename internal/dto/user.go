package dto

import (
	"time"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
)

// RegisterUserRequest defines the payload to register a new user. The
// referral code, when present, binds the new account's upline once.
type RegisterUserRequest struct {
	Email        string  `json:"email" binding:"required,email"`
	Name         string  `json:"name" binding:"required"`
	Password     string  `json:"password" binding:"required,min=8"`
	Role         string  `json:"role" binding:"omitempty,oneof=admin affiliate client coordinator"`
	ReferralCode *string `json:"referralCode,omitempty"`
}

// UpdateUserRequest defines the updatable user fields. The referral code and
// upline reference are immutable and deliberately absent.
type UpdateUserRequest struct {
	Name       *string `json:"name,omitempty"`
	IsActive   *bool   `json:"isActive,omitempty"`
	IsVerified *bool   `json:"isVerified,omitempty"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID       string    `json:"userID"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	ReferralCode string    `json:"referralCode"`
	ReferrerID   *string   `json:"referrerID,omitempty"`
	Tier         string    `json:"tier"`
	IsActive     bool      `json:"isActive"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ListUsersResponse wraps a page of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToUserResponse converts a domain.User to UserResponse DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:       u.UserID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         string(u.Role),
		ReferralCode: u.ReferralCode,
		ReferrerID:   u.ReferrerID,
		Tier:         string(u.Tier),
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
	}
}

// ToUserResponses converts a slice of domain.User to []UserResponse.
func ToUserResponses(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses
}
