package services

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/dto"
)

// AuthSvcFacade defines authentication operations used by handlers.
type AuthSvcFacade interface {
	// Login verifies credentials and issues a signed access token.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}
