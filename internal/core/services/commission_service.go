package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
)

// commissionService handles commission lifecycle transitions. The engine
// creates rows; this service only ever changes their status.
type commissionService struct {
	commissionRepo portsrepo.CommissionRepositoryFacade
}

// NewCommissionService creates a new CommissionService.
func NewCommissionService(commissionRepo portsrepo.CommissionRepositoryFacade) portssvc.CommissionSvcFacade {
	return &commissionService{commissionRepo: commissionRepo}
}

var _ portssvc.CommissionSvcFacade = (*commissionService)(nil)

// GetCommissionByID retrieves one commission row.
func (s *commissionService) GetCommissionByID(ctx context.Context, commissionID string) (*domain.Commission, error) {
	commission, err := s.commissionRepo.FindCommissionByID(ctx, commissionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find commission", slog.String("commission_id", commissionID), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to find commission %s: %w", commissionID, err)
	}
	return commission, nil
}

// ListCommissionsByUser lists a user's commissions, optionally filtered by
// status, newest first.
func (s *commissionService) ListCommissionsByUser(ctx context.Context, userID string, status *domain.CommissionStatus, limit int, offset int) ([]domain.Commission, error) {
	if status != nil && !domain.ValidCommissionStatus(*status) {
		return nil, fmt.Errorf("%w: unknown commission status %q", apperrors.ErrValidation, *status)
	}
	if limit <= 0 {
		limit = 20
	}
	commissions, err := s.commissionRepo.FindCommissionsByUser(ctx, userID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list commissions for user %s: %w", userID, err)
	}
	return commissions, nil
}

// paidAtFor returns the paid timestamp for a target status: set on the
// transition to paid, nil (cleared) on any transition away from paid.
func paidAtFor(status domain.CommissionStatus, now time.Time) *time.Time {
	if status == domain.CommissionPaid {
		return &now
	}
	return nil
}

// UpdateStatus transitions one commission and maintains paid_at semantics.
func (s *commissionService) UpdateStatus(ctx context.Context, commissionID string, status domain.CommissionStatus, updaterUserID string) (*domain.Commission, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !domain.ValidCommissionStatus(status) {
		return nil, fmt.Errorf("%w: unknown commission status %q", apperrors.ErrValidation, status)
	}

	commission, err := s.commissionRepo.FindCommissionByID(ctx, commissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find commission %s: %w", commissionID, err)
	}

	now := time.Now().UTC()
	paidAt := paidAtFor(status, now)

	if err := s.commissionRepo.UpdateCommissionStatus(ctx, commissionID, status, paidAt, updaterUserID, now); err != nil {
		logger.Error("Failed to update commission status", slog.String("commission_id", commissionID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update commission status: %w", err)
	}

	commission.Status = status
	commission.PaidAt = paidAt
	commission.LastUpdatedAt = now
	commission.LastUpdatedBy = updaterUserID

	logger.Info("Commission status updated", slog.String("commission_id", commissionID), slog.String("status", string(status)))
	return commission, nil
}

// BulkUpdateStatus applies one status change to exactly the given set of
// commissions in one atomic unit. Partial application is disallowed: on any
// failure the whole batch rolls back in the repository.
func (s *commissionService) BulkUpdateStatus(ctx context.Context, commissionIDs []string, status domain.CommissionStatus, updaterUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(commissionIDs) == 0 {
		return fmt.Errorf("%w: commission id list must not be empty", apperrors.ErrValidation)
	}
	if !domain.ValidCommissionStatus(status) {
		return fmt.Errorf("%w: unknown commission status %q", apperrors.ErrValidation, status)
	}

	now := time.Now().UTC()
	paidAt := paidAtFor(status, now)

	if err := s.commissionRepo.UpdateCommissionStatusBulk(ctx, commissionIDs, status, paidAt, updaterUserID, now); err != nil {
		logger.Error("Bulk commission status update failed", slog.Int("count", len(commissionIDs)), slog.String("error", err.Error()))
		return fmt.Errorf("failed to bulk update commission status: %w", err)
	}

	logger.Info("Bulk commission status update applied", slog.Int("count", len(commissionIDs)), slog.String("status", string(status)))
	return nil
}
