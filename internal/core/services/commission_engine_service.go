package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
)

var (
	ErrAmountNotPositive     = errors.New("transaction amount must be positive")
	ErrCustomerEmailRequired = errors.New("customer email is required")
)

var oneHundred = decimal.NewFromInt(100)

// commissionEngineService is the single authoritative place where money is
// created from a sale.
type commissionEngineService struct {
	txnRepo    portsrepo.TransactionRepositoryFacade
	configRepo portsrepo.CommissionConfigRepositoryFacade
	directory  portssvc.ReferralDirectorySvcFacade
	notifier   portssvc.CommissionNotifier

	// fallbackRates are the environment-supplied per-level defaults
	// (15 / 5 / 2.5 unless overridden), used when neither a level row nor
	// the settings row supplies a rate. This fallback is explicit and
	// documented behavior, not a silent safety net.
	fallbackRates [3]decimal.Decimal
	// fallbackMaxLevels bounds the walk when no settings row exists.
	fallbackMaxLevels int
}

// NewCommissionEngineService creates a new CommissionEngineService. The
// notifier is an explicitly constructed collaborator; pass a no-op
// implementation rather than nil when notifications are unwanted.
func NewCommissionEngineService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	configRepo portsrepo.CommissionConfigRepositoryFacade,
	directory portssvc.ReferralDirectorySvcFacade,
	notifier portssvc.CommissionNotifier,
	fallbackRates [3]decimal.Decimal,
	fallbackMaxLevels int,
) portssvc.CommissionEngineSvcFacade {
	if fallbackMaxLevels < 1 || fallbackMaxLevels > 3 {
		fallbackMaxLevels = 3
	}
	return &commissionEngineService{
		txnRepo:           txnRepo,
		configRepo:        configRepo,
		directory:         directory,
		notifier:          notifier,
		fallbackRates:     fallbackRates,
		fallbackMaxLevels: fallbackMaxLevels,
	}
}

var _ portssvc.CommissionEngineSvcFacade = (*commissionEngineService)(nil)

// RecordTransaction validates the request, resolves attribution, walks the
// upline up to the configured depth and persists the transaction plus all
// commission rows in one atomic unit. Any storage failure rolls back the
// whole unit; the engine itself never retries.
func (s *commissionEngineService) RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// 1. Input validation, before anything is written.
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAmountNotPositive)
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrCustomerEmailRequired)
	}

	txnType := domain.TypePurchase
	if req.TransactionType != nil && *req.TransactionType != "" {
		txnType = domain.TransactionType(*req.TransactionType)
	}

	// 2. Attribution. An unresolved code means an unattributed sale, which
	// is still valid, still recorded and yields zero commissions.
	var attribution *domain.ReferralAttribution
	if req.ReferralCode != nil && *req.ReferralCode != "" {
		var err error
		attribution, err = s.directory.ResolveReferrer(ctx, *req.ReferralCode)
		if err != nil {
			logger.Error("Failed to resolve referral code", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to resolve referral attribution: %w", err)
		}
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		CustomerEmail: req.CustomerEmail,
		Amount:        req.Amount,
		Status:        domain.TransactionCompleted, // forced in this design
		Type:          txnType,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	var attributedLinkID *string
	var commissions []domain.Commission
	if attribution != nil {
		txn.AffiliateLinkID = &attribution.LinkID
		txn.ReferrerID = &attribution.ReferrerID
		attributedLinkID = &attribution.LinkID

		var err error
		commissions, err = s.buildCommissions(ctx, txn, attribution.ReferrerID, creatorUserID, now)
		if err != nil {
			return nil, err
		}
	}

	// 3.-7. Atomic unit: conversion increment, transaction insert and all
	// commission inserts commit or roll back together in the repository.
	if err := s.txnRepo.SaveTransactionWithCommissions(ctx, txn, commissions, attributedLinkID); err != nil {
		logger.Error("Failed to persist transaction with commissions", slog.String("error", err.Error()), slog.String("transaction_id", txn.TransactionID))
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	logger.Info("Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.Int("commission_count", len(commissions)),
		slog.Bool("attributed", attribution != nil),
	)

	if len(commissions) > 0 && s.notifier != nil {
		// Best effort only; a failed notification never unwinds the sale.
		if err := s.notifier.NotifyCommissionsCreated(ctx, txn, commissions); err != nil {
			logger.Warn("Commission notification failed", slog.String("error", err.Error()))
		}
	}

	return &txn, nil
}

// buildCommissions walks the upline starting at the direct referrer and
// produces one commission row per level. The walk is a bounded iterative
// loop carrying an explicit remaining-hops counter: a cyclic upline (A
// refers B, B refers A) terminates after exactly maxLevels rows.
func (s *commissionEngineService) buildCommissions(ctx context.Context, txn domain.Transaction, directReferrerID string, creatorUserID string, now time.Time) ([]domain.Commission, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	settings, levels, err := s.loadRateConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil && !settings.Enabled {
		logger.Info("Commission engine disabled in settings; recording sale without commissions", slog.String("transaction_id", txn.TransactionID))
		return nil, nil
	}

	maxLevels := s.fallbackMaxLevels
	if settings != nil && settings.MaxLevels >= 1 && settings.MaxLevels <= 3 {
		maxLevels = settings.MaxLevels
	}

	commissions := make([]domain.Commission, 0, maxLevels)
	beneficiaryID := directReferrerID
	for level := 1; level <= maxLevels; level++ {
		rate := s.rateForLevel(level, levels, settings)

		// The rate is frozen into the row at creation time. Later
		// configuration edits must never alter this row's rate or amount.
		amount := txn.Amount.Mul(rate).Div(oneHundred).Round(2)
		commissions = append(commissions, domain.Commission{
			CommissionID:  uuid.NewString(),
			UserID:        beneficiaryID,
			TransactionID: txn.TransactionID,
			Level:         level,
			Amount:        amount,
			Rate:          rate,
			// Commissions from completed sales are pre-approved on
			// creation; they do not sit in "pending".
			Status: domain.CommissionApproved,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		})

		if level == maxLevels {
			break
		}
		upline, err := s.directory.GetUpline(ctx, beneficiaryID)
		if err != nil {
			return nil, fmt.Errorf("failed to walk upline at level %d: %w", level, err)
		}
		if upline == nil {
			// Chain ran out before max level; stop silently.
			break
		}
		beneficiaryID = upline.UserID
	}

	return commissions, nil
}

// loadRateConfiguration takes a fresh configuration read. Missing rows are
// tolerated: the engine then falls back to the environment-supplied
// defaults.
func (s *commissionEngineService) loadRateConfiguration(ctx context.Context) (*domain.CommissionSettings, []domain.CommissionLevel, error) {
	settings, err := s.configRepo.FindSettings(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to load commission settings: %w", err)
	}

	levels, err := s.configRepo.FindLevels(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to load commission levels: %w", err)
	}

	return settings, levels, nil
}

// rateForLevel picks the percentage for one level: an active configured
// level row wins, then the settings-row default, then the
// environment-supplied fallback (15 / 5 / 2.5). When auto-adjust is on, the
// chosen rate is clamped into the settings' [min, max] bounds.
func (s *commissionEngineService) rateForLevel(level int, levels []domain.CommissionLevel, settings *domain.CommissionSettings) decimal.Decimal {
	var rate decimal.Decimal
	found := false
	for _, row := range levels {
		if row.Level == level && row.IsActive {
			rate = row.Percentage
			found = true
			break
		}
	}
	if !found && settings != nil {
		if fallback := settings.DefaultRateForLevel(level); fallback.IsPositive() {
			rate = fallback
			found = true
		}
	}
	if !found && level >= 1 && level <= len(s.fallbackRates) {
		rate = s.fallbackRates[level-1]
	}

	if settings != nil && settings.AutoAdjust {
		if rate.LessThan(settings.MinCommission) {
			rate = settings.MinCommission
		}
		if settings.MaxCommission.IsPositive() && rate.GreaterThan(settings.MaxCommission) {
			rate = settings.MaxCommission
		}
	}
	return rate
}

// GetTransactionByID retrieves a recorded transaction.
func (s *commissionEngineService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactionsByReferrer lists transactions attributed to a referrer.
func (s *commissionEngineService) ListTransactionsByReferrer(ctx context.Context, referrerID string, limit int, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	txns, err := s.txnRepo.FindTransactionsByReferrer(ctx, referrerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for referrer %s: %w", referrerID, err)
	}
	return txns, nil
}
