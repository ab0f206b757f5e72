package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/core/services"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock

	// savedTxn/savedCommissions capture the last atomic write for assertions.
	savedTxn         *domain.Transaction
	savedCommissions []domain.Commission
	savedLinkID      *string
}

func (m *MockTransactionRepository) SaveTransactionWithCommissions(ctx context.Context, txn domain.Transaction, commissions []domain.Commission, attributedLinkID *string) error {
	m.savedTxn = &txn
	m.savedCommissions = commissions
	m.savedLinkID = attributedLinkID
	args := m.Called(ctx, txn, commissions, attributedLinkID)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	var txn *domain.Transaction
	if args.Get(0) != nil {
		txn = args.Get(0).(*domain.Transaction)
	}
	return txn, args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionsByReferrer(ctx context.Context, referrerID string, limit int, offset int) ([]domain.Transaction, error) {
	args := m.Called(ctx, referrerID, limit, offset)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	return txns, args.Error(1)
}

// --- Mock CommissionConfigRepository ---
type MockCommissionConfigRepository struct {
	mock.Mock
}

func (m *MockCommissionConfigRepository) FindLevels(ctx context.Context) ([]domain.CommissionLevel, error) {
	args := m.Called(ctx)
	var levels []domain.CommissionLevel
	if args.Get(0) != nil {
		levels = args.Get(0).([]domain.CommissionLevel)
	}
	return levels, args.Error(1)
}

func (m *MockCommissionConfigRepository) FindLevelByID(ctx context.Context, levelID string) (*domain.CommissionLevel, error) {
	args := m.Called(ctx, levelID)
	var level *domain.CommissionLevel
	if args.Get(0) != nil {
		level = args.Get(0).(*domain.CommissionLevel)
	}
	return level, args.Error(1)
}

func (m *MockCommissionConfigRepository) FindSettings(ctx context.Context) (*domain.CommissionSettings, error) {
	args := m.Called(ctx)
	var settings *domain.CommissionSettings
	if args.Get(0) != nil {
		settings = args.Get(0).(*domain.CommissionSettings)
	}
	return settings, args.Error(1)
}

func (m *MockCommissionConfigRepository) UpdateLevel(ctx context.Context, level domain.CommissionLevel) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

func (m *MockCommissionConfigRepository) UpdateSettings(ctx context.Context, settings domain.CommissionSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockCommissionConfigRepository) ResetDefaults(ctx context.Context, levels []domain.CommissionLevel, settings domain.CommissionSettings) error {
	args := m.Called(ctx, levels, settings)
	return args.Error(0)
}

// --- Mock ReferralDirectory ---
type MockReferralDirectory struct {
	mock.Mock
}

func (m *MockReferralDirectory) ResolveReferrer(ctx context.Context, code string) (*domain.ReferralAttribution, error) {
	args := m.Called(ctx, code)
	var attr *domain.ReferralAttribution
	if args.Get(0) != nil {
		attr = args.Get(0).(*domain.ReferralAttribution)
	}
	return attr, args.Error(1)
}

func (m *MockReferralDirectory) GetUpline(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockReferralDirectory) TrackClick(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// --- Mock CommissionNotifier ---
type MockCommissionNotifier struct {
	mock.Mock
}

func (m *MockCommissionNotifier) NotifyCommissionsCreated(ctx context.Context, txn domain.Transaction, commissions []domain.Commission) error {
	args := m.Called(ctx, txn, commissions)
	return args.Error(0)
}

// --- Test Suite ---
type CommissionEngineTestSuite struct {
	suite.Suite
	txnRepo    *MockTransactionRepository
	configRepo *MockCommissionConfigRepository
	directory  *MockReferralDirectory
	notifier   *MockCommissionNotifier
	ctx        context.Context
}

func (s *CommissionEngineTestSuite) SetupTest() {
	s.txnRepo = new(MockTransactionRepository)
	s.configRepo = new(MockCommissionConfigRepository)
	s.directory = new(MockReferralDirectory)
	s.notifier = new(MockCommissionNotifier)
	s.ctx = context.Background()
}

var defaultFallbackRates = [3]decimal.Decimal{
	decimal.NewFromInt(15),
	decimal.NewFromInt(5),
	decimal.RequireFromString("2.5"),
}

func (s *CommissionEngineTestSuite) newEngine() portssvc.CommissionEngineSvcFacade {
	return services.NewCommissionEngineService(s.txnRepo, s.configRepo, s.directory, s.notifier, defaultFallbackRates, 3)
}

// expectNoConfig makes both configuration reads miss so the engine falls
// back to the environment defaults.
func (s *CommissionEngineTestSuite) expectNoConfig() {
	s.configRepo.On("FindSettings", mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.configRepo.On("FindLevels", mock.Anything).Return(nil, apperrors.ErrNotFound)
}

func strPtr(v string) *string { return &v }

func (s *CommissionEngineTestSuite) TestAttributedSaleCreatesThreeLevels() {
	s.expectNoConfig()

	// B referred the customer; A referred B; root referred A.
	attribution := &domain.ReferralAttribution{LinkID: "link-b", ReferrerID: "user-b"}
	s.directory.On("ResolveReferrer", mock.Anything, "BCODE123").Return(attribution, nil)
	s.directory.On("GetUpline", mock.Anything, "user-b").Return(&domain.User{UserID: "user-a"}, nil)
	s.directory.On("GetUpline", mock.Anything, "user-a").Return(&domain.User{UserID: "user-root"}, nil)

	s.txnRepo.On("SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.notifier.On("NotifyCommissionsCreated", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.NewFromInt(100),
		ReferralCode:  strPtr("BCODE123"),
	}

	txn, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().NoError(err)
	s.Require().NotNil(txn)
	s.Equal(domain.TransactionCompleted, txn.Status)
	s.Equal("link-b", *txn.AffiliateLinkID)
	s.Equal("user-b", *txn.ReferrerID)

	s.Require().Len(s.txnRepo.savedCommissions, 3)
	rows := s.txnRepo.savedCommissions

	s.Equal("user-b", rows[0].UserID)
	s.Equal(1, rows[0].Level)
	s.True(rows[0].Amount.Equal(decimal.RequireFromString("15")), "level 1 amount, got %s", rows[0].Amount)

	s.Equal("user-a", rows[1].UserID)
	s.Equal(2, rows[1].Level)
	s.True(rows[1].Amount.Equal(decimal.RequireFromString("5")), "level 2 amount, got %s", rows[1].Amount)

	s.Equal("user-root", rows[2].UserID)
	s.Equal(3, rows[2].Level)
	s.True(rows[2].Amount.Equal(decimal.RequireFromString("2.5")), "level 3 amount, got %s", rows[2].Amount)

	for _, row := range rows {
		s.Equal(domain.CommissionApproved, row.Status)
		s.Equal(txn.TransactionID, row.TransactionID)
		s.Nil(row.PaidAt)
	}

	s.Require().NotNil(s.txnRepo.savedLinkID)
	s.Equal("link-b", *s.txnRepo.savedLinkID)
	s.notifier.AssertNumberOfCalls(s.T(), "NotifyCommissionsCreated", 1)
}

func (s *CommissionEngineTestSuite) TestUnattributedSaleCreatesNoCommissions() {
	s.txnRepo.On("SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.NewFromInt(100),
	}

	txn, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().NoError(err)
	s.Nil(txn.AffiliateLinkID)
	s.Nil(txn.ReferrerID)
	s.Empty(s.txnRepo.savedCommissions)
	s.Nil(s.txnRepo.savedLinkID)
	s.directory.AssertNotCalled(s.T(), "ResolveReferrer", mock.Anything, mock.Anything)
	s.notifier.AssertNotCalled(s.T(), "NotifyCommissionsCreated", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CommissionEngineTestSuite) TestUnresolvableCodeIsSilentlyUnattributed() {
	// Inactive or unknown codes resolve to (nil, nil): the sale records
	// normally with zero commission rows.
	s.directory.On("ResolveReferrer", mock.Anything, "DEADCODE").Return(nil, nil)
	s.txnRepo.On("SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.NewFromInt(50),
		ReferralCode:  strPtr("DEADCODE"),
	}

	txn, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().NoError(err)
	s.Nil(txn.ReferrerID)
	s.Empty(s.txnRepo.savedCommissions)
}

func (s *CommissionEngineTestSuite) TestNegativeAmountRejectedBeforeAnyWrite() {
	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.NewFromInt(-5),
	}

	txn, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().Error(err)
	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.txnRepo.AssertNotCalled(s.T(), "SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *CommissionEngineTestSuite) TestBlankEmailRejected() {
	req := dto.RecordTransactionRequest{
		CustomerEmail: "   ",
		Amount:        decimal.NewFromInt(10),
	}

	_, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.txnRepo.AssertNotCalled(s.T(), "SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *CommissionEngineTestSuite) TestShortChainStopsEarly() {
	s.expectNoConfig()

	attribution := &domain.ReferralAttribution{LinkID: "link-solo", ReferrerID: "user-solo"}
	s.directory.On("ResolveReferrer", mock.Anything, "SOLO1234").Return(attribution, nil)
	// No upline: the walk ends after level 1.
	s.directory.On("GetUpline", mock.Anything, "user-solo").Return(nil, nil)

	s.txnRepo.On("SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.notifier.On("NotifyCommissionsCreated", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.NewFromInt(200),
		ReferralCode:  strPtr("SOLO1234"),
	}

	_, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().NoError(err)
	s.Require().Len(s.txnRepo.savedCommissions, 1)
	s.Equal("user-solo", s.txnRepo.savedCommissions[0].UserID)
	s.True(s.txnRepo.savedCommissions[0].Amount.Equal(decimal.NewFromInt(30)))
}

func (s *CommissionEngineTestSuite) TestCyclicUplineTerminatesAtMaxLevels() {
	s.expectNoConfig()

	// A refers B and B refers A. The walk must still produce exactly three
	// rows: A at level 1, B at level 2, A again at level 3.
	attribution := &domain.ReferralAttribution{LinkID: "link-a", ReferrerID: "user-a"}
	s.directory.On("ResolveReferrer", mock.Anything, "ACODE123").Return(attribution, nil)
	s.directory.On("GetUpline", mock.Anything, "user-a").Return(&domain.User{UserID: "user-b"}, nil)
	s.directory.On("GetUpline", mock.Anything, "user-b").Return(&domain.User{UserID: "user-a"}, nil)

	s.txnRepo.On("SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.notifier.On("NotifyCommissionsCreated", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.NewFromInt(100),
		ReferralCode:  strPtr("ACODE123"),
	}

	_, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().NoError(err)
	s.Require().Len(s.txnRepo.savedCommissions, 3)
	s.Equal("user-a", s.txnRepo.savedCommissions[0].UserID)
	s.Equal("user-b", s.txnRepo.savedCommissions[1].UserID)
	s.Equal("user-a", s.txnRepo.savedCommissions[2].UserID)
}

func (s *CommissionEngineTestSuite) TestConfiguredLevelRowsOverrideDefaults() {
	now := time.Now().UTC()
	s.configRepo.On("FindSettings", mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.configRepo.On("FindLevels", mock.Anything).Return([]domain.CommissionLevel{
		{LevelID: "l1", Level: 1, Percentage: decimal.NewFromInt(20), IsActive: true, AuditFields: domain.AuditFields{CreatedAt: now}},
		{LevelID: "l2", Level: 2, Percentage: decimal.NewFromInt(10), IsActive: true, AuditFields: domain.AuditFields{CreatedAt: now}},
		// Inactive row: level 3 falls through to the 2.5 default.
		{LevelID: "l3", Level: 3, Percentage: decimal.NewFromInt(9), IsActive: false, AuditFields: domain.AuditFields{CreatedAt: now}},
	}, nil)

	attribution := &domain.ReferralAttribution{LinkID: "link-b", ReferrerID: "user-b"}
	s.directory.On("ResolveReferrer", mock.Anything, "BCODE123").Return(attribution, nil)
	s.directory.On("GetUpline", mock.Anything, "user-b").Return(&domain.User{UserID: "user-a"}, nil)
	s.directory.On("GetUpline", mock.Anything, "user-a").Return(&domain.User{UserID: "user-root"}, nil)

	s.txnRepo.On("SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.notifier.On("NotifyCommissionsCreated", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.NewFromInt(100),
		ReferralCode:  strPtr("BCODE123"),
	}

	_, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().NoError(err)
	s.Require().Len(s.txnRepo.savedCommissions, 3)
	s.True(s.txnRepo.savedCommissions[0].Rate.Equal(decimal.NewFromInt(20)))
	s.True(s.txnRepo.savedCommissions[1].Rate.Equal(decimal.NewFromInt(10)))
	s.True(s.txnRepo.savedCommissions[2].Rate.Equal(decimal.RequireFromString("2.5")))
}

func (s *CommissionEngineTestSuite) TestDisabledSettingsRecordSaleWithoutCommissions() {
	settings := &domain.CommissionSettings{SettingID: domain.CommissionSettingsID, Enabled: false, MaxLevels: 3}
	s.configRepo.On("FindSettings", mock.Anything).Return(settings, nil)
	s.configRepo.On("FindLevels", mock.Anything).Return(nil, apperrors.ErrNotFound)

	attribution := &domain.ReferralAttribution{LinkID: "link-b", ReferrerID: "user-b"}
	s.directory.On("ResolveReferrer", mock.Anything, "BCODE123").Return(attribution, nil)

	s.txnRepo.On("SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.NewFromInt(100),
		ReferralCode:  strPtr("BCODE123"),
	}

	txn, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().NoError(err)
	// The sale still attributes to the link; only commission creation is
	// suppressed.
	s.Equal("user-b", *txn.ReferrerID)
	s.Empty(s.txnRepo.savedCommissions)
}

func (s *CommissionEngineTestSuite) TestSettingsMaxLevelsBoundsWalk() {
	settings := &domain.CommissionSettings{
		SettingID:         domain.CommissionSettingsID,
		Enabled:           true,
		MaxLevels:         2,
		DefaultRateLevel1: decimal.NewFromInt(15),
		DefaultRateLevel2: decimal.NewFromInt(5),
	}
	s.configRepo.On("FindSettings", mock.Anything).Return(settings, nil)
	s.configRepo.On("FindLevels", mock.Anything).Return(nil, apperrors.ErrNotFound)

	attribution := &domain.ReferralAttribution{LinkID: "link-b", ReferrerID: "user-b"}
	s.directory.On("ResolveReferrer", mock.Anything, "BCODE123").Return(attribution, nil)
	s.directory.On("GetUpline", mock.Anything, "user-b").Return(&domain.User{UserID: "user-a"}, nil)

	s.txnRepo.On("SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.notifier.On("NotifyCommissionsCreated", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.NewFromInt(100),
		ReferralCode:  strPtr("BCODE123"),
	}

	_, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().NoError(err)
	s.Len(s.txnRepo.savedCommissions, 2)
	// No third hop was ever attempted.
	s.directory.AssertNotCalled(s.T(), "GetUpline", mock.Anything, "user-a")
}

func (s *CommissionEngineTestSuite) TestStorageFailurePropagates() {
	s.expectNoConfig()

	attribution := &domain.ReferralAttribution{LinkID: "link-b", ReferrerID: "user-b"}
	s.directory.On("ResolveReferrer", mock.Anything, "BCODE123").Return(attribution, nil)
	s.directory.On("GetUpline", mock.Anything, mock.Anything).Return(nil, nil)

	s.txnRepo.On("SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.NewFromInt(100),
		ReferralCode:  strPtr("BCODE123"),
	}

	txn, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().Error(err)
	s.Nil(txn)
	s.notifier.AssertNotCalled(s.T(), "NotifyCommissionsCreated", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CommissionEngineTestSuite) TestFractionalAmountRounding() {
	s.expectNoConfig()

	attribution := &domain.ReferralAttribution{LinkID: "link-b", ReferrerID: "user-b"}
	s.directory.On("ResolveReferrer", mock.Anything, "BCODE123").Return(attribution, nil)
	s.directory.On("GetUpline", mock.Anything, "user-b").Return(nil, nil)

	s.txnRepo.On("SaveTransactionWithCommissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.notifier.On("NotifyCommissionsCreated", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// 15% of 33.33 = 4.9995, rounded half-up to 5.00.
	req := dto.RecordTransactionRequest{
		CustomerEmail: "customer@example.com",
		Amount:        decimal.RequireFromString("33.33"),
		ReferralCode:  strPtr("BCODE123"),
	}

	_, err := s.newEngine().RecordTransaction(s.ctx, req, "admin-1")
	s.Require().NoError(err)
	s.Require().Len(s.txnRepo.savedCommissions, 1)
	s.True(s.txnRepo.savedCommissions[0].Amount.Equal(decimal.RequireFromString("5")),
		"got %s", s.txnRepo.savedCommissions[0].Amount)
}

func TestCommissionEngineService(t *testing.T) {
	suite.Run(t, new(CommissionEngineTestSuite))
}
