package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/core/services"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
)

// --- Mock AffiliateLinkRepository ---
type MockAffiliateLinkRepository struct {
	mock.Mock
}

func (m *MockAffiliateLinkRepository) FindLinkByID(ctx context.Context, linkID string) (*domain.AffiliateLink, error) {
	args := m.Called(ctx, linkID)
	var link *domain.AffiliateLink
	if args.Get(0) != nil {
		link = args.Get(0).(*domain.AffiliateLink)
	}
	return link, args.Error(1)
}

func (m *MockAffiliateLinkRepository) FindLinkByCode(ctx context.Context, code string) (*domain.AffiliateLink, error) {
	args := m.Called(ctx, code)
	var link *domain.AffiliateLink
	if args.Get(0) != nil {
		link = args.Get(0).(*domain.AffiliateLink)
	}
	return link, args.Error(1)
}

func (m *MockAffiliateLinkRepository) FindLinksByUserID(ctx context.Context, userID string) ([]domain.AffiliateLink, error) {
	args := m.Called(ctx, userID)
	var links []domain.AffiliateLink
	if args.Get(0) != nil {
		links = args.Get(0).([]domain.AffiliateLink)
	}
	return links, args.Error(1)
}

func (m *MockAffiliateLinkRepository) SaveLink(ctx context.Context, link domain.AffiliateLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockAffiliateLinkRepository) IncrementClicks(ctx context.Context, linkID string) error {
	args := m.Called(ctx, linkID)
	return args.Error(0)
}

// --- Test Suite ---
type UserServiceTestSuite struct {
	suite.Suite
	userRepo *MockUserRepository
	linkRepo *MockAffiliateLinkRepository
	service  portssvc.UserSvcFacade
	ctx      context.Context
}

func (s *UserServiceTestSuite) SetupTest() {
	s.userRepo = new(MockUserRepository)
	s.linkRepo = new(MockAffiliateLinkRepository)
	s.service = services.NewUserService(s.userRepo, s.linkRepo)
	s.ctx = context.Background()
}

func (s *UserServiceTestSuite) TestRegisterAffiliateCreatesDefaultLink() {
	s.userRepo.On("FindUserByEmail", mock.Anything, "new@example.com").Return(nil, apperrors.ErrNotFound)
	// All drawn codes are free.
	s.userRepo.On("FindUserByReferralCode", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)

	var savedUser domain.User
	var savedLink *domain.AffiliateLink
	s.userRepo.On("SaveUserWithLink", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedUser = args.Get(1).(domain.User)
			if args.Get(2) != nil {
				savedLink = args.Get(2).(*domain.AffiliateLink)
			}
		}).
		Return(nil)

	req := dto.RegisterUserRequest{
		Email:    "new@example.com",
		Name:     "New User",
		Password: "s3cret-pass",
	}

	user, err := s.service.RegisterUser(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(domain.RoleAffiliate, user.Role)
	s.Equal(domain.TierBronze, user.Tier)
	s.True(user.IsActive)
	s.Len(user.ReferralCode, 8)
	s.Nil(user.ReferrerID)

	// Password is stored hashed, never verbatim.
	s.NotEqual(req.Password, savedUser.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(savedUser.PasswordHash), []byte(req.Password)))

	// The default link carries the user's own referral code.
	s.Require().NotNil(savedLink)
	s.Equal(user.ReferralCode, savedLink.LinkCode)
	s.Equal(user.UserID, savedLink.UserID)
	s.True(savedLink.IsActive)
}

func (s *UserServiceTestSuite) TestRegisterClientGetsNoLink() {
	s.userRepo.On("FindUserByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.userRepo.On("FindUserByReferralCode", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)

	var savedLinkWasNil bool
	s.userRepo.On("SaveUserWithLink", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedLinkWasNil = args.Get(2) == nil || args.Get(2).(*domain.AffiliateLink) == nil
		}).
		Return(nil)

	req := dto.RegisterUserRequest{
		Email:    "client@example.com",
		Name:     "Client",
		Password: "s3cret-pass",
		Role:     "client",
	}

	user, err := s.service.RegisterUser(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(domain.RoleClient, user.Role)
	s.True(savedLinkWasNil)
}

func (s *UserServiceTestSuite) TestRegisterBindsUplineFromCode() {
	referrer := &domain.User{UserID: "user-ref", IsActive: true, ReferralCode: "REFCODE1"}
	s.userRepo.On("FindUserByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.userRepo.On("FindUserByReferralCode", mock.Anything, "REFCODE1").Return(referrer, nil)
	s.userRepo.On("FindUserByReferralCode", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.userRepo.On("SaveUserWithLink", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	code := "REFCODE1"
	req := dto.RegisterUserRequest{
		Email:        "ref@example.com",
		Name:         "Referred",
		Password:     "s3cret-pass",
		ReferralCode: &code,
	}

	user, err := s.service.RegisterUser(s.ctx, req)
	s.Require().NoError(err)
	s.Require().NotNil(user.ReferrerID)
	s.Equal("user-ref", *user.ReferrerID)
}

func (s *UserServiceTestSuite) TestRegisterWithUnknownCodeProceedsWithoutUpline() {
	s.userRepo.On("FindUserByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.userRepo.On("FindUserByReferralCode", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.userRepo.On("SaveUserWithLink", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	code := "NOPE9999"
	req := dto.RegisterUserRequest{
		Email:        "noup@example.com",
		Name:         "No Upline",
		Password:     "s3cret-pass",
		ReferralCode: &code,
	}

	user, err := s.service.RegisterUser(s.ctx, req)
	s.Require().NoError(err)
	s.Nil(user.ReferrerID)
}

func (s *UserServiceTestSuite) TestRegisterWithInactiveReferrerProceedsWithoutUpline() {
	referrer := &domain.User{UserID: "user-ref", IsActive: false, ReferralCode: "REFCODE1"}
	s.userRepo.On("FindUserByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.userRepo.On("FindUserByReferralCode", mock.Anything, "REFCODE1").Return(referrer, nil)
	s.userRepo.On("FindUserByReferralCode", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.userRepo.On("SaveUserWithLink", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	code := "REFCODE1"
	req := dto.RegisterUserRequest{
		Email:        "inact@example.com",
		Name:         "Inactive Upline",
		Password:     "s3cret-pass",
		ReferralCode: &code,
	}

	user, err := s.service.RegisterUser(s.ctx, req)
	s.Require().NoError(err)
	s.Nil(user.ReferrerID)
}

func (s *UserServiceTestSuite) TestRegisterDuplicateEmailRejected() {
	existing := &domain.User{UserID: "user-existing", Email: "dup@example.com"}
	s.userRepo.On("FindUserByEmail", mock.Anything, "dup@example.com").Return(existing, nil)

	req := dto.RegisterUserRequest{
		Email:    "dup@example.com",
		Name:     "Dup",
		Password: "s3cret-pass",
	}

	_, err := s.service.RegisterUser(s.ctx, req)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.userRepo.AssertNotCalled(s.T(), "SaveUserWithLink", mock.Anything, mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestReferralCodeCollisionRetries() {
	s.userRepo.On("FindUserByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)

	// First draw collides, second draw is free.
	taken := &domain.User{UserID: "user-x"}
	s.userRepo.On("FindUserByReferralCode", mock.Anything, mock.Anything).Return(taken, nil).Once()
	s.userRepo.On("FindUserByReferralCode", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound).Once()
	s.userRepo.On("SaveUserWithLink", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := dto.RegisterUserRequest{
		Email:    "retry@example.com",
		Name:     "Retry",
		Password: "s3cret-pass",
	}

	user, err := s.service.RegisterUser(s.ctx, req)
	s.Require().NoError(err)
	s.Len(user.ReferralCode, 8)
	s.userRepo.AssertNumberOfCalls(s.T(), "FindUserByReferralCode", 2)
}

func (s *UserServiceTestSuite) TestUpdateUserLeavesReferralFieldsAlone() {
	referrerID := "user-ref"
	existing := &domain.User{
		UserID:       "user-1",
		Name:         "Old Name",
		ReferralCode: "KEEPCODE",
		ReferrerID:   &referrerID,
		IsActive:     true,
	}
	s.userRepo.On("FindUserByID", mock.Anything, "user-1").Return(existing, nil)

	var saved domain.User
	s.userRepo.On("UpdateUser", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.User) }).
		Return(nil)

	name := "New Name"
	updated, err := s.service.UpdateUser(s.ctx, "user-1", dto.UpdateUserRequest{Name: &name}, "admin-1")
	s.Require().NoError(err)
	s.Equal("New Name", updated.Name)
	s.Equal("KEEPCODE", saved.ReferralCode)
	s.Equal(&referrerID, saved.ReferrerID)
	s.Equal("admin-1", saved.LastUpdatedBy)
}

func (s *UserServiceTestSuite) TestCreateAffiliateLinkForInactiveUserRejected() {
	s.userRepo.On("FindUserByID", mock.Anything, "user-1").Return(&domain.User{UserID: "user-1", IsActive: false}, nil)

	_, err := s.service.CreateAffiliateLink(s.ctx, "user-1", dto.CreateAffiliateLinkRequest{})
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.linkRepo.AssertNotCalled(s.T(), "SaveLink", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestCreateAffiliateLinkDuplicateCodeSurfaces() {
	s.userRepo.On("FindUserByID", mock.Anything, "user-1").Return(&domain.User{UserID: "user-1", IsActive: true}, nil)
	s.linkRepo.On("SaveLink", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate)

	code := "TAKEN123"
	_, err := s.service.CreateAffiliateLink(s.ctx, "user-1", dto.CreateAffiliateLinkRequest{LinkCode: &code})
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *UserServiceTestSuite) TestCreateAffiliateLinkWithCustomCode() {
	s.userRepo.On("FindUserByID", mock.Anything, "user-1").Return(&domain.User{UserID: "user-1", IsActive: true}, nil)

	var saved domain.AffiliateLink
	s.linkRepo.On("SaveLink", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.AffiliateLink) }).
		Return(nil)

	code := "SUMMER25"
	link, err := s.service.CreateAffiliateLink(s.ctx, "user-1", dto.CreateAffiliateLinkRequest{LinkCode: &code})
	s.Require().NoError(err)
	s.Equal("SUMMER25", link.LinkCode)
	s.Equal("SUMMER25", saved.LinkCode)
	s.True(saved.IsActive)
	s.Zero(saved.Clicks)
	s.Zero(saved.Conversions)
}

func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
