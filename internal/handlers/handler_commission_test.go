package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
	"github.com/SscSPs/affiliate_commission_app/internal/handlers"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
)

// --- Mock CommissionService ---
type MockCommissionService struct {
	mock.Mock
}

func (m *MockCommissionService) GetCommissionByID(ctx context.Context, commissionID string) (*domain.Commission, error) {
	args := m.Called(ctx, commissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Commission), args.Error(1)
}

func (m *MockCommissionService) ListCommissionsByUser(ctx context.Context, userID string, status *domain.CommissionStatus, limit int, offset int) ([]domain.Commission, error) {
	args := m.Called(ctx, userID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Commission), args.Error(1)
}

func (m *MockCommissionService) UpdateStatus(ctx context.Context, commissionID string, status domain.CommissionStatus, updaterUserID string) (*domain.Commission, error) {
	args := m.Called(ctx, commissionID, status, updaterUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Commission), args.Error(1)
}

func (m *MockCommissionService) BulkUpdateStatus(ctx context.Context, commissionIDs []string, status domain.CommissionStatus, updaterUserID string) error {
	args := m.Called(ctx, commissionIDs, status, updaterUserID)
	return args.Error(0)
}

var _ portssvc.CommissionSvcFacade = (*MockCommissionService)(nil)

// --- Test Suite ---
type CommissionHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockCommissionService *MockCommissionService
	jwtSecret             string
}

func (suite *CommissionHandlerTestSuite) generateTestToken(userID string, role domain.UserRole) string {
	claims := middleware.AuthClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "aca-test",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *CommissionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidations()
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockCommissionService = new(MockCommissionService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterCommissionRoutes(v1, suite.mockCommissionService)
}

func (suite *CommissionHandlerTestSuite) doRequest(method, url string, body []byte, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *CommissionHandlerTestSuite) TestListCommissions_Success() {
	userID := "user-1"
	expected := []domain.Commission{
		{
			CommissionID:  "comm-1",
			UserID:        userID,
			TransactionID: "txn-1",
			Level:         1,
			Amount:        decimal.RequireFromString("15.00"),
			Rate:          decimal.NewFromInt(15),
			Status:        domain.CommissionApproved,
		},
	}
	suite.mockCommissionService.On("ListCommissionsByUser",
		mock.Anything, userID, (*domain.CommissionStatus)(nil), 20, 0,
	).Return(expected, nil).Once()

	token := suite.generateTestToken(userID, domain.RoleAffiliate)
	w := suite.doRequest(http.MethodGet, "/api/v1/commissions", nil, token)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.ListCommissionsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Require().Len(body.Commissions, 1)
	suite.Equal("comm-1", body.Commissions[0].CommissionID)
	suite.Equal("approved", body.Commissions[0].Status)
	suite.mockCommissionService.AssertExpectations(suite.T())
}

func (suite *CommissionHandlerTestSuite) TestListCommissions_RejectsBadStatusFilter() {
	token := suite.generateTestToken("user-1", domain.RoleAffiliate)
	w := suite.doRequest(http.MethodGet, "/api/v1/commissions?status=refunded", nil, token)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCommissionService.AssertNotCalled(suite.T(), "ListCommissionsByUser",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CommissionHandlerTestSuite) TestGetCommission_ForeignRowForbidden() {
	commission := &domain.Commission{CommissionID: "comm-1", UserID: "someone-else"}
	suite.mockCommissionService.On("GetCommissionByID", mock.Anything, "comm-1").Return(commission, nil).Once()

	token := suite.generateTestToken("user-1", domain.RoleAffiliate)
	w := suite.doRequest(http.MethodGet, "/api/v1/commissions/comm-1", nil, token)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *CommissionHandlerTestSuite) TestGetCommission_AdminSeesForeignRow() {
	commission := &domain.Commission{CommissionID: "comm-1", UserID: "someone-else"}
	suite.mockCommissionService.On("GetCommissionByID", mock.Anything, "comm-1").Return(commission, nil).Once()

	token := suite.generateTestToken("admin-1", domain.RoleAdmin)
	w := suite.doRequest(http.MethodGet, "/api/v1/commissions/comm-1", nil, token)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *CommissionHandlerTestSuite) TestUpdateStatus_RequiresAdminRole() {
	token := suite.generateTestToken("user-1", domain.RoleAffiliate)
	body, _ := json.Marshal(dto.UpdateCommissionStatusRequest{Status: "paid"})
	w := suite.doRequest(http.MethodPut, "/api/v1/commissions/comm-1/status", body, token)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockCommissionService.AssertNotCalled(suite.T(), "UpdateStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CommissionHandlerTestSuite) TestUpdateStatus_Success() {
	paidAt := time.Now().UTC()
	updated := &domain.Commission{
		CommissionID: "comm-1",
		UserID:       "user-1",
		Status:       domain.CommissionPaid,
		PaidAt:       &paidAt,
	}
	suite.mockCommissionService.On("UpdateStatus",
		mock.Anything, "comm-1", domain.CommissionPaid, "admin-1",
	).Return(updated, nil).Once()

	token := suite.generateTestToken("admin-1", domain.RoleAdmin)
	body, _ := json.Marshal(dto.UpdateCommissionStatusRequest{Status: "paid"})
	w := suite.doRequest(http.MethodPut, "/api/v1/commissions/comm-1/status", body, token)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.CommissionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("paid", resp.Status)
	suite.NotNil(resp.PaidAt)
	suite.mockCommissionService.AssertExpectations(suite.T())
}

func (suite *CommissionHandlerTestSuite) TestUpdateStatus_InvalidStatusFailsBinding() {
	token := suite.generateTestToken("admin-1", domain.RoleAdmin)
	body := []byte(`{"status":"refunded"}`)
	w := suite.doRequest(http.MethodPut, "/api/v1/commissions/comm-1/status", body, token)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCommissionService.AssertNotCalled(suite.T(), "UpdateStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CommissionHandlerTestSuite) TestBulkUpdateStatus_Success() {
	ids := []string{"comm-1", "comm-2"}
	suite.mockCommissionService.On("BulkUpdateStatus",
		mock.Anything, ids, domain.CommissionApproved, "admin-1",
	).Return(nil).Once()

	token := suite.generateTestToken("admin-1", domain.RoleAdmin)
	body, _ := json.Marshal(dto.BulkUpdateCommissionStatusRequest{CommissionIDs: ids, Status: "approved"})
	w := suite.doRequest(http.MethodPut, "/api/v1/commissions/bulk-status", body, token)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockCommissionService.AssertExpectations(suite.T())
}

func (suite *CommissionHandlerTestSuite) TestBulkUpdateStatus_UnknownIDFailsWholeBatch() {
	ids := []string{"comm-1", "comm-missing"}
	suite.mockCommissionService.On("BulkUpdateStatus",
		mock.Anything, ids, domain.CommissionPaid, "admin-1",
	).Return(fmt.Errorf("commissions missing from batch: %w", apperrors.ErrNotFound)).Once()

	token := suite.generateTestToken("admin-1", domain.RoleAdmin)
	body, _ := json.Marshal(dto.BulkUpdateCommissionStatusRequest{CommissionIDs: ids, Status: "paid"})
	w := suite.doRequest(http.MethodPut, "/api/v1/commissions/bulk-status", body, token)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *CommissionHandlerTestSuite) TestMissingTokenUnauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/commissions", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

// --- Run Test Suite ---
func TestCommissionHandler(t *testing.T) {
	suite.Run(t, new(CommissionHandlerTestSuite))
}
