package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
)

// commissionHandler handles commission reads and payout status transitions.
type commissionHandler struct {
	commissionService portssvc.CommissionSvcFacade
}

func newCommissionHandler(cs portssvc.CommissionSvcFacade) *commissionHandler {
	return &commissionHandler{commissionService: cs}
}

// RegisterCommissionRoutes registers all commission-related routes.
func RegisterCommissionRoutes(rg *gin.RouterGroup, commissionService portssvc.CommissionSvcFacade) {
	h := newCommissionHandler(commissionService)

	commissions := rg.Group("/commissions")
	{
		commissions.GET("", h.listCommissions)
		commissions.GET("/:id", h.getCommission)
		commissions.PUT("/:id/status", middleware.RequireRole(string(domain.RoleAdmin)), h.updateStatus)
		commissions.PUT("/bulk-status", middleware.RequireRole(string(domain.RoleAdmin)), h.bulkUpdateStatus)
	}
}

// listCommissions godoc
// @Summary List the logged-in user's commissions
// @Tags commissions
// @Produce  json
// @Param   status query string false "Filter by status" Enums(pending, approved, paid, cancelled)
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListCommissionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /commissions [get]
func (h *commissionHandler) listCommissions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var status *domain.CommissionStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.CommissionStatus(raw)
		if !domain.ValidCommissionStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown commission status: " + raw})
			return
		}
		status = &s
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	commissions, err := h.commissionService.ListCommissionsByUser(c.Request.Context(), userID, status, limit, offset)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list commissions")
		return
	}
	c.JSON(http.StatusOK, dto.ListCommissionsResponse{Commissions: dto.ToCommissionResponses(commissions)})
}

// getCommission godoc
// @Summary Get a commission by ID
// @Tags commissions
// @Produce  json
// @Param   id path string true "Commission ID"
// @Success 200 {object} dto.CommissionResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Commission not found"
// @Security BearerAuth
// @Router /commissions/{id} [get]
func (h *commissionHandler) getCommission(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loggedInUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	commission, err := h.commissionService.GetCommissionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve commission")
		return
	}

	// A beneficiary sees their own rows; admins see everything.
	role, _ := middleware.GetUserRoleFromContext(c)
	if commission.UserID != loggedInUserID && role != string(domain.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	c.JSON(http.StatusOK, dto.ToCommissionResponse(commission))
}

// updateStatus godoc
// @Summary Update a commission's status
// @Description Transitions one commission; paid_at is set on entry to paid and cleared otherwise (admin only)
// @Tags commissions
// @Accept  json
// @Produce  json
// @Param   id path string true "Commission ID"
// @Param   status body dto.UpdateCommissionStatusRequest true "New status"
// @Success 200 {object} dto.CommissionResponse
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Commission not found"
// @Security BearerAuth
// @Router /commissions/{id}/status [put]
func (h *commissionHandler) updateStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdateCommissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	commission, err := h.commissionService.UpdateStatus(c.Request.Context(), c.Param("id"), domain.CommissionStatus(req.Status), updaterUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update commission status")
		return
	}

	logger.Info("Commission status updated",
		slog.String("commission_id", commission.CommissionID),
		slog.String("status", string(commission.Status)),
	)
	c.JSON(http.StatusOK, dto.ToCommissionResponse(commission))
}

// bulkUpdateStatus godoc
// @Summary Update many commissions' status at once
// @Description Applies one status to the whole set atomically; any unknown id fails the batch (admin only)
// @Tags commissions
// @Accept  json
// @Produce  json
// @Param   batch body dto.BulkUpdateCommissionStatusRequest true "Commission ids and new status"
// @Success 204 "Updated"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "One or more commissions not found"
// @Security BearerAuth
// @Router /commissions/bulk-status [put]
func (h *commissionHandler) bulkUpdateStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.BulkUpdateCommissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	err := h.commissionService.BulkUpdateStatus(c.Request.Context(), req.CommissionIDs, domain.CommissionStatus(req.Status), updaterUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to bulk update commissions")
		return
	}

	logger.Info("Commissions bulk updated",
		slog.Int("count", len(req.CommissionIDs)),
		slog.String("status", req.Status),
	)
	c.Status(http.StatusNoContent)
}
