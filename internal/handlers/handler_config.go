package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
)

// commissionConfigHandler handles admin rate configuration.
type commissionConfigHandler struct {
	configService portssvc.CommissionConfigSvcFacade
}

func newCommissionConfigHandler(cs portssvc.CommissionConfigSvcFacade) *commissionConfigHandler {
	return &commissionConfigHandler{configService: cs}
}

// registerCommissionConfigRoutes registers the admin configuration routes.
func registerCommissionConfigRoutes(rg *gin.RouterGroup, configService portssvc.CommissionConfigSvcFacade) {
	h := newCommissionConfigHandler(configService)

	cfg := rg.Group("/commission-config", middleware.RequireRole(string(domain.RoleAdmin)))
	{
		cfg.GET("/levels", h.getLevels)
		cfg.PUT("/levels/:id", h.updateLevel)
		cfg.GET("/settings", h.getSettings)
		cfg.PUT("/settings", h.updateSettings)
		cfg.POST("/reset", h.resetDefaults)
	}
}

// getLevels godoc
// @Summary List per-level commission percentages
// @Tags commission-config
// @Produce  json
// @Success 200 {array} dto.CommissionLevelResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /commission-config/levels [get]
func (h *commissionConfigHandler) getLevels(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	levels, err := h.configService.GetLevels(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list commission levels")
		return
	}
	c.JSON(http.StatusOK, dto.ToCommissionLevelResponses(levels))
}

// updateLevel godoc
// @Summary Update a per-level percentage row
// @Description Partial edit; percentages are validated to [0,100]. Existing commission rows keep their frozen rates.
// @Tags commission-config
// @Accept  json
// @Produce  json
// @Param   id path string true "Level row ID"
// @Param   level body dto.UpdateCommissionLevelRequest true "Fields to update"
// @Success 200 {object} dto.CommissionLevelResponse
// @Failure 400 {object} map[string]string "Invalid percentage"
// @Failure 404 {object} map[string]string "Level not found"
// @Security BearerAuth
// @Router /commission-config/levels/{id} [put]
func (h *commissionConfigHandler) updateLevel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdateCommissionLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	level, err := h.configService.UpdateLevel(c.Request.Context(), c.Param("id"), req, updaterUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update commission level")
		return
	}

	logger.Info("Commission level updated",
		slog.Int("level", level.Level),
		slog.String("percentage", level.Percentage.String()),
	)
	c.JSON(http.StatusOK, dto.ToCommissionLevelResponse(level))
}

// getSettings godoc
// @Summary Get the global commission settings
// @Tags commission-config
// @Produce  json
// @Success 200 {object} dto.CommissionSettingsResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /commission-config/settings [get]
func (h *commissionConfigHandler) getSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	settings, err := h.configService.GetSettings(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve commission settings")
		return
	}
	c.JSON(http.StatusOK, dto.ToCommissionSettingsResponse(settings))
}

// updateSettings godoc
// @Summary Update the global commission settings
// @Description Partial edit of the singleton settings row
// @Tags commission-config
// @Accept  json
// @Produce  json
// @Param   settings body dto.UpdateCommissionSettingsRequest true "Fields to update"
// @Success 200 {object} dto.CommissionSettingsResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /commission-config/settings [put]
func (h *commissionConfigHandler) updateSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdateCommissionSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	settings, err := h.configService.UpdateSettings(c.Request.Context(), req, updaterUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update commission settings")
		return
	}
	c.JSON(http.StatusOK, dto.ToCommissionSettingsResponse(settings))
}

// resetDefaults godoc
// @Summary Reset commission configuration to defaults
// @Description Restores the 15/5/2.5 level rows and default settings in one atomic unit
// @Tags commission-config
// @Produce  json
// @Success 204 "Reset"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /commission-config/reset [post]
func (h *commissionConfigHandler) resetDefaults(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.configService.ResetToDefaults(c.Request.Context(), updaterUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to reset commission configuration")
		return
	}

	logger.Info("Commission configuration reset", slog.String("by", updaterUserID))
	c.Status(http.StatusNoContent)
}
