package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
)

// referralHandler serves downline trees, earnings rollups and tier status.
type referralHandler struct {
	treeService portssvc.ReferralTreeSvcFacade
}

func newReferralHandler(ts portssvc.ReferralTreeSvcFacade) *referralHandler {
	return &referralHandler{treeService: ts}
}

// registerReferralRoutes registers the authenticated referral routes.
func registerReferralRoutes(rg *gin.RouterGroup, treeService portssvc.ReferralTreeSvcFacade) {
	h := newReferralHandler(treeService)

	referrals := rg.Group("/referrals")
	{
		referrals.GET("/tree", h.getTree)
		referrals.GET("/stats", h.getStats)
		referrals.GET("/tier", h.getTier)
		referrals.GET("/dashboard", h.getDashboard)
	}
}

// clickTrackingHandler serves the public short-link redirect.
type clickTrackingHandler struct {
	directory portssvc.ReferralDirectorySvcFacade
}

// registerClickTrackingRoutes registers the public referral click route.
func registerClickTrackingRoutes(r *gin.Engine, directory portssvc.ReferralDirectorySvcFacade) {
	h := &clickTrackingHandler{directory: directory}
	r.GET("/r/:code", h.trackClick)
}

// trackClick godoc
// @Summary Follow a referral link
// @Description Counts the click (best-effort) and redirects to registration with the code attached
// @Tags referrals
// @Param   code path string true "Link code"
// @Success 302 "Redirect to registration"
// @Router /r/{code} [get]
func (h *clickTrackingHandler) trackClick(c *gin.Context) {
	code := c.Param("code")
	// Unknown or inactive codes are a silent no-op; the visitor still lands
	// on the registration page.
	_ = h.directory.TrackClick(c.Request.Context(), code)
	c.Redirect(http.StatusFound, "/register?ref="+url.QueryEscape(code))
}

// getTree godoc
// @Summary Get the logged-in user's referral tree
// @Description Downline expanded breadth-first up to three levels; lookup failures yield an empty tree
// @Tags referrals
// @Produce  json
// @Param   levels query int false "Depth to expand" default(3)
// @Success 200 {object} dto.ReferralTreeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /referrals/tree [get]
func (h *referralHandler) getTree(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	levels, _ := strconv.Atoi(c.DefaultQuery("levels", "3"))

	tree := h.treeService.GetReferralTree(c.Request.Context(), userID, levels)
	c.JSON(http.StatusOK, dto.ToReferralTreeResponse(tree))
}

// getStats godoc
// @Summary Get the logged-in user's commission statistics
// @Tags referrals
// @Produce  json
// @Success 200 {object} dto.CommissionStatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /referrals/stats [get]
func (h *referralHandler) getStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := h.treeService.GetCommissionStats(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute commission stats")
		return
	}
	c.JSON(http.StatusOK, dto.CommissionStatsResponse{Stats: stats})
}

// getTier godoc
// @Summary Get the logged-in user's tier status
// @Description Classifies from total paid earnings and lazily syncs the stored tier
// @Tags referrals
// @Produce  json
// @Success 200 {object} domain.TierStatus
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /referrals/tier [get]
func (h *referralHandler) getTier(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tier, err := h.treeService.GetTierStatus(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute tier status")
		return
	}
	c.JSON(http.StatusOK, tier)
}

// getDashboard godoc
// @Summary Get the combined affiliate dashboard
// @Description One read combining referral tree, earnings rollups and tier status
// @Tags referrals
// @Produce  json
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /referrals/dashboard [get]
func (h *referralHandler) getDashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()
	tree := h.treeService.GetReferralTree(ctx, userID, 3)

	stats, err := h.treeService.GetCommissionStats(ctx, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute commission stats")
		return
	}

	tier, err := h.treeService.GetTierStatus(ctx, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute tier status")
		return
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{
		Tree:  dto.ToReferralTreeResponse(tree),
		Stats: stats,
		Tier:  tier,
	})
}
