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

// userHandler handles HTTP requests related to users and their links.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{userService: us}
}

// registerUserRoutes registers all user-related routes.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := newUserHandler(userService)

	users := rg.Group("/users")
	{
		users.GET("", middleware.RequireRole(string(domain.RoleAdmin)), h.listUsers)
		users.GET("/:id", h.getUser)       // Own or admin
		users.PUT("/:id", h.updateUser)    // Own or admin
		users.DELETE("/:id", h.deactivateUser)
		users.DELETE("/:id/purge", middleware.RequireRole(string(domain.RoleAdmin)), h.deleteUser)
		users.GET("/:id/links", h.listLinks)
		users.POST("/:id/links", h.createLink)
	}
}

func (h *userHandler) authorizeSelfOrAdmin(c *gin.Context, targetUserID string) (string, bool) {
	loggedInUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	if loggedInUserID == targetUserID {
		return loggedInUserID, true
	}
	if role, ok := middleware.GetUserRoleFromContext(c); ok && role == string(domain.RoleAdmin) {
		return loggedInUserID, true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	return "", false
}

// listUsers godoc
// @Summary List users
// @Description Retrieves a paginated list of users (admin only)
// @Tags users
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListUsersResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /users [get]
func (h *userHandler) listUsers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.userService.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, dto.ListUsersResponse{Users: dto.ToUserResponses(users)})
}

// getUser godoc
// @Summary Get a user by ID
// @Description Retrieves details for a specific user (own account or admin)
// @Tags users
// @Produce  json
// @Param   id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *userHandler) getUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("id")
	if _, ok := h.authorizeSelfOrAdmin(c, userID); !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// updateUser godoc
// @Summary Update a user
// @Description Updates a user's mutable fields; the referral code and upline are immutable
// @Tags users
// @Accept  json
// @Produce  json
// @Param   id path string true "User ID"
// @Param   user body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *userHandler) updateUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("id")
	updaterUserID, ok := h.authorizeSelfOrAdmin(c, userID)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), userID, req, updaterUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// deactivateUser godoc
// @Summary Deactivate a user
// @Description Soft-disables a user account (own account or admin)
// @Tags users
// @Produce  json
// @Param   id path string true "User ID"
// @Success 204 "Deactivated"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *userHandler) deactivateUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("id")
	deleterUserID, ok := h.authorizeSelfOrAdmin(c, userID)
	if !ok {
		return
	}

	if err := h.userService.DeactivateUser(c.Request.Context(), userID, deleterUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to deactivate user")
		return
	}
	logger.Info("User deactivated", slog.String("user_id", userID), slog.String("by", deleterUserID))
	c.Status(http.StatusNoContent)
}

// deleteUser godoc
// @Summary Permanently delete a user
// @Description Hard-deletes a user; links and commissions cascade (admin only)
// @Tags users
// @Produce  json
// @Param   id path string true "User ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /users/{id}/purge [delete]
func (h *userHandler) deleteUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("id")

	if err := h.userService.DeleteUser(c.Request.Context(), userID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete user")
		return
	}
	logger.Info("User deleted", slog.String("user_id", userID))
	c.Status(http.StatusNoContent)
}

// listLinks godoc
// @Summary List a user's affiliate links
// @Description Retrieves all links owned by a user with their counters
// @Tags links
// @Produce  json
// @Param   id path string true "User ID"
// @Success 200 {object} dto.ListAffiliateLinksResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /users/{id}/links [get]
func (h *userHandler) listLinks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("id")
	if _, ok := h.authorizeSelfOrAdmin(c, userID); !ok {
		return
	}

	links, err := h.userService.ListAffiliateLinks(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list links")
		return
	}
	c.JSON(http.StatusOK, dto.ListAffiliateLinksResponse{Links: dto.ToAffiliateLinkResponses(links)})
}

// createLink godoc
// @Summary Create an affiliate link
// @Description Creates a custom-code link for a user; an empty code requests a generated one
// @Tags links
// @Accept  json
// @Produce  json
// @Param   id path string true "User ID"
// @Param   link body dto.CreateAffiliateLinkRequest true "Link details"
// @Success 201 {object} dto.AffiliateLinkResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Code already taken"
// @Security BearerAuth
// @Router /users/{id}/links [post]
func (h *userHandler) createLink(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("id")
	if _, ok := h.authorizeSelfOrAdmin(c, userID); !ok {
		return
	}

	var req dto.CreateAffiliateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	link, err := h.userService.CreateAffiliateLink(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create link")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAffiliateLinkResponse(link))
}
