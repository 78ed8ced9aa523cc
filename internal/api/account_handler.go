package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"gamesense/app/internal/service"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves the account, membership and dashboard endpoints.
type AccountHandler struct {
	accountService   service.AccountService
	dashboardService service.DashboardService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService service.AccountService, dashboardService service.DashboardService) *AccountHandler {
	return &AccountHandler{accountService: accountService, dashboardService: dashboardService}
}

type MembershipRequest struct {
	Membership string `json:"membership" binding:"required"`
}

// GetMe godoc
// @Summary Current account
// @Tags Account
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /me [get]
func (h *AccountHandler) GetMe(c *gin.Context) {
	email, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.accountService.Get(c.Request.Context(), email)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// DeleteMe godoc
// @Summary Delete the account and all its sessions
// @Tags Account
// @Security BearerAuth
// @Success 200 {object} gin.H
// @Router /me [delete]
func (h *AccountHandler) DeleteMe(c *gin.Context) {
	email, ok := currentUser(c)
	if !ok {
		return
	}
	removed, err := h.accountService.Delete(c.Request.Context(), email)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted.", "sessions_removed": removed})
}

// SetMembership godoc
// @Summary Choose a membership tier (display only)
// @Tags Account
// @Security BearerAuth
// @Param tier body MembershipRequest true "Tier title"
// @Success 200 {object} UserResponse
// @Router /me/membership [put]
func (h *AccountHandler) SetMembership(c *gin.Context) {
	email, ok := currentUser(c)
	if !ok {
		return
	}
	var req MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	user, err := h.accountService.SetMembership(c.Request.Context(), email, req.Membership)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// ListTiers godoc
// @Summary Membership tiers with prices and perks
// @Tags Account
// @Success 200 {array} domain.Tier
// @Router /memberships [get]
func (h *AccountHandler) ListTiers(c *gin.Context) {
	c.JSON(http.StatusOK, h.accountService.Tiers())
}

// GetDashboard godoc
// @Summary Session statistics for the current player
// @Tags Dashboard
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Router /dashboard [get]
func (h *AccountHandler) GetDashboard(c *gin.Context) {
	email, ok := currentUser(c)
	if !ok {
		return
	}
	d, err := h.dashboardService.Get(c.Request.Context(), email)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *AccountHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnknownMembership):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: account request: %v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
