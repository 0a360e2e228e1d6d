package api

import (
	"errors"
	"net/http"

	"poap_quiz_backend/internal/service"

	"github.com/gin-gonic/gin"
)

type rewardRoutes struct {
	rs service.RewardServiceI
}

func NewRewardRoutes(handler *gin.RouterGroup, rs service.RewardServiceI) {
	h := &rewardRoutes{rs: rs}

	reward := handler.Group("/reward")
	{
		reward.POST("/claim", h.Claim)
		reward.GET("/verify", h.Verify)
		reward.POST("/confirm", h.Confirm)
	}
}

type claimRequest struct {
	Token         string  `json:"token" binding:"required"`
	WalletAddress string  `json:"wallet_address"`
	Email         *string `json:"email"`
}

type claimResponse struct {
	Success        bool   `json:"success"`
	ClaimCode      string `json:"claim_code,omitempty"`
	ClaimURL       string `json:"claim_url,omitempty"`
	EventID        int64  `json:"event_id,omitempty"`
	Message        string `json:"message,omitempty"`
	AlreadyClaimed bool   `json:"already_claimed,omitempty"`
}

func (h *rewardRoutes) Claim(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.rs.Claim(c.Request.Context(), &service.ClaimRequest{
		Token:         req.Token,
		WalletAddress: req.WalletAddress,
		Email:         req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpiredToken):
			c.JSON(http.StatusUnauthorized, claimResponse{
				Success: false,
				Message: "invalid or expired token",
			})
		case errors.Is(err, service.ErrWalletRequired):
			c.JSON(http.StatusBadRequest, claimResponse{
				Success: false,
				Message: "wallet address is required",
			})
		case errors.Is(err, service.ErrQuizNotPassed):
			c.JSON(http.StatusBadRequest, claimResponse{
				Success: false,
				Message: "quiz score below passing threshold",
			})
		case errors.Is(err, service.ErrProtocolNotFound):
			c.JSON(http.StatusNotFound, claimResponse{
				Success: false,
				Message: "protocol not found",
			})
		case errors.Is(err, service.ErrDropNotConfigured):
			c.JSON(http.StatusNotFound, claimResponse{
				Success: false,
				Message: "no active drop configured for protocol",
			})
		case errors.Is(err, service.ErrAlreadyClaimed):
			c.JSON(http.StatusConflict, claimResponse{
				Success:        false,
				AlreadyClaimed: true,
				Message:        "reward already claimed for this protocol",
			})
		case errors.Is(err, service.ErrCodesExhausted):
			c.JSON(http.StatusConflict, claimResponse{
				Success: false,
				Message: "all reward codes have been claimed",
			})
		default:
			c.JSON(http.StatusInternalServerError, claimResponse{
				Success: false,
				Message: "failed to process claim",
			})
		}
		return
	}

	c.JSON(http.StatusOK, claimResponse{
		Success:   true,
		ClaimCode: result.ClaimCode,
		ClaimURL:  result.ClaimURL,
		EventID:   result.EventID,
	})
}

type verifyResponse struct {
	Claimed bool        `json:"claimed"`
	Claims  []claimView `json:"claims"`
}

func (h *rewardRoutes) Verify(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet is required"})
		return
	}
	protocolID := c.Query("protocol")

	result, err := h.rs.Verify(c.Request.Context(), wallet, protocolID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify claims"})
		return
	}

	c.JSON(http.StatusOK, verifyResponse{
		Claimed: result.Claimed,
		Claims:  toClaimViews(result.Claims),
	})
}

type confirmRequest struct {
	Code          string `json:"code" binding:"required"`
	WalletAddress string `json:"wallet_address"`
}

// Confirm records that a code was actually minted on the external site.
func (h *rewardRoutes) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.rs.ConfirmClaim(c.Request.Context(), req.Code, req.WalletAddress)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "code not found or not assigned"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm claim"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
