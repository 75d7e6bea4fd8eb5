package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"matchoracle/internal/oracle"
)

type DisputeHandler struct {
	Engine *oracle.Engine
}

func (h *DisputeHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/results")
	group.POST("/:matchId/dispute", h.dispute)
	group.POST("/:matchId/resolve", h.resolve)
	group.POST("/:matchId/finalize", h.finalize)
}

type disputeRequest struct {
	Reason string `json:"reason"`
	// Stake is the attached collateral; it must equal the fixed dispute
	// stake exactly.
	Stake decimal.Decimal `json:"stake"`
}

func (h *DisputeHandler) dispute(c *gin.Context) {
	caller, ok := requireAccount(c)
	if !ok {
		return
	}
	var req disputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	result, err := h.Engine.Dispute(c.Request.Context(), c.Param("matchId"), strings.TrimSpace(req.Reason), req.Stake, caller)
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, result, nil)
}

type resolveRequest struct {
	DisputeValid bool `json:"dispute_valid"`
}

func (h *DisputeHandler) resolve(c *gin.Context) {
	caller, ok := requireAccount(c)
	if !ok {
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	result, outcome, err := h.Engine.Resolve(c.Request.Context(), c.Param("matchId"), req.DisputeValid, caller)
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, result, map[string]any{"resolution": outcome})
}

func (h *DisputeHandler) finalize(c *gin.Context) {
	// Finalization is permissionless; no account required.
	result, err := h.Engine.Finalize(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, result, nil)
}
