package handler

import (
	"github.com/gin-gonic/gin"

	"matchoracle/internal/oracle"
)

type RewardHandler struct {
	Engine *oracle.Engine
}

func (h *RewardHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/rewards")
	group.POST("/withdraw", h.withdraw)
	group.GET("/balance", h.balance)
}

// withdraw clears the caller's accrued balance and reports the amount owed;
// the actual value transfer is performed by the calling context against the
// returned amount.
func (h *RewardHandler) withdraw(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	amount, err := h.Engine.Withdraw(c.Request.Context(), account)
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, gin.H{"account": account, "amount": amount}, nil)
}

func (h *RewardHandler) balance(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	amount, err := h.Engine.RewardBalance(c.Request.Context(), account)
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, gin.H{"account": account, "amount": amount}, nil)
}
