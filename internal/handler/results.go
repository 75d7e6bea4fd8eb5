package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"matchoracle/internal/oracle"
	"matchoracle/internal/repository"
)

type ResultHandler struct {
	Engine *oracle.Engine
}

func (h *ResultHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/results")
	group.POST("", h.submitV2)
	group.POST("/legacy", h.submitLegacy)
	group.GET("", h.list)
	group.GET("/count", h.count)
	group.GET("/:matchId", h.get)
	group.GET("/:matchId/legacy", h.getLegacy)
	group.GET("/:matchId/finalized", h.finalized)
	group.GET("/:matchId/checks", h.checks)
	group.GET("/:matchId/payload", h.payload)
	group.GET("/:matchId/outcome", h.outcome)
}

type submitResultV2Request struct {
	MatchID      string   `json:"match_id"`
	GameContract string   `json:"game_contract"`
	Participants []string `json:"participants"`
	Scores       []int64  `json:"scores"`
	// WinnerIndex omitted means "no winner / draw".
	WinnerIndex *int16  `json:"winner_index"`
	DurationSec int64   `json:"duration_sec"`
	SchemaID    *string `json:"schema_id"`
	CustomData  []byte  `json:"custom_data"`
}

func (h *ResultHandler) submitV2(c *gin.Context) {
	submitter, ok := requireAccount(c)
	if !ok {
		return
	}
	var req submitResultV2Request
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}

	participants, err := oracle.PairOutcome(req.Participants, req.Scores)
	if err != nil {
		engineError(c, err, nil)
		return
	}
	winnerIndex := oracle.WinnerNone
	if req.WinnerIndex != nil {
		winnerIndex = *req.WinnerIndex
	}
	if req.SchemaID != nil && strings.TrimSpace(*req.SchemaID) == "" {
		req.SchemaID = nil
	}

	result, checks, err := h.Engine.SubmitV2(c.Request.Context(), oracle.Submission{
		MatchID:      strings.TrimSpace(req.MatchID),
		GameContract: strings.TrimSpace(req.GameContract),
		Participants: participants,
		WinnerIndex:  winnerIndex,
		DurationSec:  req.DurationSec,
		SchemaID:     req.SchemaID,
		CustomData:   req.CustomData,
		Submitter:    submitter,
	})
	if err != nil {
		meta := map[string]any{}
		if checks != nil {
			meta["checks"] = checks
		}
		engineError(c, err, meta)
		return
	}
	Ok(c, result, map[string]any{"checks": checks})
}

type submitLegacyRequest struct {
	MatchID    string `json:"match_id"`
	ResultText string `json:"result_text"`
}

func (h *ResultHandler) submitLegacy(c *gin.Context) {
	submitter, ok := requireAccount(c)
	if !ok {
		return
	}
	var req submitLegacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	result, err := h.Engine.SubmitLegacy(c.Request.Context(), strings.TrimSpace(req.MatchID), req.ResultText, submitter)
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, result, nil)
}

func (h *ResultHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListResultsParams{
		Limit:   limit,
		Offset:  offset,
		OrderBy: "submitted_at",
		Asc:     boolPtr(false),
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		params.Status = &v
	}
	if v := strings.TrimSpace(c.Query("finalized")); v != "" {
		params.Finalized = boolPtr(v == "true" || v == "1")
	}
	items, total, err := h.Engine.ListResults(c.Request.Context(), params)
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *ResultHandler) count(c *gin.Context) {
	total, err := h.Engine.CountResults(c.Request.Context())
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, gin.H{"count": total}, nil)
}

func (h *ResultHandler) get(c *gin.Context) {
	item, err := h.Engine.Result(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, item, nil)
}

func (h *ResultHandler) getLegacy(c *gin.Context) {
	item, err := h.Engine.Legacy(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, item, nil)
}

func (h *ResultHandler) finalized(c *gin.Context) {
	finalized, err := h.Engine.Finalized(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, gin.H{"is_finalized": finalized}, nil)
}

func (h *ResultHandler) checks(c *gin.Context) {
	item, err := h.Engine.Checks(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, item, nil)
}

func (h *ResultHandler) payload(c *gin.Context) {
	item, err := h.Engine.Payload(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, item, nil)
}

func (h *ResultHandler) outcome(c *gin.Context) {
	item, err := h.Engine.ResultOutcome(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		engineError(c, err, nil)
		return
	}
	Ok(c, item, nil)
}
