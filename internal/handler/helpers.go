package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"matchoracle/internal/oracle"
)

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func boolPtr(v bool) *bool {
	return &v
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasNext := int64(offset+limit) < total
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": hasNext,
	}
}

// reasonTag maps an engine error to the rejection reason exposed to callers.
func reasonTag(err error) string {
	switch {
	case errors.Is(err, oracle.ErrNotFound):
		return "not_found"
	case errors.Is(err, oracle.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, oracle.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, oracle.ErrInvalidShape):
		return "invalid_shape"
	case errors.Is(err, oracle.ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, oracle.ErrStateViolation):
		return "state_violation"
	case errors.Is(err, oracle.ErrValueMismatch):
		return "value_mismatch"
	case errors.Is(err, oracle.ErrEmptyBalance):
		return "empty_balance"
	}
	return "internal"
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, oracle.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, oracle.ErrAlreadyExists),
		errors.Is(err, oracle.ErrStateViolation):
		return http.StatusConflict
	case errors.Is(err, oracle.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, oracle.ErrInvalidShape),
		errors.Is(err, oracle.ErrValueMismatch),
		errors.Is(err, oracle.ErrEmptyBalance):
		return http.StatusBadRequest
	case errors.Is(err, oracle.ErrSchemaViolation):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

// engineError writes the uniform rejection envelope for an engine failure.
func engineError(c *gin.Context, err error, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["reason"] = reasonTag(err)
	Error(c, statusFor(err), err.Error(), meta)
}
