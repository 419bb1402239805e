// Package respond writes error responses in the {"error": "..."} shape used by
// every handler.
package respond

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodorder-api/internal/apperr"
	"foodorder-api/internal/lib/sl"
)

// Error maps err to its HTTP status. Internal errors are logged and replaced
// with a generic message.
func Error(c *gin.Context, log *slog.Logger, op string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("op", op), sl.Err(err))
	}
	c.JSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

// IDParam parses a positive numeric path parameter.
func IDParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return uint(v), nil
}
