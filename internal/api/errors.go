package api

import (
	"net/http"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes err using its taxonomy status. Server side failures
// are logged and their details withheld from the client.
func respondError(c *gin.Context, message string, err error) {
	status := apperr.Status(err)
	body := gin.H{
		"error": message,
		"code":  apperr.Code(err),
	}

	if status >= http.StatusInternalServerError {
		util.GetLogger().Error(message,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	} else {
		body["details"] = err.Error()
	}

	c.AbortWithStatusJSON(status, body)
}

// respondBindError reports a request body that failed to decode or validate
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"code":    apperr.Code(apperr.ErrBadRequest),
		"details": err.Error(),
	})
}
