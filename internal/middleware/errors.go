package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EntryPath is the page users are sent back to after a failure
const EntryPath = "/"

// RedirectWithFlash stores a danger flash and redirects to the entry form.
// values refill the form fields and may be nil.
func RedirectWithFlash(c *gin.Context, fl *Flasher, logger *zap.Logger, message string, values map[string]string) {
	if err := fl.Set(c, Flash{Category: FlashDanger, Message: message, Values: values}); err != nil {
		logger.Error("failed to set flash",
			zap.String("request_id", GetRequestID(c)),
			zap.Error(err),
		)
	}
	c.Redirect(http.StatusSeeOther, EntryPath)
	c.Abort()
}

// NotFound renders the plain 404 used for unknown routes
func NotFound(c *gin.Context) {
	c.String(http.StatusNotFound, "page introuvable")
}

// Recovery logs panics through zap and answers 500
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", GetRequestID(c)),
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
