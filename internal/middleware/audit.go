package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit logs successful operator actions such as cache invalidation. Failed
// requests are already reported by the request logger.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Time("at", start),
		}
		for _, p := range c.Params {
			fields = append(fields, zap.String("param_"+p.Key, p.Value))
		}
		if claims := Claims(c); claims != nil {
			fields = append(fields, zap.String("operator_id", claims.UserID), zap.String("role", string(claims.Role)))
		}
		logger.Info("operator action", fields...)
	}
}
