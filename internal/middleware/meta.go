package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storefront-availability-api/pkg/middleware/requestid"
)

const (
	responseMetaKey  = "response_meta"
	requestStartKey  = "request_started_at"
	viewerTimezone   = "viewer_timezone"
	timezoneHeader   = "X-Timezone"
	processingTimeMs = "processing_time_ms"
)

// WithResponseMeta initialises per-request response metadata with the request
// id. Handlers add their own fields and read the map back through ResponseMeta.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		meta := ensureMeta(c)
		if id := requestid.Value(c); id != "" {
			meta["request_id"] = id
		}
		c.Next()
	}
}

// ViewerTimezone copies the X-Timezone header onto the context so handlers can
// fall back to it when no tz query parameter is given.
func ViewerTimezone() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tz := c.GetHeader(timezoneHeader); tz != "" {
			c.Set(viewerTimezone, tz)
		}
		c.Next()
	}
}

// ViewerTimezoneValue returns the zone captured by ViewerTimezone.
func ViewerTimezoneValue(c *gin.Context) string {
	if v, ok := c.Get(viewerTimezone); ok {
		if tz, ok := v.(string); ok {
			return tz
		}
	}
	return ""
}

// SetMeta records one metadata field for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	ensureMeta(c)[key] = value
}

// ResponseMeta returns the metadata map stamped with the elapsed processing time.
func ResponseMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := ensureMeta(c)
	if v, ok := c.Get(requestStartKey); ok {
		if start, ok := v.(time.Time); ok {
			meta[processingTimeMs] = time.Since(start).Milliseconds()
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	newMeta := make(map[string]interface{})
	c.Set(responseMetaKey, newMeta)
	return newMeta
}
