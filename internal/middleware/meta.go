package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

// WithResponseMeta attaches a metadata map to the request context and records
// processing time into it once the handler chain finishes.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
		m := meta(c)
		if _, ok := m["processing_time_ms"]; !ok {
			m["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit marks whether the current response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	meta(c)["cache_hit"] = hit
}

// SetProcessingTime records handler processing time so it is visible in the
// response body. The middleware only fills it in after the response is
// written, which covers logging but not the client.
func SetProcessingTime(c *gin.Context, d time.Duration) {
	meta(c)["processing_time_ms"] = d.Milliseconds()
}

// ExtractMeta returns the metadata map for the current request, or nil when
// the middleware is not installed.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if v, exists := c.Get(responseMetaKey); exists {
		if typed, ok := v.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

func meta(c *gin.Context) map[string]interface{} {
	if m := ExtractMeta(c); m != nil {
		return m
	}
	m := make(map[string]interface{})
	c.Set(responseMetaKey, m)
	return m
}
