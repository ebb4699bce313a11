// Package requestid tags every request with a correlation ID. The ID is
// echoed back in the response and picked up by the request logger, so a
// single attendance event can be traced across log lines.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the correlation ID on the wire. Clients may supply their
// own; anything non-empty is trusted as-is.
const Header = "X-Request-ID"

const contextKey = "request_id"

// Middleware reuses the inbound X-Request-ID header or mints a fresh UUID.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the correlation ID for the current request, or "" when the
// middleware is not installed.
func Value(c *gin.Context) string {
	v, ok := c.Get(contextKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
