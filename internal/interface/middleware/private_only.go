package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-user-registration/pkg/response"
)

// PrivateOnly rejects callers outside loopback and private ranges
// (10/8, 172.16/12, 192.168/16, fc00::/7). It reads "real_ip" when RealIP ran first.
func PrivateOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isPrivate(c) {
			response.Error[any](c, http.StatusForbidden, "forbidden", nil)
			return
		}
		c.Next()
	}
}

func isPrivate(c *gin.Context) bool {
	ip := c.GetString("real_ip")
	if ip == "" {
		ip = c.ClientIP()
	}
	parsed := net.ParseIP(ip)
	return parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate())
}
