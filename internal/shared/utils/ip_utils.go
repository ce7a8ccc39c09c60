package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ExtractClientIP extracts the real client IP address from the request.
//
// Priority order:
// 1. X-Forwarded-For header (first entry)
// 2. X-Real-IP header (nginx/cloudflare)
// 3. RemoteAddr
func ExtractClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		clientIP := strings.TrimSpace(strings.Split(xff, ",")[0])
		if isValidIP(clientIP) {
			return clientIP
		}
	}

	if xri := strings.TrimSpace(c.GetHeader("X-Real-IP")); xri != "" {
		if isValidIP(xri) {
			return xri
		}
	}

	// RemoteAddr format: "IP:port" or "[IPv6]:port"
	remoteAddr := c.Request.RemoteAddr
	ip, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		ip = remoteAddr
	}
	if isValidIP(ip) {
		return ip
	}

	return "127.0.0.1"
}

func isValidIP(ip string) bool {
	return ip != "" && net.ParseIP(ip) != nil
}
