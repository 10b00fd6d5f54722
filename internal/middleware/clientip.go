package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the best-effort client address for the request. Forwarded
// entries are only trusted when they parse as an IP, so a garbage header
// cannot smuggle a fake identity past the rate limiter or locale detection.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
