package httpkit

import (
	"net/http"
	"strings"
)

// UnknownClientIP is returned when no forwarding header identifies the caller.
const UnknownClientIP = "unknown"

// ClientIP resolves the originating address the way the edge proxy reports it:
// first X-Forwarded-For entry, then X-Real-IP, else "unknown".
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownClientIP
}
