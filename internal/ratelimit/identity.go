package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP resolves the caller's address for rate-limit keying. When proxy
// headers are trusted it prefers the CDN-supplied IP if public, then scans
// the forwarded-for chain left to right for the first public IP, then
// falls back to the socket peer address.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if cf := r.Header.Get("CF-Connecting-IP"); cf != "" && isPublicIP(cf) {
			return strings.TrimSpace(cf)
		}
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			if ip := firstPublicIP(strings.Split(forwarded, ",")); ip != "" {
				return ip
			}
		}
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}

func firstPublicIP(candidates []string) string {
	for _, raw := range candidates {
		ip := strings.TrimSpace(raw)
		if isPublicIP(ip) {
			return ip
		}
	}
	return ""
}

func isPublicIP(value string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return !(addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsMulticast() || addr.IsUnspecified())
}

// TokenIdentity derives a rate-limit key and a short log prefix from the
// Authorization header. The key is a one-way hash of the full token; the
// raw token is never used as a map key or logged.
func TokenIdentity(authorization string) (key, prefix string, ok bool) {
	if authorization == "" {
		return "", "", false
	}
	parts := strings.Fields(authorization)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", "", false
	}
	token := parts[1]

	sum := sha256.Sum256([]byte(token))
	prefix = token
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return "token:" + hex.EncodeToString(sum[:]), prefix, true
}
