// internal/server/ip.go
package server

import (
	"net"
	"net/http"
	"strings"
)

// The service sits behind an ALB (optionally CloudFront), so RemoteAddr is
// a load balancer, not the client. clientIP walks the AWS forwarding
// headers for the first public address and is used for request logging
// only; it never reaches a stored entry.

func isPublicIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsPrivate() {
		return false
	}
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return false
	}
	return true
}

func safeParseIP(s string) net.IP {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return net.ParseIP(s)
}

// clientIP resolves the requesting client's address, in priority order:
//  1. X-Forwarded-For, first public hop
//  2. CloudFront-Viewer-Address, port stripped
//  3. RemoteAddr
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := safeParseIP(part); isPublicIP(ip) {
				return ip.String()
			}
		}
	}

	if cf := r.Header.Get("CloudFront-Viewer-Address"); cf != "" {
		host := cf
		// strip the trailing :port, IPv6-safe
		if i := strings.LastIndex(cf, ":"); i != -1 {
			host = cf[:i]
		}
		if ip := safeParseIP(host); isPublicIP(ip) {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if ip := safeParseIP(host); isPublicIP(ip) {
			return ip.String()
		}
	}

	return ""
}
