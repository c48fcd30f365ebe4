package middlewares

import (
	"net"
	"net/http"
	"strings"
)

// RateKeyFunc arma la clave de rate limit de un request.
type RateKeyFunc func(r *http.Request) string

// IPPathRateKey separa los contadores por IP y endpoint, sin leer el body:
// register y login no comparten cupo.
func IPPathRateKey(r *http.Request) string {
	return clientIP(r) + "|" + r.URL.Path
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
