/*
Package logx provides a structured logging wrapper based on zerolog.

This file holds the chi middleware that logs one line per HTTP request and
seeds the request context with a request-scoped logger. Client addresses are
truncated before logging so no full IP ever reaches the log stream.
*/
package logx

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// v4Mask keeps the /24 network of an IPv4 address; v6Mask keeps the /64
// prefix of an IPv6 one. Both retain enough to tell clients apart in
// aggregate without storing an identifying address.
var (
	v4Mask = net.CIDRMask(24, 32)
	v6Mask = net.CIDRMask(64, 128)
)

// maskAddr reduces a remote address (host or host:port) to its masked network
// form for logging. Unparseable input collapses to "unknown_ip".
func maskAddr(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}

	ip := net.ParseIP(addr)
	switch {
	case ip == nil:
		return "unknown_ip"
	case ip.IsLoopback():
		return "127.0.0.1"
	case ip.To4() != nil:
		return ip.Mask(v4Mask).String()
	default:
		return ip.Mask(v6Mask).String()
	}
}

// completionEvent picks the log level for a finished request from its status
// code: 5xx logs as error, 4xx as warning, everything else as info.
func completionEvent(logger zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return logger.Error()
	case status >= http.StatusBadRequest:
		return logger.Warn()
	default:
		return logger.Info()
	}
}

// RequestLogger returns chi middleware that attaches a request-scoped logger
// to the context and emits a completion line with status, size, and latency.
func RequestLogger() func(next http.Handler) http.Handler {
	baseLogger := Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := baseLogger.With().
				Str("component", "http").
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("remote_ip", maskAddr(r.RemoteAddr)).
				Str("request_method", r.Method).
				Str("request_uri", r.RequestURI).
				Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))

			completionEvent(logger, ww.Status()).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Msg("Request completed")
		})
	}
}
