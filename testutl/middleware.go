package testutl

import (
	"bufio"
	"net"
	"net/http"
	"runtime/debug"
	"testing"
	"time"

	"github.com/mscno/givebox/pkg/api"
)

type middlewareFn func(http.Handler) http.Handler

// applyMiddleware wraps h so the first middleware is the outermost one.
func applyMiddleware(h http.Handler, middlewares ...middlewareFn) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack keeps Drop working behind the logger.
func (w *statusWriter) Hijack() (c net.Conn, rw *bufio.ReadWriter, err error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	w.status = 0
	return hj.Hijack()
}

// withRequestLog writes one line per request to the test log.
func withRequestLog(t testing.TB) middlewareFn {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			t.Logf("fakeapi: %s %s %d %s request_id=%s", r.Method, r.URL.Path, sw.status, time.Since(start), r.Header.Get(api.RequestIDHeader))
		})
	}
}

// withRecovery turns a handler panic into a 500 and a test failure.
func withRecovery(t testing.TB) middlewareFn {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					t.Errorf("fakeapi: panic serving %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
