package api

import (
	"bytes"
	"net/http"
	"time"

	"DepreciationRecon/api/constants"
	"DepreciationRecon/api/utils"
	"DepreciationRecon/internal/logger"
)

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	return r.RemoteAddr
}

// auditRequests logs every request with its status, and the error body for
// failed ones.
func auditRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		logger.Auditf("[Gateway] Incoming request: %s %s from %s", r.Method, r.URL.Path, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		if rw.statusCode >= 400 {
			logger.Auditf("[Gateway][ERROR] %s %s, status %d in %s, error: %s",
				r.Method, r.URL.Path, rw.statusCode, time.Since(start), bytes.TrimSpace(rw.body.Bytes()))
		} else {
			logger.Auditf("[Gateway] %s %s, status %d in %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
		}
	})
}

// responseWriter captures the status code, and the body of error responses.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode >= 400 {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithPayload(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, http.StatusNotFound, constants.ErrRouteNotFound)
}

func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
}
