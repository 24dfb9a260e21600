package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	requestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 128
	maxCapturedBody    = 4 << 10
)

// errorBody picks the fields worth logging out of an error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// Logging assigns a request id and writes one structured record per request.
// Error responses are decoded so their code and message land in the record.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		captured := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(captured, r)

		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", captured.status),
			slog.Int64("duration_ms", time.Since(started).Milliseconds()),
			slog.String("client_ip", extractClientIP(r)),
		}
		if captured.status >= http.StatusBadRequest {
			attrs = append(attrs, errorAttrs(r, captured.body.Bytes())...)
		}

		slog.LogAttrs(context.Background(), levelForStatus(captured.status), "request", attrs...)
	})
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func errorAttrs(r *http.Request, body []byte) []slog.Attr {
	var attrs []slog.Attr
	if r.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("query", r.URL.RawQuery))
	}

	var parsed errorBody
	if len(body) == 0 || json.Unmarshal(body, &parsed) != nil || parsed.Message == "" {
		return attrs
	}

	attrs = append(attrs,
		slog.String("error_code", parsed.Code),
		slog.String("error_message", parsed.Message),
	)
	if parsed.Details != "" {
		attrs = append(attrs, slog.String("error_details", parsed.Details))
	}
	return attrs
}

// captureWriter records the status and, for error responses only, a bounded
// copy of the body.
type captureWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (cw *captureWriter) WriteHeader(statusCode int) {
	if cw.wroteHeader {
		return
	}
	cw.status = statusCode
	cw.wroteHeader = true
	cw.ResponseWriter.WriteHeader(statusCode)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	if cw.status >= http.StatusBadRequest && cw.body.Len() < maxCapturedBody {
		cw.body.Write(b[:min(len(b), maxCapturedBody-cw.body.Len())])
	}
	return cw.ResponseWriter.Write(b)
}

// Hijack lets the websocket upgrade pass through the logging wrapper.
func (cw *captureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

func (cw *captureWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
