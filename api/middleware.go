package api

import (
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID   = "X-Request-ID"
	headerProcessTime = "X-Process-Time"

	ctxKeyRequestID = "request_id"
)

// requestID honors an inbound X-Request-ID or mints one, and echoes it on
// the response so clients can correlate log lines.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("X-Frame-Options", "DENY")
		header.Set("X-XSS-Protection", "1; mode=block")
		header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// bodySizeLimit rejects oversized requests up front and caps chunked
// bodies that carry no Content-Length.
func bodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				newErrorBody("body_too_large", "request body exceeds the size limit"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", redactSecrets(path),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(ctxKeyRequestID),
		)
	}
}

var secretRE = regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{4,}`)

// redactSecrets masks API-key shaped tokens before a string reaches a log
// line.
func redactSecrets(s string) string {
	return secretRE.ReplaceAllString(s, "sk-***")
}

// processTime reports wall time spent producing the response, in seconds
// with microsecond precision. The header is stamped when the response
// starts writing, since headers are immutable afterwards.
func processTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &processTimeWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Next()
	}
}

type processTimeWriter struct {
	gin.ResponseWriter
	start time.Time
}

func (w *processTimeWriter) stamp() {
	if !w.Written() {
		seconds := time.Since(w.start).Seconds()
		w.Header().Set(headerProcessTime, strconv.FormatFloat(seconds, 'f', 6, 64))
	}
}

func (w *processTimeWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *processTimeWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *processTimeWriter) Write(data []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(data)
}

func (w *processTimeWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}
