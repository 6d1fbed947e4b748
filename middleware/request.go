package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"food-delivery-tracking/statemachine"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	localeKey       = "locale"
)

// RequestID tags each request with the caller's X-Request-ID or a new uuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id RequestID assigned.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger writes one structured line per request.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if actor, ok := ActorFrom(c); ok {
			fields = append(fields, zap.Stringer("actor", actor))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Recovery turns panics into a logged 500.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.String("request_id", GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	})
}

var supportedLocales = []language.Tag{language.English, language.Arabic}

var localeMatcher = language.NewMatcher(supportedLocales)

// Locale picks the response language from the lang query parameter or
// Accept-Language, falling back to def.
func Locale(def statemachine.Locale) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(localeKey, negotiate(c.Query("lang"), c.GetHeader("Accept-Language"), def))
		c.Next()
	}
}

func negotiate(query, header string, def statemachine.Locale) statemachine.Locale {
	var tags []language.Tag
	if query != "" {
		if tag, err := language.Parse(query); err == nil {
			tags = append(tags, tag)
		}
	}
	if header != "" {
		if parsed, _, err := language.ParseAcceptLanguage(header); err == nil {
			tags = append(tags, parsed...)
		}
	}
	if len(tags) == 0 {
		return def
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return def
	}
	base, _ := supportedLocales[idx].Base()
	return statemachine.ParseLocale(base.String())
}

// GetLocale returns the negotiated locale.
func GetLocale(c *gin.Context) statemachine.Locale {
	if v, ok := c.Get(localeKey); ok {
		if l, ok := v.(statemachine.Locale); ok {
			return l
		}
	}
	return statemachine.DefaultLocale
}
