package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"accounts-api/internal/apperr"
	"accounts-api/internal/i18n"
)

const localeKey = "locale"

// errorEnvelope es la forma uniforme de toda respuesta de error.
type errorEnvelope struct {
	Error     string              `json:"error"`
	ErrorCode string              `json:"error_code"`
	Errors    []apperr.FieldError `json:"errors,omitempty"`
}

// respondError clasifica el error exactamente una vez y emite el
// envelope; el error original se registra despues de responder.
func respondError(c *gin.Context, logger *zap.Logger, catalog *i18n.Catalog, err error) {
	locale := localeFrom(c, catalog)

	var tagged *apperr.Error
	if !errors.As(err, &tagged) {
		tagged = apperr.Internal(err)
	}

	var status int
	var code, defaultKey string
	switch tagged.Kind {
	case apperr.KindValidation:
		status, code, defaultKey = http.StatusUnprocessableEntity, "validation_failed", "validation_failed"
	case apperr.KindNotFound:
		status, code, defaultKey = http.StatusNotFound, "not_found", "not_found"
	case apperr.KindUnauthorized:
		status, code, defaultKey = http.StatusUnauthorized, "unauthorized", "invalid_credentials"
	case apperr.KindRateLimited:
		status, code, defaultKey = http.StatusTooManyRequests, "too_many_requests", "too_many_requests"
	case apperr.KindUnavailable:
		status, code, defaultKey = http.StatusServiceUnavailable, "temporarily_unavailable", "temporarily_unavailable"
	default:
		status, code, defaultKey = http.StatusInternalServerError, "server_error", "server_error"
	}

	messageKey := tagged.MessageKey
	if messageKey == "" {
		messageKey = defaultKey
	}
	message := catalog.Resolve(locale, messageKey)

	fields := make([]apperr.FieldError, len(tagged.Fields))
	for i, f := range tagged.Fields {
		if f.Msg == "" {
			f.Msg = message
		}
		fields[i] = f
	}

	c.JSON(status, errorEnvelope{
		Error:     message,
		ErrorCode: code,
		Errors:    fields,
	})

	switch tagged.Kind {
	case apperr.KindUnavailable:
		logger.Warn("storage unavailable", zap.Error(err))
	case apperr.KindInternal:
		logger.Error("unhandled error", zap.Error(err))
	}
}

// localeFrom recupera el locale negociado por el middleware.
func localeFrom(c *gin.Context, catalog *i18n.Catalog) string {
	if v, ok := c.Get(localeKey); ok {
		if locale, ok := v.(string); ok && locale != "" {
			return locale
		}
	}
	return catalog.DefaultLocale()
}
