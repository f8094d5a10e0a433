package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"accounts-api/internal/apperr"
	"accounts-api/internal/i18n"
	"accounts-api/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida JWT access tokens y guarda claims en el contexto.
func JWTAuthMiddleware(logger *zap.Logger, tokenServ *service.TokenService, catalog *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(c, logger, catalog, &apperr.Error{Kind: apperr.KindUnauthorized, MessageKey: "invalid_token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := tokenServ.ParseAccessToken(token)
		if err != nil {
			respondError(c, logger, catalog, &apperr.Error{Kind: apperr.KindUnauthorized, MessageKey: "invalid_token", Err: err})
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
