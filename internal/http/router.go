package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"accounts-api/internal/apperr"
	"accounts-api/internal/config"
	"accounts-api/internal/i18n"
	"accounts-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	cfg *config.Config,
	catalog *i18n.Catalog,
	accountH *AccountHandler,
	tokenServ *service.TokenService,
	pinger func(context.Context) error,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, CORS y locale.
	r.Use(
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		corsMiddleware(cfg.CORSOrigins),
		localeMiddleware(catalog),
	)

	// Los assets estaticos quedan fuera del middleware de content-type:
	// ServeContent solo deduce el MIME cuando el header no esta seteado.
	if cfg.StaticDir != "" {
		r.Static("/public", cfg.StaticDir)
	}

	api := r.Group("/", jsonContentTypeMiddleware())

	api.POST("/accounts", accountH.CreateAccount)

	sessions := api.Group("/sessions")
	sessions.POST("", accountH.CreateSession)
	sessions.POST("/refresh", accountH.RefreshSession)
	sessions.DELETE("", accountH.DeleteSession)

	me := api.Group("/accounts/me")
	me.Use(JWTAuthMiddleware(logger, tokenServ, catalog))
	me.GET("", accountH.CurrentAccount)

	api.GET("/health", healthHandler(pinger))

	// Rutas no registradas pasan por el mismo envelope de error.
	r.NoRoute(func(c *gin.Context) {
		respondError(c, logger, catalog, apperr.NotFound(errors.New("route not matched")))
	})

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// localeMiddleware negocia el locale de la peticion y lo deja en contexto.
func localeMiddleware(catalog *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(localeKey, catalog.Match(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// corsMiddleware arma la politica CORS desde configuracion; sin origenes
// configurados se permite cualquiera.
func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}

// healthHandler reporta vida del proceso y alcance del almacenamiento.
func healthHandler(pinger func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbState := "disabled"
		if pinger != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := pinger(ctx); err != nil {
				dbState = "unavailable"
			} else {
				dbState = "ok"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": dbState})
	}
}
