package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"accounts-api/internal/apperr"
	"accounts-api/internal/i18n"
	"accounts-api/internal/service"
	"accounts-api/internal/validate"
)

// AccountHandler mantiene dependencias para los endpoints de cuentas.
type AccountHandler struct {
	logger    *zap.Logger
	regServ   *service.RegistrationService
	tokenServ *service.TokenService
	limiter   service.SignupRateLimiter
	catalog   *i18n.Catalog
	schema    validate.Schema
}

// NewAccountHandler crea una instancia de AccountHandler con las
// dependencias necesarias.
func NewAccountHandler(
	logger *zap.Logger,
	regServ *service.RegistrationService,
	tokenServ *service.TokenService,
	limiter service.SignupRateLimiter,
	catalog *i18n.Catalog,
) *AccountHandler {
	return &AccountHandler{
		logger:    logger,
		regServ:   regServ,
		tokenServ: tokenServ,
		limiter:   limiter,
		catalog:   catalog,
		schema:    registrationSchema(),
	}
}

// registrationSchema es el esquema declarativo del payload de registro.
// Por campo se evalua en orden y se reporta la primera regla violada.
func registrationSchema() validate.Schema {
	return validate.Schema{Fields: []validate.Field{
		{Name: "first_name", Rules: []validate.Rule{validate.Required()}},
		{Name: "contact_phone", Rules: []validate.Rule{validate.Required(), validate.Digits()}},
		{Name: "email", Rules: []validate.Rule{validate.Required(), validate.Email()}},
		{Name: "password", Rules: []validate.Rule{validate.Required()}},
		{Name: "cnf_password", Rules: []validate.Rule{validate.Required(), validate.EqualsField("password", "password_mismatch")}},
	}}
}

type registerRequest struct {
	FirstName    string `json:"first_name" form:"first_name"`
	LastName     string `json:"last_name" form:"last_name"`
	ContactPhone string `json:"contact_phone" form:"contact_phone"`
	Email        string `json:"email" form:"email"`
	Password     string `json:"password" form:"password"`
	CnfPassword  string `json:"cnf_password" form:"cnf_password"`
}

// CreateAccount maneja POST /accounts.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.Request.Context(), c.ClientIP()) {
		respondError(c, h.logger, h.catalog, apperr.RateLimited())
		return
	}

	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		respondError(c, h.logger, h.catalog, apperr.Validation())
		return
	}

	locale := localeFrom(c, h.catalog)
	values := map[string]string{
		"first_name":    req.FirstName,
		"last_name":     req.LastName,
		"contact_phone": req.ContactPhone,
		"email":         req.Email,
		"password":      req.Password,
		"cnf_password":  req.CnfPassword,
	}
	if failures := h.schema.Evaluate(values, locale, h.catalog); len(failures) > 0 {
		respondError(c, h.logger, h.catalog, apperr.Validation(failures...))
		return
	}

	account, profile, err := h.regServ.Register(c.Request.Context(), service.RegisterInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ContactPhone: req.ContactPhone,
		Email:        req.Email,
		Password:     req.Password,
	}, locale)
	if err != nil {
		respondError(c, h.logger, h.catalog, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account, "profile": profile})
}

// CreateSession maneja POST /sessions.
func (h *AccountHandler) CreateSession(c *gin.Context) {
	var req struct {
		Email    string `json:"email" form:"email" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respondError(c, h.logger, h.catalog, apperr.Validation())
		return
	}

	account, err := h.regServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, h.catalog, err)
		return
	}

	tokens, err := h.tokenServ.GeneratePair(c.Request.Context(), account)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		respondError(c, h.logger, h.catalog, apperr.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account, "tokens": tokens})
}

// RefreshSession maneja POST /sessions/refresh.
func (h *AccountHandler) RefreshSession(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" form:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid refresh request", zap.Error(err))
		respondError(c, h.logger, h.catalog, apperr.Validation())
		return
	}

	tokens, err := h.tokenServ.RefreshPair(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.logger, h.catalog, &apperr.Error{
			Kind:       apperr.KindUnauthorized,
			MessageKey: "invalid_token",
			Err:        err,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// DeleteSession maneja DELETE /sessions.
func (h *AccountHandler) DeleteSession(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" form:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid logout request", zap.Error(err))
		respondError(c, h.logger, h.catalog, apperr.Validation())
		return
	}
	// El logout responde 204 igual, pero una revocación fallida queda logueada.
	if err := h.tokenServ.RevokeRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.Warn("refresh token revoke failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// CurrentAccount maneja GET /accounts/me.
func (h *AccountHandler) CurrentAccount(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, h.logger, h.catalog, apperr.Unauthorized(nil))
		return
	}

	account, profile, err := h.regServ.Lookup(c.Request.Context(), claims.Email)
	if err != nil {
		respondError(c, h.logger, h.catalog, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account, "profile": profile})
}
