package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Catalog resuelve claves de mensaje contra una tabla por locale y
// negocia el locale de la peticion desde el header Accept-Language.
type Catalog struct {
	defaultLocale string
	locales       []string
	matcher       language.Matcher
	messages      map[string]map[string]string
}

// NewCatalog construye el catalogo para la lista de locales configurada.
// Locales sin tabla de mensajes se ignoran; el locale por defecto queda
// siempre primero para que el matcher caiga en el ante cualquier duda.
func NewCatalog(locales []string, defaultLocale string) *Catalog {
	defaultLocale = normalizeLocale(defaultLocale)
	if defaultLocale == "" || messages[defaultLocale] == nil {
		defaultLocale = "en"
	}

	ordered := []string{defaultLocale}
	for _, loc := range locales {
		loc = normalizeLocale(loc)
		if loc == "" || loc == defaultLocale || messages[loc] == nil {
			continue
		}
		ordered = append(ordered, loc)
	}

	tags := make([]language.Tag, 0, len(ordered))
	for _, loc := range ordered {
		tags = append(tags, language.Make(loc))
	}

	return &Catalog{
		defaultLocale: defaultLocale,
		locales:       ordered,
		matcher:       language.NewMatcher(tags),
		messages:      messages,
	}
}

// DefaultLocale devuelve el locale de respaldo del catalogo.
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

// Match negocia el locale a partir de un header Accept-Language.
func (c *Catalog) Match(acceptLanguage string) string {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return c.defaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.defaultLocale
	}
	_, idx, _ := c.matcher.Match(tags...)
	return c.locales[idx]
}

// Resolve devuelve el mensaje para la clave en el locale dado, con
// fallback al locale por defecto y finalmente a la clave misma.
func (c *Catalog) Resolve(locale, key string) string {
	if table, ok := c.messages[normalizeLocale(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := c.messages[c.defaultLocale][key]; ok {
		return msg
	}
	return key
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.TrimSpace(locale))
}

var messages = map[string]map[string]string{
	"en": {
		"required":                "is required",
		"numeric":                 "must contain only digits",
		"invalid_email":           "must be a valid email",
		"password_mismatch":       "must match password",
		"email_already_exists":    "email already exists",
		"validation_failed":       "validation failed",
		"not_found":               "resource not found",
		"temporarily_unavailable": "service temporarily unavailable",
		"server_error":            "internal server error",
		"too_many_requests":       "too many requests",
		"invalid_credentials":     "invalid credentials",
		"invalid_token":           "invalid token",
	},
	"de": {
		"required":                "ist erforderlich",
		"numeric":                 "darf nur Ziffern enthalten",
		"invalid_email":           "muss eine gueltige E-Mail-Adresse sein",
		"password_mismatch":       "muss mit dem Passwort uebereinstimmen",
		"email_already_exists":    "E-Mail existiert bereits",
		"validation_failed":       "Validierung fehlgeschlagen",
		"not_found":               "Ressource nicht gefunden",
		"temporarily_unavailable": "Dienst voruebergehend nicht verfuegbar",
		"server_error":            "interner Serverfehler",
		"too_many_requests":       "zu viele Anfragen",
		"invalid_credentials":     "ungueltige Anmeldedaten",
		"invalid_token":           "ungueltiges Token",
	},
}
