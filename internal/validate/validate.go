package validate

import (
	"regexp"
	"strings"
	"unicode"

	"accounts-api/internal/apperr"
	"accounts-api/internal/i18n"
)

// Rule es un predicado puro sobre el valor de un campo mas la clave del
// mensaje a emitir cuando no se cumple. El predicado recibe tambien el
// resto de los valores para reglas entre campos.
type Rule struct {
	Check func(value string, values map[string]string) bool
	Key   string
}

// Field agrupa las reglas de un campo en orden de evaluacion.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema es el conjunto declarativo de reglas por campo. Los campos se
// evaluan en orden; por campo se reporta solo la primera regla violada.
type Schema struct {
	Fields []Field
}

// Evaluate aplica el esquema sobre un registro plano de entrada y
// devuelve los errores de campo con mensajes ya localizados. Un
// resultado vacio significa entrada valida.
func (s Schema) Evaluate(values map[string]string, locale string, catalog *i18n.Catalog) []apperr.FieldError {
	var failures []apperr.FieldError
	for _, field := range s.Fields {
		for _, rule := range field.Rules {
			if rule.Check(values[field.Name], values) {
				continue
			}
			failures = append(failures, apperr.FieldError{
				Param: field.Name,
				Msg:   catalog.Resolve(locale, rule.Key),
			})
			break
		}
	}
	return failures
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Required exige un valor no vacio despues de recortar espacios.
func Required() Rule {
	return Rule{
		Check: func(value string, _ map[string]string) bool {
			return strings.TrimSpace(value) != ""
		},
		Key: "required",
	}
}

// Digits exige que el valor contenga solo digitos. Un valor vacio pasa;
// la presencia la cubre Required.
func Digits() Rule {
	return Rule{
		Check: func(value string, _ map[string]string) bool {
			for _, r := range strings.TrimSpace(value) {
				if !unicode.IsDigit(r) {
					return false
				}
			}
			return true
		},
		Key: "numeric",
	}
}

// Email exige formato de correo. Un valor vacio pasa.
func Email() Rule {
	return Rule{
		Check: func(value string, _ map[string]string) bool {
			value = strings.TrimSpace(value)
			return value == "" || emailPattern.MatchString(value)
		},
		Key: "invalid_email",
	}
}

// EqualsField exige igualdad con el valor de otro campo.
func EqualsField(other, key string) Rule {
	return Rule{
		Check: func(value string, values map[string]string) bool {
			return value == values[other]
		},
		Key: key,
	}
}
