package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind clasifica un error en una de las categorias que la capa HTTP
// sabe traducir a un envelope de respuesta.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindUnauthorized
	KindRateLimited
	KindUnavailable
	KindInternal
)

// FieldError es un par campo/mensaje dentro de un error de validacion.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// Error es el tipo de error etiquetado que cruza todas las capas.
// MessageKey es una clave de catalogo i18n; si esta vacia se usa el
// mensaje por defecto de la categoria.
type Error struct {
	Kind       Kind
	MessageKey string
	Fields     []FieldError
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.kindString(), e.Err)
	}
	if e.MessageKey != "" {
		return fmt.Sprintf("%s: %s", e.kindString(), e.MessageKey)
	}
	return e.kindString()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) kindString() string {
	switch e.Kind {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate limited"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Validation construye un error de validacion con mensajes por campo.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

// NotFound construye un error de recurso inexistente.
func NotFound(err error) *Error {
	return &Error{Kind: KindNotFound, Err: err}
}

// Unauthorized construye un error de credenciales invalidas.
func Unauthorized(err error) *Error {
	return &Error{Kind: KindUnauthorized, MessageKey: "invalid_credentials", Err: err}
}

// RateLimited construye un error de frecuencia excedida.
func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, MessageKey: "too_many_requests"}
}

// Unavailable construye un error de almacenamiento inaccesible.
func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Err: err}
}

// Internal envuelve un error no clasificado.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// codigo SQLSTATE de violacion de indice unico.
const uniqueViolationCode = "23505"

// FromStorage clasifica errores provenientes de la capa de persistencia.
// Una violacion del indice unico de email se traduce al mismo error de
// campo que produce el chequeo previo de duplicados; errores de conexion
// se marcan como no disponibles para que HTTP responda 503.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return &Error{
			Kind:       KindValidation,
			MessageKey: "email_already_exists",
			Fields:     []FieldError{{Param: "email"}},
			Err:        err,
		}
	}
	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connectErr),
		errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded):
		return Unavailable(err)
	}
	return Internal(err)
}
