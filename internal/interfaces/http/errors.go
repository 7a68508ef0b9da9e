package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/leads-api/internal/application/dto"
	"github.com/jhoicas/leads-api/internal/domain"
)

// Códigos de error de la API.
const (
	CodeValidation   = "VALIDATION"
	CodeInvalidBody  = "INVALID_BODY"
	CodeNotFound     = "NOT_FOUND"
	CodeDuplicate    = "DUPLICATE"
	CodeStore        = "STORE_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL"
)

// errorWriter traduce errores de dominio a respuestas HTTP.
// Con exposeCause=false (producción) la causa interna no se envía al cliente.
type errorWriter struct {
	exposeCause bool
}

func (w errorWriter) write(c *fiber.Ctx, err error) error {
	status, body := w.classify(err)
	return c.Status(status).JSON(body)
}

func (w errorWriter) classify(err error) (int, dto.ErrorResponse) {
	var fe *fiber.Error
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: CodeNotFound, Message: "Lead not found"}
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: CodeInvalidBody, Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: CodeUnauthorized, Message: "no autorizado"}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, w.withCause(dto.ErrorResponse{Code: CodeDuplicate, Message: "el lead ya existe"}, err)
	case errors.Is(err, domain.ErrStore):
		return fiber.StatusInternalServerError, w.withCause(dto.ErrorResponse{Code: CodeStore, Message: "Server Error"}, err)
	case errors.As(err, &fe):
		return fe.Code, dto.ErrorResponse{Code: fiberCode(fe.Code), Message: fe.Message}
	default:
		return fiber.StatusInternalServerError, w.withCause(dto.ErrorResponse{Code: CodeInternal, Message: "Server Error"}, err)
	}
}

func (w errorWriter) withCause(body dto.ErrorResponse, err error) dto.ErrorResponse {
	if w.exposeCause {
		body.Error = err.Error()
	}
	return body
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return CodeValidation
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	default:
		if status >= 500 {
			return CodeInternal
		}
		return "HTTP_" + utils.StatusMessage(status)
	}
}

// ErrorHandler handler de errores de Fiber con el mismo formato que las respuestas de la API
// (rutas inexistentes, cuerpos demasiado grandes, pánicos recuperados).
func ErrorHandler(production bool) fiber.ErrorHandler {
	w := errorWriter{exposeCause: !production}
	return func(c *fiber.Ctx, err error) error {
		return w.write(c, err)
	}
}
