package dto

import "github.com/shopspring/decimal"

// Los montos viajan como números JSON (1200.5) y no como cadenas.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrorResponse cuerpo de error HTTP.
// Error lleva la causa subyacente y solo se incluye fuera de producción.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// MessageResponse respuesta simple con mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}
