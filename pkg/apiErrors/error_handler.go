package apiErrors

import (
	"encoding/json"
	"net/http"
)

// Códigos de error de la API
const (
	// Errores de validación
	ErrInvalidRequest      = "VAL_001" // Petición inválida
	ErrMissingRequiredData = "VAL_002" // Faltan datos obligatorios
	ErrValidationFailed    = "VAL_003" // Validación estricta de ratios fallida
	ErrClassification      = "VAL_004" // Registro sin variante conocida

	// Errores del servidor
	ErrInternalServer    = "SRV_001" // Error interno del servidor
	ErrDatabaseOperation = "SRV_002" // Error de operación de base de datos
	ErrCommunication     = "SRV_004" // Error de comunicación
)

// Mapa de códigos de error a status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidRequest:      http.StatusBadRequest,
	ErrMissingRequiredData: http.StatusBadRequest,
	ErrValidationFailed:    http.StatusUnprocessableEntity,
	ErrClassification:      http.StatusUnprocessableEntity,
	ErrInternalServer:      http.StatusInternalServerError,
	ErrDatabaseOperation:   http.StatusInternalServerError,
	ErrCommunication:       http.StatusServiceUnavailable,
}

// APIError representa un error de API estandarizado
type APIError struct {
	Code    string `json:"code"`              // Código de error para el cliente
	Message string `json:"message,omitempty"` // Mensaje descriptivo (opcional)
	Details any    `json:"details,omitempty"` // Detalles adicionales (opcional)
}

// WriteError escribe el error estandarizado en la respuesta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	status, exists := httpStatusMap[code]
	if !exists {
		status = http.StatusInternalServerError
	}

	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiErr)
}

// FromError crea un error de API a partir de un error Go
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "Error desconocido",
		}
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}
