package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/altona/sales-kpi-api/internal/domain"
	"github.com/altona/sales-kpi-api/internal/usecases/aggregating"
	"github.com/altona/sales-kpi-api/internal/usecases/recording"
	"github.com/altona/sales-kpi-api/pkg/apiErrors"
	"github.com/altona/sales-kpi-api/pkg/log"
)

type saleRequest struct {
	Empleada        string  `json:"empleada"`
	Fecha           string  `json:"fecha"`
	Hora            string  `json:"hora,omitempty"`
	Articulos       int     `json:"articulos,omitempty"`
	Venta           float64 `json:"venta,omitempty"`
	Abono           float64 `json:"abono,omitempty"`
	Clientes        int     `json:"clientes,omitempty"`
	HorasTrabajadas float64 `json:"horasTrabajadas,omitempty"`
	VentaAjuste     float64 `json:"ventaAjuste,omitempty"`
	AbonoAjuste     float64 `json:"abonoAjuste,omitempty"`
	Motivo          string  `json:"motivo,omitempty"`
	Operaciones     int     `json:"operaciones,omitempty"`
	Unidades        int     `json:"unidades,omitempty"`
	Abonos          float64 `json:"abonos,omitempty"`
}

// decodeSaleRequest valida los campos comunes a todos los tipos de registro
func decodeSaleRequest(r *http.Request) (*saleRequest, domain.Employee, time.Time, error) {
	req := &saleRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return nil, "", time.Time{}, err
	}

	employee, err := domain.ParseEmployee(req.Empleada)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	date, err := time.Parse(time.DateOnly, req.Fecha)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	return req, employee, date, nil
}

func AddUnitSale(service recording.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		req, employee, date, err := decodeSaleRequest(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		record, err := service.AddUnitSale(recording.UnitSaleInput{
			Empleada:  employee,
			Fecha:     date,
			Hora:      req.Hora,
			Articulos: req.Articulos,
			Venta:     req.Venta,
		})
		if err != nil {
			logger.WithError(err).Warn("sales: rechazada venta unitaria")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		writeCreated(w, r, record)
	})
}

func AddRefund(service recording.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		req, employee, date, err := decodeSaleRequest(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		record, err := service.AddRefund(recording.RefundInput{
			Empleada: employee,
			Fecha:    date,
			Hora:     req.Hora,
			Abono:    req.Abono,
		})
		if err != nil {
			logger.WithError(err).Warn("sales: rechazado abono")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		writeCreated(w, r, record)
	})
}

func AddTurnClose(service recording.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		req, employee, date, err := decodeSaleRequest(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		record, err := service.AddTurnClose(recording.TurnCloseInput{
			Empleada:        employee,
			Fecha:           date,
			Clientes:        req.Clientes,
			HorasTrabajadas: req.HorasTrabajadas,
		})
		if err != nil {
			logger.WithError(err).Warn("sales: rechazado cierre de turno")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		writeCreated(w, r, record)
	})
}

func AddAdjustment(service recording.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		req, employee, date, err := decodeSaleRequest(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		record, err := service.AddAdjustment(recording.AdjustmentInput{
			Empleada:    employee,
			Fecha:       date,
			VentaAjuste: req.VentaAjuste,
			AbonoAjuste: req.AbonoAjuste,
			Motivo:      req.Motivo,
		})
		if err != nil {
			logger.WithError(err).Warn("sales: rechazado ajuste")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		writeCreated(w, r, record)
	})
}

// AddLegacyTotal es la entrada manual de un día completo; la validación
// estricta de ratios responde 422 con el campo ofensivo para que el
// formulario lo corrija antes de reenviar
func AddLegacyTotal(service recording.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		req, employee, date, err := decodeSaleRequest(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		record, err := service.AddLegacyTotal(recording.LegacyTotalInput{
			Empleada:        employee,
			Fecha:           date,
			Clientes:        req.Clientes,
			Operaciones:     req.Operaciones,
			Unidades:        req.Unidades,
			Venta:           req.Venta,
			Abonos:          req.Abonos,
			HorasTrabajadas: req.HorasTrabajadas,
		})
		if err != nil {
			var validationErr *aggregating.ValidationError
			if errors.As(err, &validationErr) {
				logger.WithError(err).Warn("sales: total diario rechazado por validación estricta")
				apiErrors.WriteError(w, apiErrors.ErrValidationFailed, err.Error(), validationErr.Field)
				return
			}

			logger.WithError(err).Error("sales: fallo al registrar total diario")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, err.Error(), nil)
			return
		}

		writeCreated(w, r, record)
	})
}

// GetLastSale devuelve el último registro para la vista de venta confirmada
func GetLastSale(service aggregating.Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		record, err := service.LastSale()
		if err != nil {
			logger.WithError(err).Error("sales: fallo al recuperar la última venta")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, err.Error(), nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(record); err != nil {
			logger.WithError(err).Error("sales: fallo al codificar la respuesta")
		}
	})
}

func writeCreated(w http.ResponseWriter, r *http.Request, record *domain.RawRecord) {
	logger := log.ForContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(record); err != nil {
		logger.WithError(err).Error("sales: fallo al codificar la respuesta")
	}
}
