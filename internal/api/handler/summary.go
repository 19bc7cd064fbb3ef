package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/altona/sales-kpi-api/internal/domain"
	"github.com/altona/sales-kpi-api/internal/usecases/aggregating"
	"github.com/altona/sales-kpi-api/pkg/apiErrors"
	"github.com/altona/sales-kpi-api/pkg/log"
	"github.com/altona/sales-kpi-api/pkg/utils"
)

// GetDailySummary calcula el resumen de un día natural bajo demanda. La
// capa de presentación consume los agregados tal cual; nunca recalcula
// ratios por su cuenta.
func GetDailySummary(service aggregating.Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		dateParam := r.URL.Query().Get("date")
		if dateParam == "" {
			dateParam = time.Now().Format(time.DateOnly)
		}

		date, err := utils.ParseDate(dateParam)
		if err != nil {
			logger.WithField("date", dateParam).Warn("summary: parámetro date inválido")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		summary, err := service.DailySummary(*date)
		if err != nil {
			writeAggregationError(w, r, err, "summary: fallo al calcular el resumen diario")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			logger.WithError(err).Error("summary: fallo al codificar la respuesta")
		}
	})
}

// GetHistory devuelve la vista histórica multi-día con los ids de registro
// de cada día, que la presentación usa para el borrado por día
func GetHistory(service aggregating.Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		if r.URL.Query().Get("start_date") == "" || r.URL.Query().Get("end_date") == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData,
				"faltan los parámetros start_date y end_date", nil)
			return
		}

		startDate, err := utils.ParseDate(r.URL.Query().Get("start_date"))
		if err != nil {
			logger.WithField("start_date", r.URL.Query().Get("start_date")).
				Warn("summary: parámetro start_date inválido")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		endDate, err := utils.ParseDate(r.URL.Query().Get("end_date"))
		if err != nil {
			logger.WithField("end_date", r.URL.Query().Get("end_date")).
				Warn("summary: parámetro end_date inválido")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		if startDate.After(*endDate) {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest,
				"la fecha de inicio no puede ser posterior a la de fin", nil)
			return
		}

		entries, err := service.History(*startDate, *endDate)
		if err != nil {
			writeAggregationError(w, r, err, "summary: fallo al construir el histórico")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			logger.WithError(err).Error("summary: fallo al codificar la respuesta")
		}
	})
}

// writeAggregationError distingue los datos malformados (error de
// clasificación, visible al operador) de los fallos de infraestructura
func writeAggregationError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logger := log.ForContext(r.Context())
	logger.WithError(err).Error(msg)

	var classificationErr *domain.ClassificationError
	if errors.As(err, &classificationErr) {
		apiErrors.WriteError(w, apiErrors.ErrClassification, err.Error(), classificationErr.RecordID)
		return
	}

	apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, err.Error(), nil)
}
