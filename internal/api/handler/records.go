package handler

import (
	"encoding/json"
	"net/http"

	"github.com/altona/sales-kpi-api/internal/usecases/recording"
	"github.com/altona/sales-kpi-api/pkg/apiErrors"
	"github.com/altona/sales-kpi-api/pkg/log"
	"github.com/julienschmidt/httprouter"
)

// DeleteRecord borra un registro por id. El id entra en la máscara de la
// sesión antes de confirmar el borrado, así que una relectura inmediata ya
// no lo incluye aunque el almacén tarde en hacerlo visible.
func DeleteRecord(service recording.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "falta el id del registro", nil)
			return
		}

		if err := service.DeleteRecord(id); err != nil {
			logger.WithError(err).WithField("record_id", id).Error("records: fallo al borrar el registro")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, err.Error(), nil)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

type deleteDayRequest struct {
	RecordIDs []string `json:"recordIds"`
}

// DeleteDay borra en lote los registros de un día, normalmente los
// SourceRecordIDs de una entrada del histórico
func DeleteDay(service recording.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		req := deleteDayRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		if len(req.RecordIDs) == 0 {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "faltan los ids a borrar", nil)
			return
		}

		if err := service.DeleteRecords(req.RecordIDs); err != nil {
			logger.WithError(err).WithField("records", len(req.RecordIDs)).
				Error("records: fallo en el borrado por día")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, err.Error(), nil)
			return
		}

		logger.WithField("records", len(req.RecordIDs)).Info("records: día borrado")
		w.WriteHeader(http.StatusNoContent)
	})
}
