package handler

import (
	"net/http"

	"github.com/altona/sales-kpi-api/internal/scheduler"
	"github.com/altona/sales-kpi-api/pkg/apiErrors"
	"github.com/sirupsen/logrus"
)

// CronJobServices contiene los planificadores que se pueden ejecutar a mano
type CronJobServices struct {
	DailySummarySyncService *scheduler.DailySummarySyncService
}

// RunCronJob dispara una sincronización de resúmenes fuera de horario
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		if services.DailySummarySyncService == nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer,
				"Servicio de sincronización de resúmenes no disponible", nil)
			return
		}

		services.DailySummarySyncService.RunNow()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"started"}`))
	}
}
