package handler

import (
	"net/http"

	"github.com/altona/sales-kpi-api/internal/api/handler/router"
	"github.com/altona/sales-kpi-api/internal/usecases/aggregating"
	"github.com/altona/sales-kpi-api/internal/usecases/recording"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Sales(service recording.Recorder, aggregator aggregating.Aggregator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/sales/unit",
			Method:  http.MethodPost,
			Handler: AddUnitSale(service),
		},
		{
			Path:    "/v1/sales/refund",
			Method:  http.MethodPost,
			Handler: AddRefund(service),
		},
		{
			Path:    "/v1/sales/close",
			Method:  http.MethodPost,
			Handler: AddTurnClose(service),
		},
		{
			Path:    "/v1/sales/adjustment",
			Method:  http.MethodPost,
			Handler: AddAdjustment(service),
		},
		{
			Path:    "/v1/sales/legacy",
			Method:  http.MethodPost,
			Handler: AddLegacyTotal(service),
		},
		{
			Path:    "/v1/sales/last",
			Method:  http.MethodGet,
			Handler: GetLastSale(aggregator),
		},
	}
}

func Summaries(service aggregating.Aggregator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/summary/daily",
			Method:  http.MethodGet,
			Handler: GetDailySummary(service),
		},
		{
			Path:    "/v1/summary/history",
			Method:  http.MethodGet,
			Handler: GetHistory(service),
		},
	}
}

func Records(service recording.Recorder) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/records/:id",
			Method:  http.MethodDelete,
			Handler: DeleteRecord(service),
		},
		{
			Path:    "/v1/days/delete",
			Method:  http.MethodPost,
			Handler: DeleteDay(service),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/daily-summary-sync",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
	}
}
