package domain

import "time"

// Ratios son los cinco indicadores derivados. Nunca se almacenan por
// separado de los totales que los produjeron.
type Ratios struct {
	Conversion        float64 `json:"conversion"`
	UnitsPerOperation float64 `json:"unitsPerOperation"`
	AvgUnitPrice      float64 `json:"avgUnitPrice"`
	AvgTicket         float64 `json:"avgTicket"`
	RevenuePerHour    float64 `json:"revenuePerHour"`
}

// DailyEmployeeAggregate es el agregado de un día natural para una empleada.
// Es un valor derivado: se recalcula desde cero en cada agregación y no se
// muta una vez producido.
type DailyEmployeeAggregate struct {
	Employee    Employee `json:"employee"`
	Operations  int      `json:"operations"`
	Units       int      `json:"units"`
	GrossSales  float64  `json:"grossSales"`
	Refunds     float64  `json:"refunds"`
	NetSales    float64  `json:"netSales"`
	Visitors    int      `json:"visitors"`
	HoursWorked float64  `json:"hoursWorked"`
	HasClose    bool     `json:"hasClose"`
	Ratios
}

// DailyTotalAggregate suma los campos aditivos de las dos empleadas y
// recalcula los ratios sobre las sumas, nunca promediando los ratios
// individuales. HasClose solo es verdadero si ambas han cerrado turno.
type DailyTotalAggregate struct {
	Operations  int     `json:"operations"`
	Units       int     `json:"units"`
	GrossSales  float64 `json:"grossSales"`
	Refunds     float64 `json:"refunds"`
	NetSales    float64 `json:"netSales"`
	Visitors    int     `json:"visitors"`
	HoursWorked float64 `json:"hoursWorked"`
	HasClose    bool    `json:"hasClose"`
	Ratios
}

// DailySummary es la respuesta de resumen diario que consume la capa de
// presentación, que nunca recalcula ratios por su cuenta.
type DailySummary struct {
	Date        time.Time                            `json:"date"`
	PerEmployee map[Employee]*DailyEmployeeAggregate `json:"perEmployee"`
	Total       *DailyTotalAggregate                 `json:"total"`
}

// DayHistoryEntry es una entrada de la vista histórica multi-día.
// SourceRecordIDs lleva todos los ids de registro del día (incluidos los
// duplicados descartados por la deduplicación) para que la capa de
// presentación pueda borrar el día completo.
type DayHistoryEntry struct {
	DateKey         string                               `json:"dateKey"`
	PerEmployee     map[Employee]*DailyEmployeeAggregate `json:"perEmployee"`
	Total           *DailyTotalAggregate                 `json:"total"`
	SourceRecordIDs []string                             `json:"sourceRecordIds"`
}
