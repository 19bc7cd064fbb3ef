package aggregating

import (
	"github.com/altona/sales-kpi-api/internal/domain"
	"github.com/altona/sales-kpi-api/pkg/utils"
)

// ZeroDenominatorPolicy decide qué hacer cuando un denominador no es
// positivo: fallar (entrada manual de día completo) o degradar ese ratio a
// cero (agregación incremental de un día todavía sin cierre).
type ZeroDenominatorPolicy int

const (
	FailOnZeroDenominator ZeroDenominatorPolicy = iota
	ZeroOnZeroDenominator
)

// RatioInputs son los totales de los que se derivan los cinco ratios
type RatioInputs struct {
	Visitors    int
	Operations  int
	Units       int
	NetSales    float64
	HoursWorked float64
}

// ValidationError indica que la validación estricta de ratios recibió un
// denominador no positivo. Solo se produce en la ruta de entrada manual.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "todos los valores deben ser mayores que 0: " + e.Field
}

// CalculateRatios deriva los cinco ratios, redondeados a dos decimales con
// redondeo mitad-lejos-de-cero sobre el valor pre-escalado por 100.
//
//	conversion     = operaciones × 100 / clientes
//	apo            = unidades / operaciones
//	pmv            = venta neta / unidades
//	ticket medio   = venta neta / operaciones
//	productividad  = venta neta / horas trabajadas
func CalculateRatios(in RatioInputs, policy ZeroDenominatorPolicy) (domain.Ratios, error) {
	if policy == FailOnZeroDenominator {
		switch {
		case in.Visitors <= 0:
			return domain.Ratios{}, &ValidationError{Field: "clientes"}
		case in.Operations <= 0:
			return domain.Ratios{}, &ValidationError{Field: "operaciones"}
		case in.Units <= 0:
			return domain.Ratios{}, &ValidationError{Field: "unidades"}
		case in.HoursWorked <= 0:
			return domain.Ratios{}, &ValidationError{Field: "horasTrabajadas"}
		}
	}

	var r domain.Ratios

	if in.Visitors > 0 {
		r.Conversion = utils.RoundWithTwoDecimalPlace(float64(in.Operations) * 100 / float64(in.Visitors))
	}

	if in.Operations > 0 {
		r.UnitsPerOperation = utils.RoundWithTwoDecimalPlace(float64(in.Units) / float64(in.Operations))
		r.AvgTicket = utils.RoundWithTwoDecimalPlace(in.NetSales / float64(in.Operations))
	}

	if in.Units > 0 {
		r.AvgUnitPrice = utils.RoundWithTwoDecimalPlace(in.NetSales / float64(in.Units))
	}

	if in.HoursWorked > 0 {
		r.RevenuePerHour = utils.RoundWithTwoDecimalPlace(in.NetSales / in.HoursWorked)
	}

	return r, nil
}
