package aggregating

import (
	"errors"
	"time"

	"github.com/altona/sales-kpi-api/infrastructure/repository"
	"github.com/altona/sales-kpi-api/internal/domain"
	"github.com/altona/sales-kpi-api/pkg/log"
)

// Tombstones es el conjunto de ids borrados en la sesión. El almacén puede
// seguir devolviendo un registro borrado durante su ventana de consistencia;
// todo punto de entrada de agregación filtra contra este conjunto primero.
type Tombstones interface {
	Contains(id string) bool
}

// Aggregator expone los puntos de entrada de agregación que consume la API
type Aggregator interface {
	DailySummary(date time.Time) (*domain.DailySummary, error)
	History(startDate, endDate time.Time) ([]domain.DayHistoryEntry, error)
	LastSale() (*domain.RawRecord, error)
}

// Service implementa el motor de agregación de KPIs sobre el almacén de
// registros. La agregación es una reducción pura sobre el conjunto de
// registros: idempotente e independiente del orden de entrada.
type Service struct {
	saleEventRepo repository.SaleEventRepository
	mask          Tombstones
}

func NewService(saleEventRepo repository.SaleEventRepository, mask Tombstones) *Service {
	return &Service{
		saleEventRepo: saleEventRepo,
		mask:          mask,
	}
}

// DailySummary calcula el resumen de un día natural: un agregado por
// empleada y el agregado combinado con ratios recalculados sobre las sumas.
func (s *Service) DailySummary(date time.Time) (*domain.DailySummary, error) {
	records, err := s.saleEventRepo.GetByDate(date)
	if err != nil {
		log.L.WithError(err).WithField("date", date.Format(time.DateOnly)).
			Error("aggregating: fallo al consultar registros del día")
		return nil, err
	}

	events, err := classifyAll(filterTombstoned(records, s.mask))
	if err != nil {
		return nil, err
	}

	perEmployee, total := AggregateDay(events)

	return &domain.DailySummary{
		Date:        date,
		PerEmployee: perEmployee,
		Total:       total,
	}, nil
}

// LastSale devuelve el último registro no borrado, para la vista de venta
// confirmada
func (s *Service) LastSale() (*domain.RawRecord, error) {
	record, err := s.saleEventRepo.GetLast()
	if err != nil {
		return nil, err
	}
	if record == nil || (s.mask != nil && s.mask.Contains(record.ID)) {
		return nil, nil
	}
	return record, nil
}

// AggregateDay agrega los eventos de un día para las dos empleadas fijas y
// combina ambos agregados
func AggregateDay(events []domain.SaleEvent) (map[domain.Employee]*domain.DailyEmployeeAggregate, *domain.DailyTotalAggregate) {
	perEmployee := make(map[domain.Employee]*domain.DailyEmployeeAggregate, 2)
	for _, employee := range domain.Employees() {
		perEmployee[employee] = AggregateEmployeeDay(events, employee)
	}

	return perEmployee, CombineDaily(perEmployee)
}

// AggregateEmployeeDay reduce los eventos de un día de una empleada a un
// único agregado. Si existe un registro del formato antiguo para el par
// empleada/día, ese registro manda sobre clientes, operaciones, unidades,
// venta bruta y horas; los abonos registrados como eventos separados se
// siguen sumando aparte. Nunca falla por denominadores ausentes.
func AggregateEmployeeDay(events []domain.SaleEvent, employee domain.Employee) *domain.DailyEmployeeAggregate {
	agg := &domain.DailyEmployeeAggregate{Employee: employee}

	var (
		legacy       *domain.LegacyTotal
		turnClose    *domain.TurnClose
		extraRefunds float64
		salesDelta   float64
		refundDelta  float64
	)

	for _, event := range events {
		if event.EventEmployee() != employee {
			continue
		}

		switch e := event.(type) {
		case domain.UnitSale:
			agg.Operations++
			agg.Units += e.ItemCount
			agg.GrossSales += e.Amount
		case domain.Refund:
			extraRefunds += e.Amount
		case domain.TurnClose:
			if turnClose == nil {
				c := e
				turnClose = &c
			}
		case domain.Adjustment:
			salesDelta += e.SalesDelta
			refundDelta += e.RefundDelta
		case domain.LegacyTotal:
			if legacy == nil {
				l := e
				legacy = &l
			}
		}
	}

	if legacy != nil {
		// Puente de compatibilidad con los datos migrados: el campo de
		// venta almacenado ya es neto del abono interno del propio
		// registro, así que solo se restan los abonos separados.
		agg.Operations = legacy.OperationCount
		agg.Units = legacy.UnitCount
		agg.Visitors = legacy.VisitorCount
		agg.HoursWorked = legacy.HoursWorked
		agg.GrossSales = legacy.GrossSales
		agg.Refunds = legacy.Refunds + extraRefunds
		agg.NetSales = legacy.NetSales - extraRefunds
		agg.HasClose = true

		agg.Ratios, _ = CalculateRatios(ratioInputs(agg), ZeroOnZeroDenominator)
		return agg
	}

	agg.NetSales = agg.GrossSales - extraRefunds + salesDelta - refundDelta
	agg.Refunds = extraRefunds + refundDelta
	if turnClose != nil {
		agg.Visitors = turnClose.VisitorCount
		agg.HoursWorked = turnClose.HoursWorked
		agg.HasClose = true
	}

	policy := ZeroOnZeroDenominator
	if agg.Operations > 0 && agg.Units > 0 && agg.Visitors > 0 && agg.HoursWorked > 0 {
		policy = FailOnZeroDenominator
	}

	ratios, err := CalculateRatios(ratioInputs(agg), policy)
	if err != nil {
		// El modo estricto solo se elige con denominadores positivos, pero
		// un día parcial siempre debe poder mostrarse
		ratios, _ = CalculateRatios(ratioInputs(agg), ZeroOnZeroDenominator)
	}
	agg.Ratios = ratios

	return agg
}

// CombineDaily suma los campos aditivos de los agregados por empleada y
// recalcula los ratios sobre las sumas. Promediar los ratios individuales
// sería estadísticamente inválido: las dos empleadas pueden haber atendido
// números de clientes muy distintos.
func CombineDaily(perEmployee map[domain.Employee]*domain.DailyEmployeeAggregate) *domain.DailyTotalAggregate {
	total := &domain.DailyTotalAggregate{HasClose: len(perEmployee) > 0}

	for _, agg := range perEmployee {
		total.Operations += agg.Operations
		total.Units += agg.Units
		total.GrossSales += agg.GrossSales
		total.Refunds += agg.Refunds
		total.NetSales += agg.NetSales
		total.Visitors += agg.Visitors
		total.HoursWorked += agg.HoursWorked
		total.HasClose = total.HasClose && agg.HasClose
	}

	total.Ratios, _ = CalculateRatios(RatioInputs{
		Visitors:    total.Visitors,
		Operations:  total.Operations,
		Units:       total.Units,
		NetSales:    total.NetSales,
		HoursWorked: total.HoursWorked,
	}, ZeroOnZeroDenominator)

	return total
}

func ratioInputs(agg *domain.DailyEmployeeAggregate) RatioInputs {
	return RatioInputs{
		Visitors:    agg.Visitors,
		Operations:  agg.Operations,
		Units:       agg.Units,
		NetSales:    agg.NetSales,
		HoursWorked: agg.HoursWorked,
	}
}

// filterTombstoned elimina los registros cuyo id está en la máscara de
// borrado, antes de cualquier clasificación o agregación
func filterTombstoned(records []domain.RawRecord, mask Tombstones) []domain.RawRecord {
	if mask == nil {
		return records
	}

	kept := make([]domain.RawRecord, 0, len(records))
	for _, record := range records {
		if mask.Contains(record.ID) {
			continue
		}
		kept = append(kept, record)
	}

	return kept
}

// classifyAll clasifica cada registro; cualquier registro que no encaje en
// una variante conocida hace fallar la llamada con el error acumulado, para
// que el dato malformado llegue al operador en vez de perderse
func classifyAll(records []domain.RawRecord) ([]domain.SaleEvent, error) {
	events := make([]domain.SaleEvent, 0, len(records))

	var errs []error
	for _, record := range records {
		event, err := domain.Classify(record)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, event)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return events, nil
}
