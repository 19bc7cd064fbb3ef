package recording

import (
	"time"

	"github.com/altona/sales-kpi-api/infrastructure/repository"
	"github.com/altona/sales-kpi-api/internal/domain"
	"github.com/altona/sales-kpi-api/internal/usecases/aggregating"
	"github.com/altona/sales-kpi-api/pkg/log"
	"github.com/altona/sales-kpi-api/pkg/utils"
	"github.com/pkg/errors"
)

// Recorder registra eventos de venta y tramita borrados
type Recorder interface {
	AddUnitSale(input UnitSaleInput) (*domain.RawRecord, error)
	AddRefund(input RefundInput) (*domain.RawRecord, error)
	AddTurnClose(input TurnCloseInput) (*domain.RawRecord, error)
	AddAdjustment(input AdjustmentInput) (*domain.RawRecord, error)
	AddLegacyTotal(input LegacyTotalInput) (*domain.RawRecord, error)
	DeleteRecord(id string) error
	DeleteRecords(ids []string) error
}

type UnitSaleInput struct {
	Empleada  domain.Employee
	Fecha     time.Time
	Hora      string
	Articulos int
	Venta     float64
}

type RefundInput struct {
	Empleada domain.Employee
	Fecha    time.Time
	Hora     string
	Abono    float64
}

type TurnCloseInput struct {
	Empleada        domain.Employee
	Fecha           time.Time
	Clientes        int
	HorasTrabajadas float64
}

type AdjustmentInput struct {
	Empleada    domain.Employee
	Fecha       time.Time
	VentaAjuste float64
	AbonoAjuste float64
	Motivo      string
}

// LegacyTotalInput es la entrada manual de un día completo en el formato
// antiguo. Venta es la cifra neta del día; se valida en modo estricto antes
// de persistir.
type LegacyTotalInput struct {
	Empleada        domain.Employee
	Fecha           time.Time
	Clientes        int
	Operaciones     int
	Unidades        int
	Venta           float64
	Abonos          float64
	HorasTrabajadas float64
}

// Service persiste registros crudos y mantiene la máscara de borrado de la
// sesión
type Service struct {
	saleEventRepo repository.SaleEventRepository
	mask          *DeletionMask
}

func NewService(saleEventRepo repository.SaleEventRepository, mask *DeletionMask) *Service {
	return &Service{
		saleEventRepo: saleEventRepo,
		mask:          mask,
	}
}

func (s *Service) AddUnitSale(input UnitSaleInput) (*domain.RawRecord, error) {
	if input.Articulos <= 0 {
		return nil, errors.New("la venta unitaria necesita al menos un artículo")
	}
	if input.Venta <= 0 {
		return nil, errors.New("el importe de la venta debe ser mayor que 0")
	}

	record := &domain.RawRecord{
		Tipo:      domain.KindUnitSale,
		Empleada:  input.Empleada,
		Fecha:     input.Fecha,
		Hora:      input.Hora,
		Articulos: &input.Articulos,
		Venta:     &input.Venta,
	}

	return s.append(record)
}

func (s *Service) AddRefund(input RefundInput) (*domain.RawRecord, error) {
	if input.Abono <= 0 {
		return nil, errors.New("el importe del abono debe ser mayor que 0")
	}

	record := &domain.RawRecord{
		Tipo:     domain.KindRefund,
		Empleada: input.Empleada,
		Fecha:    input.Fecha,
		Hora:     input.Hora,
		Abono:    &input.Abono,
	}

	return s.append(record)
}

func (s *Service) AddTurnClose(input TurnCloseInput) (*domain.RawRecord, error) {
	if input.Clientes < 0 || input.HorasTrabajadas <= 0 {
		return nil, errors.New("el cierre de turno necesita clientes y horas válidos")
	}

	record := &domain.RawRecord{
		Tipo:            domain.KindTurnClose,
		Empleada:        input.Empleada,
		Fecha:           input.Fecha,
		Clientes:        &input.Clientes,
		HorasTrabajadas: &input.HorasTrabajadas,
	}

	return s.append(record)
}

func (s *Service) AddAdjustment(input AdjustmentInput) (*domain.RawRecord, error) {
	if input.VentaAjuste == 0 && input.AbonoAjuste == 0 {
		return nil, errors.New("el ajuste necesita al menos un importe distinto de 0")
	}

	record := &domain.RawRecord{
		Tipo:        domain.KindAdjustment,
		Empleada:    input.Empleada,
		Fecha:       input.Fecha,
		VentaAjuste: &input.VentaAjuste,
		AbonoAjuste: &input.AbonoAjuste,
		Motivo:      input.Motivo,
	}

	return s.append(record)
}

// AddLegacyTotal registra un día completo en el formato antiguo. Los cinco
// totales se validan en modo estricto: un denominador no positivo devuelve
// un ValidationError y no se persiste nada. El llamador corrige y reenvía.
func (s *Service) AddLegacyTotal(input LegacyTotalInput) (*domain.RawRecord, error) {
	_, err := aggregating.CalculateRatios(aggregating.RatioInputs{
		Visitors:    input.Clientes,
		Operations:  input.Operaciones,
		Units:       input.Unidades,
		NetSales:    input.Venta,
		HoursWorked: input.HorasTrabajadas,
	}, aggregating.FailOnZeroDenominator)
	if err != nil {
		return nil, err
	}

	record := &domain.RawRecord{
		Tipo:            domain.KindLegacyTotal,
		Empleada:        input.Empleada,
		Fecha:           input.Fecha,
		Clientes:        &input.Clientes,
		Operaciones:     &input.Operaciones,
		Unidades:        &input.Unidades,
		Venta:           &input.Venta,
		HorasTrabajadas: &input.HorasTrabajadas,
	}
	if input.Abonos > 0 {
		record.Abonos = &input.Abonos
	}

	return s.append(record)
}

// DeleteRecord añade el id a la máscara antes de pedir el borrado al
// almacén: aunque el almacén tarde en hacer visible el borrado, el registro
// ya no vuelve a entrar en ninguna agregación de esta sesión.
func (s *Service) DeleteRecord(id string) error {
	s.mask.Add(id)

	if err := s.saleEventRepo.Delete(id); err != nil {
		return errors.Wrapf(err, "error al borrar el registro %s", id)
	}

	log.L.WithField("record_id", id).Info("recording: registro borrado")
	return nil
}

// DeleteRecords borra un lote de registros, normalmente los
// SourceRecordIDs de un día de la vista histórica
func (s *Service) DeleteRecords(ids []string) error {
	for _, id := range ids {
		if err := s.DeleteRecord(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) append(record *domain.RawRecord) (*domain.RawRecord, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return nil, errors.Wrap(err, "error al generar el id del registro")
	}
	record.ID = id
	record.CreatedAt = time.Now()

	if err := s.saleEventRepo.Append(record); err != nil {
		return nil, errors.Wrap(err, "error al persistir el registro")
	}

	return record, nil
}
