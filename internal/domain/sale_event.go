package domain

import (
	"time"
)

// Tipos de registro tal como llegan del almacén de documentos. Los registros
// del formato antiguo no llevan discriminador (o llevan "total").
const (
	KindUnitSale    = "unitaria"
	KindRefund      = "abono"
	KindTurnClose   = "cierre"
	KindAdjustment  = "ajuste"
	KindLegacyTotal = "total"
)

// RawRecord es un registro crudo del almacén, antes de clasificar.
// Los campos numéricos son punteros porque la presencia/ausencia de campo
// forma parte del contrato: un registro sin tipo pero con clientes y
// operaciones es un total del formato antiguo.
type RawRecord struct {
	ID       string    `json:"id"`
	Tipo     string    `json:"tipo,omitempty"`
	Empleada Employee  `json:"empleada"`
	Fecha    time.Time `json:"fecha"`
	Hora     string    `json:"hora,omitempty"`

	// Venta unitaria
	Articulos *int     `json:"articulos,omitempty"`
	Venta     *float64 `json:"venta,omitempty"`

	// Abono
	Abono *float64 `json:"abono,omitempty"`

	// Cierre de turno
	Clientes        *int     `json:"clientes,omitempty"`
	HorasTrabajadas *float64 `json:"horasTrabajadas,omitempty"`

	// Ajuste manual
	VentaAjuste *float64 `json:"ventaAjuste,omitempty"`
	AbonoAjuste *float64 `json:"abonoAjuste,omitempty"`
	Motivo      string   `json:"motivo,omitempty"`

	// Formato antiguo (un registro = un día)
	Operaciones *int     `json:"operaciones,omitempty"`
	Unidades    *int     `json:"unidades,omitempty"`
	VentaBruta  *float64 `json:"ventaBruta,omitempty"`
	Abonos      *float64 `json:"abonos,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// DayKey devuelve la clave de día natural (zona local, sin instante)
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// SaleEvent es la unión discriminada de los cinco tipos de registro.
// Es una interfaz sellada: solo las cinco variantes de este paquete la
// implementan, lo que permite switch exhaustivos en el agregador.
type SaleEvent interface {
	EventID() string
	EventEmployee() Employee
	EventDate() time.Time
	saleEvent()
}

// UnitSale es una operación de venta completada (un ticket)
type UnitSale struct {
	ID        string
	Employee  Employee
	Date      time.Time
	Time      string
	ItemCount int
	Amount    float64
}

// Refund es una devolución; reduce la venta neta
type Refund struct {
	ID       string
	Employee Employee
	Date     time.Time
	Time     string
	Amount   float64
}

// TurnClose es el cierre de turno: aporta los denominadores (clientes y
// horas) que las ventas unitarias no pueden aportar
type TurnClose struct {
	ID           string
	Employee     Employee
	Date         time.Time
	VisitorCount int
	HoursWorked  float64
}

// Adjustment es una corrección manual aplicada sobre los totales calculados
type Adjustment struct {
	ID          string
	Employee    Employee
	Date        time.Time
	SalesDelta  float64
	RefundDelta float64
	Reason      string
}

// LegacyTotal es un registro pre-agregado del formato antiguo. NetSales es
// el campo `venta` almacenado, que ya descuenta el abono interno del propio
// registro; GrossSales es `ventaBruta` con `venta` como respaldo.
type LegacyTotal struct {
	ID             string
	Employee       Employee
	Date           time.Time
	VisitorCount   int
	OperationCount int
	UnitCount      int
	GrossSales     float64
	NetSales       float64
	Refunds        float64
	HoursWorked    float64
}

func (e UnitSale) EventID() string    { return e.ID }
func (e Refund) EventID() string      { return e.ID }
func (e TurnClose) EventID() string   { return e.ID }
func (e Adjustment) EventID() string  { return e.ID }
func (e LegacyTotal) EventID() string { return e.ID }

func (e UnitSale) EventEmployee() Employee    { return e.Employee }
func (e Refund) EventEmployee() Employee      { return e.Employee }
func (e TurnClose) EventEmployee() Employee   { return e.Employee }
func (e Adjustment) EventEmployee() Employee  { return e.Employee }
func (e LegacyTotal) EventEmployee() Employee { return e.Employee }

func (e UnitSale) EventDate() time.Time    { return e.Date }
func (e Refund) EventDate() time.Time      { return e.Date }
func (e TurnClose) EventDate() time.Time   { return e.Date }
func (e Adjustment) EventDate() time.Time  { return e.Date }
func (e LegacyTotal) EventDate() time.Time { return e.Date }

func (UnitSale) saleEvent()    {}
func (Refund) saleEvent()      {}
func (TurnClose) saleEvent()   {}
func (Adjustment) saleEvent()  {}
func (LegacyTotal) saleEvent() {}
