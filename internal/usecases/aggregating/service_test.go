package aggregating

import (
	"math/rand"
	"testing"
	"time"

	"github.com/altona/sales-kpi-api/infrastructure/repository/mocks"
	"github.com/altona/sales-kpi-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// stubMask implementa Tombstones sobre un mapa para los tests
type stubMask map[string]bool

func (m stubMask) Contains(id string) bool { return m[id] }

func scenarioEvents() []domain.SaleEvent {
	return []domain.SaleEvent{
		domain.UnitSale{ID: "u1", Employee: domain.EmployeeIngrid, Date: testDay, ItemCount: 1, Amount: 10},
		domain.UnitSale{ID: "u2", Employee: domain.EmployeeIngrid, Date: testDay, ItemCount: 2, Amount: 20},
		domain.UnitSale{ID: "u3", Employee: domain.EmployeeIngrid, Date: testDay, ItemCount: 1, Amount: 15},
		domain.Refund{ID: "r1", Employee: domain.EmployeeIngrid, Date: testDay, Amount: 5},
		domain.TurnClose{ID: "c1", Employee: domain.EmployeeIngrid, Date: testDay, VisitorCount: 20, HoursWorked: 8},
	}
}

func TestAggregateEmployeeDay_UnitSales(t *testing.T) {
	agg := AggregateEmployeeDay(scenarioEvents(), domain.EmployeeIngrid)

	assert.Equal(t, 3, agg.Operations)
	assert.Equal(t, 4, agg.Units)
	assert.Equal(t, 45.0, agg.GrossSales)
	assert.Equal(t, 5.0, agg.Refunds)
	assert.Equal(t, 40.0, agg.NetSales)
	assert.Equal(t, 20, agg.Visitors)
	assert.Equal(t, 8.0, agg.HoursWorked)
	assert.True(t, agg.HasClose)

	assert.Equal(t, 15.00, agg.Conversion)
	assert.Equal(t, 1.33, agg.UnitsPerOperation)
	assert.Equal(t, 10.00, agg.AvgUnitPrice)
	assert.Equal(t, 13.33, agg.AvgTicket)
	assert.Equal(t, 5.00, agg.RevenuePerHour)
}

func TestAggregateEmployeeDay_LegacyPrecedence(t *testing.T) {
	// El total antiguo manda sobre los totales; el abono separado se resta
	// aparte porque la venta almacenada ya es neta de su abono interno
	events := []domain.SaleEvent{
		domain.LegacyTotal{
			ID:             "l1",
			Employee:       domain.EmployeeMarta,
			Date:           testDay,
			VisitorCount:   40,
			OperationCount: 12,
			UnitCount:      18,
			GrossSales:     480,
			NetSales:       480,
			Refunds:        50,
			HoursWorked:    8,
		},
		domain.Refund{ID: "r1", Employee: domain.EmployeeMarta, Date: testDay, Amount: 20},
		// Las ventas unitarias del mismo día no alteran los totales
		domain.UnitSale{ID: "u1", Employee: domain.EmployeeMarta, Date: testDay, ItemCount: 1, Amount: 99},
	}

	agg := AggregateEmployeeDay(events, domain.EmployeeMarta)

	assert.Equal(t, 70.0, agg.Refunds)
	assert.Equal(t, 460.0, agg.NetSales)
	assert.Equal(t, 480.0, agg.GrossSales)
	assert.Equal(t, 12, agg.Operations)
	assert.Equal(t, 18, agg.Units)
	assert.Equal(t, 40, agg.Visitors)
	assert.True(t, agg.HasClose)
}

func TestAggregateEmployeeDay_Adjustments(t *testing.T) {
	events := []domain.SaleEvent{
		domain.UnitSale{ID: "u1", Employee: domain.EmployeeIngrid, Date: testDay, ItemCount: 2, Amount: 50},
		domain.Adjustment{ID: "a1", Employee: domain.EmployeeIngrid, Date: testDay, SalesDelta: 10, RefundDelta: 5},
	}

	agg := AggregateEmployeeDay(events, domain.EmployeeIngrid)

	// neto = 50 − 0 + 10 − 5; abonos reportados incluyen el delta de abono
	assert.Equal(t, 55.0, agg.NetSales)
	assert.Equal(t, 5.0, agg.Refunds)
	assert.Equal(t, 50.0, agg.GrossSales)
}

func TestAggregateEmployeeDay_WithoutClose(t *testing.T) {
	// Un día en curso sin cierre sigue siendo mostrable: cero-guardas en
	// vez de error
	events := []domain.SaleEvent{
		domain.UnitSale{ID: "u1", Employee: domain.EmployeeIngrid, Date: testDay, ItemCount: 1, Amount: 10},
		domain.UnitSale{ID: "u2", Employee: domain.EmployeeIngrid, Date: testDay, ItemCount: 1, Amount: 30},
	}

	agg := AggregateEmployeeDay(events, domain.EmployeeIngrid)

	assert.Equal(t, 2, agg.Operations)
	assert.Equal(t, 0, agg.Visitors)
	assert.Equal(t, 0.0, agg.HoursWorked)
	assert.False(t, agg.HasClose)
	assert.Equal(t, 0.0, agg.Conversion)
	assert.Equal(t, 0.0, agg.RevenuePerHour)
	assert.Equal(t, 40.0, agg.NetSales)
	assert.Equal(t, 20.00, agg.AvgTicket)
}

func TestAggregateDay_OrderIndependence(t *testing.T) {
	events := append(scenarioEvents(),
		domain.UnitSale{ID: "m1", Employee: domain.EmployeeMarta, Date: testDay, ItemCount: 3, Amount: 60},
		domain.TurnClose{ID: "m2", Employee: domain.EmployeeMarta, Date: testDay, VisitorCount: 15, HoursWorked: 6},
	)

	basePerEmployee, baseTotal := AggregateDay(events)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]domain.SaleEvent, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		perEmployee, total := AggregateDay(shuffled)
		assert.Equal(t, basePerEmployee, perEmployee)
		assert.Equal(t, baseTotal, total)
	}
}

func TestCombineDaily_TotalsAreSums(t *testing.T) {
	events := append(scenarioEvents(),
		domain.UnitSale{ID: "m1", Employee: domain.EmployeeMarta, Date: testDay, ItemCount: 3, Amount: 60},
		domain.Refund{ID: "m2", Employee: domain.EmployeeMarta, Date: testDay, Amount: 10},
		domain.TurnClose{ID: "m3", Employee: domain.EmployeeMarta, Date: testDay, VisitorCount: 15, HoursWorked: 6},
	)

	perEmployee, total := AggregateDay(events)
	ingrid := perEmployee[domain.EmployeeIngrid]
	marta := perEmployee[domain.EmployeeMarta]

	assert.Equal(t, ingrid.Operations+marta.Operations, total.Operations)
	assert.Equal(t, ingrid.Units+marta.Units, total.Units)
	assert.Equal(t, ingrid.GrossSales+marta.GrossSales, total.GrossSales)
	assert.Equal(t, ingrid.Refunds+marta.Refunds, total.Refunds)
	assert.Equal(t, ingrid.NetSales+marta.NetSales, total.NetSales)
	assert.Equal(t, ingrid.Visitors+marta.Visitors, total.Visitors)
	assert.Equal(t, ingrid.HoursWorked+marta.HoursWorked, total.HoursWorked)
	assert.True(t, total.HasClose)

	// Los ratios combinados salen de las sumas, no de promediar ratios:
	// conversión = (3+1)×100 / (20+15)
	assert.Equal(t, 11.43, total.Conversion)
}

func TestCombineDaily_HasCloseRequiresBoth(t *testing.T) {
	_, total := AggregateDay(scenarioEvents()) // solo Ingrid tiene cierre
	assert.False(t, total.HasClose)
}

func TestDailySummary_FiltersTombstoned(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	venta := 10.0
	articulos := 1
	records := []domain.RawRecord{
		{ID: "keep", Tipo: domain.KindUnitSale, Empleada: domain.EmployeeIngrid, Fecha: testDay, Articulos: &articulos, Venta: &venta},
		{ID: "zombie", Tipo: domain.KindUnitSale, Empleada: domain.EmployeeIngrid, Fecha: testDay, Articulos: &articulos, Venta: &venta},
	}

	mockRepo := mocks.NewMockSaleEventRepository(ctrl)
	// El almacén sigue devolviendo el registro borrado ("zombie") durante
	// su ventana de consistencia
	mockRepo.EXPECT().GetByDate(testDay).Return(records, nil).Times(2)

	mask := stubMask{}
	service := NewService(mockRepo, mask)

	summary, err := service.DailySummary(testDay)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.PerEmployee[domain.EmployeeIngrid].Operations)

	mask["zombie"] = true

	summary, err = service.DailySummary(testDay)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PerEmployee[domain.EmployeeIngrid].Operations)
	assert.Equal(t, 10.0, summary.Total.NetSales)
}

func TestDailySummary_SurfacesClassificationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	records := []domain.RawRecord{
		{ID: "x1", Tipo: "desconocido", Empleada: domain.EmployeeIngrid, Fecha: testDay},
	}

	mockRepo := mocks.NewMockSaleEventRepository(ctrl)
	mockRepo.EXPECT().GetByDate(testDay).Return(records, nil)

	service := NewService(mockRepo, stubMask{})

	_, err := service.DailySummary(testDay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x1")
}

func TestLastSale_SkipsTombstoned(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockSaleEventRepository(ctrl)
	mockRepo.EXPECT().GetLast().Return(&domain.RawRecord{ID: "gone"}, nil)

	service := NewService(mockRepo, stubMask{"gone": true})

	record, err := service.LastSale()
	require.NoError(t, err)
	assert.Nil(t, record)
}
