package aggregating

import (
	"testing"
	"time"

	"github.com/altona/sales-kpi-api/infrastructure/repository/mocks"
	"github.com/altona/sales-kpi-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func legacyRecord(id string, employee domain.Employee, date time.Time, netSales float64) domain.RawRecord {
	clientes := 30
	operaciones := 5
	unidades := 8
	horas := 8.0
	return domain.RawRecord{
		ID:              id,
		Empleada:        employee,
		Fecha:           date,
		Venta:           &netSales,
		Clientes:        &clientes,
		Operaciones:     &operaciones,
		Unidades:        &unidades,
		HorasTrabajadas: &horas,
	}
}

func TestDeduplicateLegacy_FirstWins(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	records := []domain.RawRecord{
		legacyRecord("a", domain.EmployeeIngrid, day1, 100),
		legacyRecord("b", domain.EmployeeIngrid, day1, 999), // duplicado, descartado
		legacyRecord("c", domain.EmployeeMarta, day1, 200),  // misma fecha, otra empleada
		legacyRecord("d", domain.EmployeeIngrid, day2, 300),
		legacyRecord("e", domain.EmployeeIngrid, day1, 888), // duplicado, descartado
	}

	kept := DeduplicateLegacy(records)

	require.Len(t, kept, 3)
	assert.Equal(t, "a", kept[0].ID)
	assert.Equal(t, "c", kept[1].ID)
	assert.Equal(t, "d", kept[2].ID)

	// Por cada par (empleada, día) queda a lo sumo un registro
	seen := map[string]bool{}
	for _, record := range kept {
		key := string(record.Empleada) + "_" + domain.DayKey(record.Fecha)
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestDeduplicateLegacy_Empty(t *testing.T) {
	assert.Empty(t, DeduplicateLegacy(nil))
}

func TestHistory_DuplicatesCollapsedButIDsKept(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	start := day.AddDate(0, 0, -7)

	records := []domain.RawRecord{
		legacyRecord("keep", domain.EmployeeIngrid, day, 150),
		legacyRecord("dup1", domain.EmployeeIngrid, day, 700),
		legacyRecord("dup2", domain.EmployeeIngrid, day, 800),
	}

	mockRepo := mocks.NewMockSaleEventRepository(ctrl)
	mockRepo.EXPECT().GetByDateRange(start, day).Return(records, nil)

	service := NewService(mockRepo, stubMask{})

	entries, err := service.History(start, day)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	// Solo el primero cuenta para los agregados
	assert.Equal(t, 150.0, entry.PerEmployee[domain.EmployeeIngrid].NetSales)
	// Pero el borrado por día debe poder llevarse también los duplicados
	assert.ElementsMatch(t, []string{"keep", "dup1", "dup2"}, entry.SourceRecordIDs)
}

func TestHistory_NewestFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	day3 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	venta := 10.0
	articulos := 1
	records := []domain.RawRecord{
		{ID: "e1", Tipo: domain.KindUnitSale, Empleada: domain.EmployeeIngrid, Fecha: day1, Articulos: &articulos, Venta: &venta},
		{ID: "e2", Tipo: domain.KindUnitSale, Empleada: domain.EmployeeMarta, Fecha: day3, Articulos: &articulos, Venta: &venta},
		{ID: "e3", Tipo: domain.KindUnitSale, Empleada: domain.EmployeeIngrid, Fecha: day2, Articulos: &articulos, Venta: &venta},
	}

	mockRepo := mocks.NewMockSaleEventRepository(ctrl)
	mockRepo.EXPECT().GetByDateRange(day1, day3).Return(records, nil)

	service := NewService(mockRepo, stubMask{})

	entries, err := service.History(day1, day3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2024-03-10", entries[0].DateKey)
	assert.Equal(t, "2024-03-02", entries[1].DateKey)
	assert.Equal(t, "2024-03-01", entries[2].DateKey)
}

func TestHistory_MixedLegacyAndEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	venta := 25.0
	articulos := 2
	records := []domain.RawRecord{
		legacyRecord("l1", domain.EmployeeIngrid, day, 150),
		// Las ventas unitarias no se deduplican entre sí
		{ID: "e1", Tipo: domain.KindUnitSale, Empleada: domain.EmployeeMarta, Fecha: day, Articulos: &articulos, Venta: &venta},
		{ID: "e2", Tipo: domain.KindUnitSale, Empleada: domain.EmployeeMarta, Fecha: day, Articulos: &articulos, Venta: &venta},
	}

	mockRepo := mocks.NewMockSaleEventRepository(ctrl)
	mockRepo.EXPECT().GetByDateRange(day, day).Return(records, nil)

	service := NewService(mockRepo, stubMask{})

	entries, err := service.History(day, day)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, 150.0, entry.PerEmployee[domain.EmployeeIngrid].NetSales)
	assert.Equal(t, 2, entry.PerEmployee[domain.EmployeeMarta].Operations)
	assert.Equal(t, 50.0, entry.PerEmployee[domain.EmployeeMarta].NetSales)
	assert.Equal(t, 200.0, entry.Total.NetSales)
}

func TestHistory_TombstonedDayDisappears(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	records := []domain.RawRecord{
		legacyRecord("gone", domain.EmployeeIngrid, day, 150),
	}

	mockRepo := mocks.NewMockSaleEventRepository(ctrl)
	mockRepo.EXPECT().GetByDateRange(day, day).Return(records, nil)

	service := NewService(mockRepo, stubMask{"gone": true})

	entries, err := service.History(day, day)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
