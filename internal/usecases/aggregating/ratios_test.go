package aggregating

import (
	"errors"
	"testing"

	"github.com/altona/sales-kpi-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRatios_PartialMode(t *testing.T) {
	tests := []struct {
		name     string
		input    RatioInputs
		expected domain.Ratios
	}{
		{
			name: "día completo con cierre",
			input: RatioInputs{
				Visitors:    20,
				Operations:  3,
				Units:       4,
				NetSales:    40,
				HoursWorked: 8,
			},
			expected: domain.Ratios{
				Conversion:        15.00,
				UnitsPerOperation: 1.33,
				AvgUnitPrice:      10.00,
				AvgTicket:         13.33,
				RevenuePerHour:    5.00,
			},
		},
		{
			name: "sin cierre: conversión y productividad a cero",
			input: RatioInputs{
				Visitors:    0,
				Operations:  2,
				Units:       3,
				NetSales:    30,
				HoursWorked: 0,
			},
			expected: domain.Ratios{
				Conversion:        0,
				UnitsPerOperation: 1.5,
				AvgUnitPrice:      10.00,
				AvgTicket:         15.00,
				RevenuePerHour:    0,
			},
		},
		{
			name:     "sin datos: todo a cero",
			input:    RatioInputs{},
			expected: domain.Ratios{},
		},
		{
			name: "venta negativa tras ajustes",
			input: RatioInputs{
				Visitors:    10,
				Operations:  1,
				Units:       1,
				NetSales:    -5,
				HoursWorked: 2,
			},
			expected: domain.Ratios{
				Conversion:        10.00,
				UnitsPerOperation: 1.00,
				AvgUnitPrice:      -5.00,
				AvgTicket:         -5.00,
				RevenuePerHour:    -2.50,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratios, err := CalculateRatios(tt.input, ZeroOnZeroDenominator)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ratios)
		})
	}
}

func TestCalculateRatios_StrictMode(t *testing.T) {
	valid := RatioInputs{
		Visitors:    50,
		Operations:  10,
		Units:       20,
		NetSales:    100,
		HoursWorked: 10,
	}

	t.Run("denominadores positivos", func(t *testing.T) {
		ratios, err := CalculateRatios(valid, FailOnZeroDenominator)
		require.NoError(t, err)
		assert.Equal(t, 20.00, ratios.Conversion)
		assert.Equal(t, 2.00, ratios.UnitsPerOperation)
		assert.Equal(t, 5.00, ratios.AvgUnitPrice)
		assert.Equal(t, 10.00, ratios.AvgTicket)
		assert.Equal(t, 10.00, ratios.RevenuePerHour)
	})

	t.Run("cada denominador no positivo falla", func(t *testing.T) {
		tests := []struct {
			field  string
			mutate func(in RatioInputs) RatioInputs
		}{
			{"clientes", func(in RatioInputs) RatioInputs { in.Visitors = 0; return in }},
			{"operaciones", func(in RatioInputs) RatioInputs { in.Operations = 0; return in }},
			{"unidades", func(in RatioInputs) RatioInputs { in.Units = -1; return in }},
			{"horasTrabajadas", func(in RatioInputs) RatioInputs { in.HoursWorked = 0; return in }},
		}

		for _, tt := range tests {
			t.Run(tt.field, func(t *testing.T) {
				_, err := CalculateRatios(tt.mutate(valid), FailOnZeroDenominator)

				var validationErr *ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, tt.field, validationErr.Field)
			})
		}
	})
}

// El ticket medio debe coincidir con APO × PMV cuando los tres ratios salen
// del mismo conjunto de totales
func TestCalculateRatios_CrossCheck(t *testing.T) {
	tests := []RatioInputs{
		{Visitors: 50, Operations: 10, Units: 20, NetSales: 100, HoursWorked: 10},
		{Visitors: 30, Operations: 5, Units: 10, NetSales: 250, HoursWorked: 8},
		{Visitors: 100, Operations: 25, Units: 50, NetSales: 1000, HoursWorked: 16},
	}

	for _, input := range tests {
		ratios, err := CalculateRatios(input, FailOnZeroDenominator)
		require.NoError(t, err)

		diff := ratios.AvgTicket - ratios.UnitsPerOperation*ratios.AvgUnitPrice
		assert.InDelta(t, 0, diff, 0.01)
	}
}

func TestCalculateRatios_Rounding(t *testing.T) {
	ratios, err := CalculateRatios(RatioInputs{
		Visitors:    3,
		Operations:  1,
		Units:       3,
		NetSales:    10,
		HoursWorked: 7,
	}, ZeroOnZeroDenominator)
	require.NoError(t, err)

	// 1×100/3 = 33.333…, 10/3 = 3.333…, 10/7 = 1.42857…
	assert.Equal(t, 33.33, ratios.Conversion)
	assert.Equal(t, 3.33, ratios.AvgUnitPrice)
	assert.Equal(t, 1.43, ratios.RevenuePerHour)
}
