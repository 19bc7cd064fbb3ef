package domain

// Classify asigna un registro crudo a una de las cinco variantes según su
// discriminador `tipo`. La ausencia de discriminador (o el valor "total")
// junto con campos de clientes y operaciones identifica un registro del
// formato antiguo. Un discriminador desconocido es un ClassificationError
// que se devuelve al llamador; nunca se descarta en silencio.
func Classify(r RawRecord) (SaleEvent, error) {
	switch r.Tipo {
	case KindUnitSale:
		return UnitSale{
			ID:        r.ID,
			Employee:  r.Empleada,
			Date:      r.Fecha,
			Time:      r.Hora,
			ItemCount: intValue(r.Articulos),
			Amount:    floatValue(r.Venta),
		}, nil

	case KindRefund:
		return Refund{
			ID:       r.ID,
			Employee: r.Empleada,
			Date:     r.Fecha,
			Time:     r.Hora,
			Amount:   floatValue(r.Abono),
		}, nil

	case KindTurnClose:
		return TurnClose{
			ID:           r.ID,
			Employee:     r.Empleada,
			Date:         r.Fecha,
			VisitorCount: intValue(r.Clientes),
			HoursWorked:  floatValue(r.HorasTrabajadas),
		}, nil

	case KindAdjustment:
		return Adjustment{
			ID:          r.ID,
			Employee:    r.Empleada,
			Date:        r.Fecha,
			SalesDelta:  floatValue(r.VentaAjuste),
			RefundDelta: floatValue(r.AbonoAjuste),
			Reason:      r.Motivo,
		}, nil

	case "", KindLegacyTotal:
		if r.Clientes == nil || r.Operaciones == nil {
			return nil, &ClassificationError{RecordID: r.ID, Tipo: r.Tipo}
		}

		net := floatValue(r.Venta)
		gross := net
		if r.VentaBruta != nil {
			gross = *r.VentaBruta
		}

		return LegacyTotal{
			ID:             r.ID,
			Employee:       r.Empleada,
			Date:           r.Fecha,
			VisitorCount:   *r.Clientes,
			OperationCount: *r.Operaciones,
			UnitCount:      intValue(r.Unidades),
			GrossSales:     gross,
			NetSales:       net,
			Refunds:        floatValue(r.Abonos),
			HoursWorked:    floatValue(r.HorasTrabajadas),
		}, nil
	}

	return nil, &ClassificationError{RecordID: r.ID, Tipo: r.Tipo}
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func floatValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
