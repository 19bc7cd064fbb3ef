package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/altona/sales-kpi-api/infrastructure/database/postgres"
	"github.com/altona/sales-kpi-api/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
)

const (
	saleEventsTable   = "sale_events se"
	saleEventsColumns = "se.id, se.tipo, se.empleada, se.fecha, se.hora, se.articulos, " +
		"se.venta, se.abono, se.clientes, se.horas_trabajadas, se.venta_ajuste, " +
		"se.abono_ajuste, se.motivo, se.operaciones, se.unidades, se.venta_bruta, " +
		"se.abonos, se.created_at"
)

// SaleEventRepository es el almacén de registros crudos de venta. El motor
// asume que Delete es visible para las consultas posteriores de forma
// eventual, no inmediata; la máscara de borrado cubre esa ventana.
type SaleEventRepository interface {
	Append(record *domain.RawRecord) error
	GetByDate(date time.Time) ([]domain.RawRecord, error)
	GetByDateRange(startDate, endDate time.Time) ([]domain.RawRecord, error)
	GetByEmployee(employee domain.Employee, limit uint64) ([]domain.RawRecord, error)
	GetLast() (*domain.RawRecord, error)
	Delete(id string) error
}

type saleEventRepository struct {
	conn *postgres.Connection
}

func NewSaleEventRepository(conn *postgres.Connection) SaleEventRepository {
	return &saleEventRepository{
		conn: conn,
	}
}

// newBackOff limita los reintentos de consultas transitorias. El reintento
// vive aquí, en el colaborador de almacenamiento; el motor de agregación
// nunca reintenta.
func newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	return bo
}

func (r *saleEventRepository) Append(record *domain.RawRecord) error {
	query, args, err := squirrel.StatementBuilder.
		Insert("sale_events").
		Columns(
			"id", "tipo", "empleada", "fecha", "hora", "articulos", "venta",
			"abono", "clientes", "horas_trabajadas", "venta_ajuste",
			"abono_ajuste", "motivo", "operaciones", "unidades", "venta_bruta",
			"abonos",
		).
		Values(
			record.ID,
			nullString(record.Tipo),
			string(record.Empleada),
			record.Fecha.Format(time.DateOnly),
			nullString(record.Hora),
			record.Articulos,
			record.Venta,
			record.Abono,
			record.Clientes,
			record.HorasTrabajadas,
			record.VentaAjuste,
			record.AbonoAjuste,
			nullString(record.Motivo),
			record.Operaciones,
			record.Unidades,
			record.VentaBruta,
			record.Abonos,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error al construir la query: %w", err)
	}

	err = backoff.Retry(func() error {
		_, execErr := r.conn.Exec(query, args...)
		return execErr
	}, newBackOff())
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("error de base de datos: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("error al ejecutar la query: %w", err)
	}

	return nil
}

func (r *saleEventRepository) GetByDate(date time.Time) ([]domain.RawRecord, error) {
	return r.GetByDateRange(date, date)
}

func (r *saleEventRepository) GetByDateRange(startDate, endDate time.Time) ([]domain.RawRecord, error) {
	query, args, err := squirrel.
		Select(saleEventsColumns).
		From(saleEventsTable).
		Where(squirrel.GtOrEq{"se.fecha": startDate.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"se.fecha": endDate.Format(time.DateOnly)}).
		OrderBy("se.fecha DESC", "se.created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error al construir la query: %w", err)
	}

	return r.queryRecords(query, args...)
}

func (r *saleEventRepository) GetByEmployee(employee domain.Employee, limit uint64) ([]domain.RawRecord, error) {
	query, args, err := squirrel.
		Select(saleEventsColumns).
		From(saleEventsTable).
		Where(squirrel.Eq{"se.empleada": string(employee)}).
		OrderBy("se.fecha DESC", "se.created_at DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error al construir la query: %w", err)
	}

	return r.queryRecords(query, args...)
}

func (r *saleEventRepository) GetLast() (*domain.RawRecord, error) {
	query, args, err := squirrel.
		Select(saleEventsColumns).
		From(saleEventsTable).
		OrderBy("se.fecha DESC", "se.created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error al construir la query: %w", err)
	}

	records, err := r.queryRecords(query, args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	return &records[0], nil
}

func (r *saleEventRepository) Delete(id string) error {
	query, args, err := squirrel.
		Delete("sale_events").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error al construir la query: %w", err)
	}

	err = backoff.Retry(func() error {
		_, execErr := r.conn.Exec(query, args...)
		return execErr
	}, newBackOff())
	if err != nil {
		return fmt.Errorf("error al ejecutar la query: %w", err)
	}

	return nil
}

func (r *saleEventRepository) queryRecords(query string, args ...interface{}) ([]domain.RawRecord, error) {
	var rows *sql.Rows

	err := backoff.Retry(func() error {
		var queryErr error
		rows, queryErr = r.conn.Query(query, args...)
		return queryErr
	}, newBackOff())
	if err != nil {
		return nil, fmt.Errorf("error al ejecutar la query: %w", err)
	}
	defer rows.Close()

	records := make([]domain.RawRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error al escanear registro: %w", err)
		}
		records = append(records, *record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error durante la iteración de filas: %w", err)
	}

	return records, nil
}

func scanRecord(rows *sql.Rows) (*domain.RawRecord, error) {
	var (
		record          domain.RawRecord
		tipo            sql.NullString
		empleada        string
		fecha           time.Time
		hora            sql.NullString
		articulos       sql.NullInt64
		venta           sql.NullFloat64
		abono           sql.NullFloat64
		clientes        sql.NullInt64
		horasTrabajadas sql.NullFloat64
		ventaAjuste     sql.NullFloat64
		abonoAjuste     sql.NullFloat64
		motivo          sql.NullString
		operaciones     sql.NullInt64
		unidades        sql.NullInt64
		ventaBruta      sql.NullFloat64
		abonos          sql.NullFloat64
	)

	err := rows.Scan(
		&record.ID,
		&tipo,
		&empleada,
		&fecha,
		&hora,
		&articulos,
		&venta,
		&abono,
		&clientes,
		&horasTrabajadas,
		&ventaAjuste,
		&abonoAjuste,
		&motivo,
		&operaciones,
		&unidades,
		&ventaBruta,
		&abonos,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Tipo = tipo.String
	record.Empleada = domain.Employee(empleada)
	record.Fecha = fecha
	record.Hora = hora.String
	record.Motivo = motivo.String
	record.Articulos = nullIntPtr(articulos)
	record.Venta = nullFloatPtr(venta)
	record.Abono = nullFloatPtr(abono)
	record.Clientes = nullIntPtr(clientes)
	record.HorasTrabajadas = nullFloatPtr(horasTrabajadas)
	record.VentaAjuste = nullFloatPtr(ventaAjuste)
	record.AbonoAjuste = nullFloatPtr(abonoAjuste)
	record.Operaciones = nullIntPtr(operaciones)
	record.Unidades = nullIntPtr(unidades)
	record.VentaBruta = nullFloatPtr(ventaBruta)
	record.Abonos = nullFloatPtr(abonos)

	return &record, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	value := int(v.Int64)
	return &value
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
