package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/altona/sales-kpi-api/infrastructure/database/postgres"
	"github.com/altona/sales-kpi-api/internal/domain"
)

const (
	dailySummariesTable = "daily_summaries ds"
)

// DailySummaryEntry es una fila de la caché de resúmenes diarios que
// escribe el planificador. Es una comodidad para la capa de presentación;
// el motor siempre recalcula desde los registros crudos.
type DailySummaryEntry struct {
	ID        int64                `json:"id"`
	Date      time.Time            `json:"date"`
	Summary   *domain.DailySummary `json:"summary"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type DailySummaryRepository interface {
	GetByDate(date time.Time) (*DailySummaryEntry, error)
	SaveOrUpdate(entry *DailySummaryEntry) error
	DeleteOlderThan(days int) (int64, error)
}

type dailySummaryRepository struct {
	conn *postgres.Connection
}

func NewDailySummaryRepository(conn *postgres.Connection) DailySummaryRepository {
	return &dailySummaryRepository{
		conn: conn,
	}
}

func (r *dailySummaryRepository) GetByDate(date time.Time) (*DailySummaryEntry, error) {
	query, args, err := squirrel.
		Select("ds.id, ds.date, ds.summary, ds.created_at, ds.updated_at").
		From(dailySummariesTable).
		Where(squirrel.Eq{"ds.date": date.Format(time.DateOnly)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error al construir la query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	entry := &DailySummaryEntry{}
	var summaryJSON []byte

	if err := row.Scan(&entry.ID, &entry.Date, &summaryJSON, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error al escanear resumen: %w", err)
	}

	if summaryJSON != nil {
		summary := &domain.DailySummary{}
		if err := json.Unmarshal(summaryJSON, summary); err != nil {
			return nil, fmt.Errorf("error al deserializar JSON de summary: %w", err)
		}
		entry.Summary = summary
	}

	return entry, nil
}

func (r *dailySummaryRepository) SaveOrUpdate(entry *DailySummaryEntry) error {
	var summaryJSON []byte
	var err error

	if entry.Summary != nil {
		summaryJSON, err = json.Marshal(entry.Summary)
		if err != nil {
			return fmt.Errorf("error al serializar summary a JSON: %w", err)
		}
	}

	query, args, err := squirrel.StatementBuilder.
		Insert("daily_summaries").
		Columns("date", "summary").
		Values(
			entry.Date.Format(time.DateOnly),
			summaryJSON,
		).
		Suffix(`
			ON CONFLICT (date) DO UPDATE SET
				summary = EXCLUDED.summary,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error al construir la query: %w", err)
	}

	if _, err = r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("error al ejecutar la query: %w", err)
	}

	return nil
}

func (r *dailySummaryRepository) DeleteOlderThan(days int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -days).Format(time.DateOnly)

	query, args, err := squirrel.
		Delete("daily_summaries").
		Where(squirrel.Lt{"date": cutoffDate}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error al construir la query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("error al ejecutar la query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error al obtener el número de filas afectadas: %w", err)
	}

	return rowsAffected, nil
}
