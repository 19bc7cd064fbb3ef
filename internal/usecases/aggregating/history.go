package aggregating

import (
	"sort"
	"time"

	"github.com/altona/sales-kpi-api/internal/domain"
)

// DeduplicateLegacy colapsa duplicados del formato antiguo que comparten la
// clave (empleada, día natural): primero-gana. El componente no compara
// fechas de creación; un llamador que quiera "gana el más reciente" debe
// ordenar la entrada descendente por recencia antes de llamar.
func DeduplicateLegacy(records []domain.RawRecord) []domain.RawRecord {
	if len(records) == 0 {
		return records
	}

	seen := make(map[string]bool, len(records))
	kept := make([]domain.RawRecord, 0, len(records))

	for _, record := range records {
		key := string(record.Empleada) + "_" + domain.DayKey(record.Fecha)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, record)
	}

	return kept
}

// History construye la vista histórica multi-día: una entrada por día, del
// más reciente al más antiguo, con los agregados por empleada, el combinado
// y todos los ids de registro del día. La deduplicación primero-gana se
// aplica solo al subconjunto del formato antiguo; los ids de los duplicados
// descartados siguen presentes en SourceRecordIDs para que el borrado por
// día los elimine también.
func (s *Service) History(startDate, endDate time.Time) ([]domain.DayHistoryEntry, error) {
	records, err := s.saleEventRepo.GetByDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	records = filterTombstoned(records, s.mask)

	legacy, eventRecords := splitLegacyShaped(records)
	kept := append(DeduplicateLegacy(legacy), eventRecords...)

	recordsByDay := make(map[string][]domain.RawRecord)
	for _, record := range kept {
		key := domain.DayKey(record.Fecha)
		recordsByDay[key] = append(recordsByDay[key], record)
	}

	idsByDay := make(map[string][]string)
	for _, record := range records {
		key := domain.DayKey(record.Fecha)
		idsByDay[key] = append(idsByDay[key], record.ID)
	}

	dayKeys := make([]string, 0, len(idsByDay))
	for key := range idsByDay {
		dayKeys = append(dayKeys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dayKeys)))

	entries := make([]domain.DayHistoryEntry, 0, len(dayKeys))
	for _, key := range dayKeys {
		events, err := classifyAll(recordsByDay[key])
		if err != nil {
			return nil, err
		}

		perEmployee, total := AggregateDay(events)
		entries = append(entries, domain.DayHistoryEntry{
			DateKey:         key,
			PerEmployee:     perEmployee,
			Total:           total,
			SourceRecordIDs: idsByDay[key],
		})
	}

	return entries, nil
}

// splitLegacyShaped separa los registros con forma de total diario antiguo
// (sin tipo o con tipo "total") del resto de eventos
func splitLegacyShaped(records []domain.RawRecord) (legacy, events []domain.RawRecord) {
	for _, record := range records {
		if record.Tipo == "" || record.Tipo == domain.KindLegacyTotal {
			legacy = append(legacy, record)
			continue
		}
		events = append(events, record)
	}

	return legacy, events
}
