package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/altona/sales-kpi-api/infrastructure/repository"
	"github.com/altona/sales-kpi-api/infrastructure/repository/mocks"
	"github.com/altona/sales-kpi-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stubAggregator devuelve un resumen fijo por fecha, o un error si la fecha
// está en la lista de fallos
type stubAggregator struct {
	failDates map[string]bool
	calls     []time.Time
}

func (s *stubAggregator) DailySummary(date time.Time) (*domain.DailySummary, error) {
	s.calls = append(s.calls, date)
	if s.failDates[domain.DayKey(date)] {
		return nil, errors.New("datos malformados")
	}
	return &domain.DailySummary{Date: date}, nil
}

func (s *stubAggregator) History(startDate, endDate time.Time) ([]domain.DayHistoryEntry, error) {
	return nil, nil
}

func (s *stubAggregator) LastSale() (*domain.RawRecord, error) {
	return nil, nil
}

func newTestService(aggregator *stubAggregator, repo repository.DailySummaryRepository, lookback, retention int) *DailySummarySyncService {
	return &DailySummarySyncService{
		config: DailySummarySyncConfig{
			CronSchedule:  "0 3 * * *",
			LookbackDays:  lookback,
			RetentionDays: retention,
			SyncEnabled:   true,
		},
		aggregator:       aggregator,
		dailySummaryRepo: repo,
	}
}

func TestSyncDailySummaries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	aggregator := &stubAggregator{}
	mockRepo := mocks.NewMockDailySummaryRepository(ctrl)
	mockRepo.EXPECT().SaveOrUpdate(gomock.Any()).Return(nil).Times(3)
	mockRepo.EXPECT().DeleteOlderThan(365).Return(int64(0), nil)

	service := newTestService(aggregator, mockRepo, 3, 365)
	service.syncDailySummaries()

	require.Len(t, aggregator.calls, 3)
	// De ayer hacia atrás
	yesterday := time.Now().AddDate(0, 0, -1)
	assert.Equal(t, domain.DayKey(yesterday), domain.DayKey(aggregator.calls[0]))
}

func TestSyncDailySummaries_SkipsFailedDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	yesterday := time.Now().AddDate(0, 0, -1)
	aggregator := &stubAggregator{failDates: map[string]bool{domain.DayKey(yesterday): true}}

	mockRepo := mocks.NewMockDailySummaryRepository(ctrl)
	// El día que falla no llega a la caché; los otros dos sí
	mockRepo.EXPECT().SaveOrUpdate(gomock.Any()).Return(nil).Times(2)
	mockRepo.EXPECT().DeleteOlderThan(365).Return(int64(0), nil)

	service := newTestService(aggregator, mockRepo, 3, 365)
	service.syncDailySummaries()

	assert.Len(t, aggregator.calls, 3)
}

func TestSyncDailySummaries_RetentionDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	aggregator := &stubAggregator{}
	mockRepo := mocks.NewMockDailySummaryRepository(ctrl)
	mockRepo.EXPECT().SaveOrUpdate(gomock.Any()).Return(nil)
	// Sin expectativa de DeleteOlderThan: con retención 0 no se purga

	service := newTestService(aggregator, mockRepo, 1, 0)
	service.syncDailySummaries()
}

func TestGetDatesToProcess_MinimumOneDay(t *testing.T) {
	service := newTestService(&stubAggregator{}, nil, 0, 0)
	dates := service.getDatesToProcess()
	require.Len(t, dates, 1)
}
