package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/altona/sales-kpi-api/infrastructure/repository"
	"github.com/altona/sales-kpi-api/internal/config"
	"github.com/altona/sales-kpi-api/internal/usecases/aggregating"
	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// DailySummarySyncConfig es la configuración del planificador de resúmenes
// diarios
type DailySummarySyncConfig struct {
	CronSchedule  string
	LookbackDays  int
	RetentionDays int
	SyncEnabled   bool
}

// DailySummarySyncService recalcula los últimos días mediante el motor de
// agregación y los vuelca en la caché de resúmenes. La caché es una
// comodidad para la capa de presentación; ninguna agregación interactiva
// lee de ella.
type DailySummarySyncService struct {
	scheduler           *gocron.Scheduler
	config              DailySummarySyncConfig
	aggregator          aggregating.Aggregator
	dailySummaryRepo    repository.DailySummaryRepository
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

func NewDailySummarySyncService(
	aggregator aggregating.Aggregator,
	dailySummaryRepo repository.DailySummaryRepository,
	appConfig *config.Config,
) *DailySummarySyncService {
	syncConfig := DailySummarySyncConfig{
		CronSchedule:  appConfig.DailySummarySync.CronSchedule,
		LookbackDays:  appConfig.DailySummarySync.LookbackDays,
		RetentionDays: appConfig.DailySummarySync.RetentionDays,
		SyncEnabled:   appConfig.DailySummarySync.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":  syncConfig.CronSchedule,
		"lookback_days":  syncConfig.LookbackDays,
		"retention_days": syncConfig.RetentionDays,
		"sync_enabled":   syncConfig.SyncEnabled,
	}).Info("Configuración del planificador de resúmenes diarios cargada")

	return &DailySummarySyncService{
		scheduler:        gocron.NewScheduler(time.Local),
		config:           syncConfig,
		aggregator:       aggregator,
		dailySummaryRepo: dailySummaryRepo,
	}
}

// Start arranca el planificador y lo detiene cuando el contexto se cancela
func (s *DailySummarySyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronización de resúmenes diarios deshabilitada por configuración")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando planificador de resúmenes diarios")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncDailySummaries()
	})
	if err != nil {
		return fmt.Errorf("error al programar la sincronización de resúmenes diarios: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando planificador de resúmenes diarios")
		s.scheduler.Stop()
	}()

	return nil
}

// RunNow lanza una sincronización fuera de horario, para el disparador
// manual de la API
func (s *DailySummarySyncService) RunNow() {
	go s.syncDailySummaries()
}

func (s *DailySummarySyncService) syncDailySummaries() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronización de resúmenes diarios ya en curso, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	dates := s.getDatesToProcess()
	logrus.WithFields(logrus.Fields{
		"days":       s.config.LookbackDays,
		"start_date": dates[len(dates)-1].Format(time.DateOnly),
		"end_date":   dates[0].Format(time.DateOnly),
	}).Info("Período de sincronización de resúmenes diarios")

	synced := 0
	for _, date := range dates {
		summary, err := s.aggregator.DailySummary(date)
		if err != nil {
			logrus.WithError(err).WithField("date", date.Format(time.DateOnly)).
				Error("Error al calcular el resumen diario")
			continue
		}

		entry := &repository.DailySummaryEntry{
			Date:    date,
			Summary: summary,
		}
		if err := s.dailySummaryRepo.SaveOrUpdate(entry); err != nil {
			logrus.WithError(err).WithField("date", date.Format(time.DateOnly)).
				Error("Error al guardar el resumen diario en caché")
			continue
		}
		synced++
	}

	if s.config.RetentionDays > 0 {
		deleted, err := s.dailySummaryRepo.DeleteOlderThan(s.config.RetentionDays)
		if err != nil {
			logrus.WithError(err).Error("Error al purgar resúmenes antiguos")
		} else if deleted > 0 {
			logrus.WithField("deleted", deleted).Info("Resúmenes antiguos purgados")
		}
	}

	logrus.WithFields(logrus.Fields{
		"duration": time.Since(startTime).String(),
		"synced":   synced,
		"days":     s.config.LookbackDays,
	}).Info("Sincronización de resúmenes diarios completada")

	s.lastSyncCompletedAt = time.Now()
}

// getDatesToProcess genera las fechas a recalcular, de ayer hacia atrás
func (s *DailySummarySyncService) getDatesToProcess() []time.Time {
	days := s.config.LookbackDays
	if days <= 0 {
		days = 1
	}

	dates := make([]time.Time, days)
	for i := 0; i < days; i++ {
		dates[i] = time.Now().AddDate(0, 0, -i-1)
	}
	return dates
}
