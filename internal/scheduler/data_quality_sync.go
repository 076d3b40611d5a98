package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository"
	"github.com/vfg2006/delivery-recon-api/internal/config"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/analyzing"
)

// DataQualitySyncConfig representa a configuração do agendador do scan de
// qualidade de dados
type DataQualitySyncConfig struct {
	CronSchedule  string
	LookbackWeeks int
	SyncEnabled   bool
}

// DataQualitySyncService agenda o scan periódico de qualidade de dados sobre
// as métricas semanais consolidadas de todos os clientes. Saída consultiva:
// os avisos vão para o log, nunca bloqueiam ingestão.
type DataQualitySyncService struct {
	scheduler           *gocron.Scheduler
	config              DataQualitySyncConfig
	clientRepo          repository.ClientRepository
	analyzer            analyzing.Service
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewDataQualitySyncService cria uma nova instância do serviço de scan de qualidade
func NewDataQualitySyncService(
	clientRepo repository.ClientRepository,
	analyzer analyzing.Service,
	appConfig *config.Config,
) *DataQualitySyncService {
	qualityConfig := DataQualitySyncConfig{
		CronSchedule:  appConfig.DataQualitySync.CronSchedule,
		LookbackWeeks: appConfig.DataQualitySync.LookbackWeeks,
		SyncEnabled:   appConfig.DataQualitySync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":  qualityConfig.CronSchedule,
		"lookback_weeks": qualityConfig.LookbackWeeks,
		"sync_enabled":   qualityConfig.SyncEnabled,
	}).Info("Configuração do agendador de qualidade de dados carregada")

	return &DataQualitySyncService{
		scheduler:   scheduler,
		config:      qualityConfig,
		clientRepo:  clientRepo,
		analyzer:    analyzer,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *DataQualitySyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Scan de qualidade de dados desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador do scan de qualidade de dados")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.scanAllClients()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar scan de qualidade de dados: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador do scan de qualidade de dados")
		s.scheduler.Stop()
	}()

	return nil
}

// scanAllClients roda o relatório de qualidade para todos os clientes
func (s *DataQualitySyncService) scanAllClients() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Scan de qualidade de dados já em andamento, ignorando")
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

	logrus.Info("Iniciando scan de qualidade de dados para todos os clientes")

	clients, err := s.clientRepo.ListClients()
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar lista de clientes para o scan de qualidade")
		return
	}

	if len(clients) == 0 {
		logrus.Info("Nenhum cliente encontrado para o scan de qualidade de dados")
		return
	}

	totalIssues := 0
	for _, client := range clients {
		report, err := s.analyzer.DataQualityReport(client.ID, s.config.LookbackWeeks)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"client_id": client.ID,
				"error":     err.Error(),
			}).Error("Erro ao gerar relatório de qualidade para o cliente")
			continue
		}

		for _, issue := range report.Issues {
			logrus.WithFields(logrus.Fields{
				"client_id":   issue.ClientID,
				"location_id": issue.LocationID,
				"location":    issue.LocationName,
				"week_start":  issue.WeekStart.Format(time.DateOnly),
				"code":        issue.Code,
			}).Warn(issue.Message)
		}

		totalIssues += len(report.Issues)
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration": duration.String(),
		"clients":  len(clients),
		"issues":   totalIssues,
	}).Info("Scan de qualidade de dados concluído")

	s.lastSyncCompletedAt = time.Now()
}

// TriggerManualSync inicia manualmente um scan de qualidade de dados
func (s *DataQualitySyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Scan de qualidade de dados já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando scan manual de qualidade de dados")
	go s.scanAllClients()
}

// GetStatus retorna o status atual do agendador
func (s *DataQualitySyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_weeks":    s.config.LookbackWeeks,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
