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
	"github.com/vfg2006/delivery-recon-api/internal/usecases/suggesting"
)

// Sugestões com confiança a partir daqui entram no resumo diário
const digestConfidenceFloor = 0.5

// SuggestionDigestSyncConfig representa a configuração do agendador do
// resumo de sugestões de match
type SuggestionDigestSyncConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// SuggestionDigestSyncService agenda o resumo periódico das sugestões de
// match pendentes por cliente, para dar visibilidade ao backlog de nomes não
// mapeados sem depender de alguém abrir a tela de triagem.
type SuggestionDigestSyncService struct {
	scheduler           *gocron.Scheduler
	config              SuggestionDigestSyncConfig
	clientRepo          repository.ClientRepository
	suggester           suggesting.Service
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewSuggestionDigestSyncService cria uma nova instância do serviço de resumo de sugestões
func NewSuggestionDigestSyncService(
	clientRepo repository.ClientRepository,
	suggester suggesting.Service,
	appConfig *config.Config,
) *SuggestionDigestSyncService {
	digestConfig := SuggestionDigestSyncConfig{
		CronSchedule: appConfig.SuggestionSync.CronSchedule,
		SyncEnabled:  appConfig.SuggestionSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": digestConfig.CronSchedule,
		"sync_enabled":  digestConfig.SyncEnabled,
	}).Info("Configuração do agendador de resumo de sugestões carregada")

	return &SuggestionDigestSyncService{
		scheduler:   scheduler,
		config:      digestConfig,
		clientRepo:  clientRepo,
		suggester:   suggester,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *SuggestionDigestSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Resumo de sugestões de match desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador do resumo de sugestões de match")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.digestAllClients()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar resumo de sugestões: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador do resumo de sugestões de match")
		s.scheduler.Stop()
	}()

	return nil
}

// digestAllClients recalcula as sugestões de todos os clientes e loga o
// resumo das pendências com melhor confiança
func (s *SuggestionDigestSyncService) digestAllClients() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Resumo de sugestões já em andamento, ignorando")
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

	logrus.Info("Iniciando resumo de sugestões de match para todos os clientes")

	clients, err := s.clientRepo.ListClients()
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar lista de clientes para o resumo de sugestões")
		return
	}

	for _, client := range clients {
		suggestions, err := s.suggester.ListSuggestions(client.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"client_id": client.ID,
				"error":     err.Error(),
			}).Error("Erro ao calcular sugestões para o cliente")
			continue
		}

		confident := 0
		for _, suggestion := range suggestions {
			if suggestion.Confidence < digestConfidenceFloor {
				continue
			}
			confident++

			logrus.WithFields(logrus.Fields{
				"client_id":   client.ID,
				"platform":    suggestion.Platform,
				"raw_name":    suggestion.LocationName,
				"confidence":  suggestion.Confidence,
				"order_count": suggestion.OrderCount,
			}).Info("Sugestão de match pendente de confirmação")
		}

		logrus.WithFields(logrus.Fields{
			"client_id": client.ID,
			"pending":   len(suggestions),
			"confident": confident,
		}).Info("Resumo de sugestões do cliente")
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration": duration.String(),
		"clients":  len(clients),
	}).Info("Resumo de sugestões de match concluído")

	s.lastSyncCompletedAt = time.Now()
}

// TriggerManualSync inicia manualmente um resumo de sugestões
func (s *SuggestionDigestSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Resumo de sugestões já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando resumo manual de sugestões de match")
	go s.digestAllClients()
}

// GetStatus retorna o status atual do agendador
func (s *SuggestionDigestSyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"confidence_floor":       digestConfidenceFloor,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
