package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository/mocks"
	"github.com/vfg2006/delivery-recon-api/internal/config"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/analyzing"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/insighting"
	"go.uber.org/mock/gomock"
)

func TestDataQualitySyncService_scanAllClients(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)

	// Lista de clientes do scan
	mockClientRepo.EXPECT().
		ListClients().
		Return([]*domain.Client{{ID: "CLI001", Name: "Brand"}}, nil)

	// O analisador revalida o cliente antes de gerar o relatório
	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001", Name: "Brand"}, nil)

	weekStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(domain.PlatformUberEats, gomock.Any()).
		Return([]*domain.WeeklyAggregate{
			{
				ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
				Platform: domain.PlatformUberEats, WeekStart: weekStart,
				TotalSales: 0, NetPayout: 150,
			},
		}, nil)
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(domain.PlatformDoordash, gomock.Any()).
		Return(nil, nil)
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(domain.PlatformGrubhub, gomock.Any()).
		Return(nil, nil)

	analyzer := analyzing.NewService(mockClientRepo, insighting.NewService(mockTransactionRepo))

	appConfig := &config.Config{
		DataQualitySync: config.DataQualitySync{
			CronSchedule:  "0 5 * * *",
			LookbackWeeks: 8,
			Enabled:       true,
		},
	}

	service := NewDataQualitySyncService(mockClientRepo, analyzer, appConfig)
	service.scanAllClients()

	assert.False(t, service.syncRunning)
	assert.False(t, service.lastSyncCompletedAt.IsZero())
}

func TestDataQualitySyncService_GetStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	appConfig := &config.Config{
		DataQualitySync: config.DataQualitySync{
			CronSchedule:  "0 5 * * *",
			LookbackWeeks: 8,
			Enabled:       false,
		},
	}

	service := NewDataQualitySyncService(mocks.NewMockClientRepository(ctrl), nil, appConfig)
	status := service.GetStatus()

	assert.Equal(t, false, status["sync_enabled"])
	assert.Equal(t, "0 5 * * *", status["sync_cron"])
	assert.Equal(t, 8, status["sync_lookback_weeks"])
}
