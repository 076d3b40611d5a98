package insighting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository/mocks"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestService_ConsolidatedMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	week1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	week2 := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(domain.PlatformUberEats, gomock.Any()).
		Return([]*domain.WeeklyAggregate{
			{
				ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
				Platform: domain.PlatformUberEats, WeekStart: week2,
				TotalSales: 1000, TotalOrders: 40,
				MarketingSpend: 100, MarketingSales: 400, NetPayout: 700,
			},
		}, nil)
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(domain.PlatformDoordash, gomock.Any()).
		Return([]*domain.WeeklyAggregate{
			{
				ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
				Platform: domain.PlatformDoordash, WeekStart: week1,
				TotalSales: 0, TotalOrders: 0, NetPayout: 150,
			},
		}, nil)
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(domain.PlatformGrubhub, gomock.Any()).
		Return(nil, nil)

	service := NewService(mockTransactionRepo)

	metrics, err := service.ConsolidatedMetrics(&domain.MetricsFilters{ClientID: "CLI001"})

	assert.NoError(t, err)
	assert.Len(t, metrics, 2)

	// Reordenado por semana depois do merge entre plataformas
	assert.Equal(t, week1, metrics[0].WeekStart)
	assert.Equal(t, domain.PlatformDoordash, metrics[0].Platform)
	// Sem pedidos e sem vendas: derivadas ficam indefinidas, não zero
	assert.Nil(t, metrics[0].AOV)
	assert.Nil(t, metrics[0].NetPayoutPercent)

	assert.Equal(t, week2, metrics[1].WeekStart)
	assert.NotNil(t, metrics[1].AOV)
	assert.Equal(t, 25.0, *metrics[1].AOV)
	assert.NotNil(t, metrics[1].MarketingRoas)
	assert.Equal(t, 4.0, *metrics[1].MarketingRoas)
	assert.NotNil(t, metrics[1].NetPayoutPercent)
	assert.Equal(t, 70.0, *metrics[1].NetPayoutPercent)
}

func TestService_ConsolidatedMetrics_FiltroDePlataforma(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	platform := domain.PlatformGrubhub
	filters := &domain.MetricsFilters{ClientID: "CLI001", Platform: &platform}

	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)
	// Somente a tabela do Grubhub é consultada
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(domain.PlatformGrubhub, filters).
		Return(nil, nil)

	service := NewService(mockTransactionRepo)

	metrics, err := service.ConsolidatedMetrics(filters)

	assert.NoError(t, err)
	assert.Empty(t, metrics)
}
