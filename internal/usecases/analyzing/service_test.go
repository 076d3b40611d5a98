package analyzing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository/mocks"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/insighting"
	"go.uber.org/mock/gomock"
)

func weekOf(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, aggregates []*domain.WeeklyAggregate) Service {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)

	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(domain.PlatformUberEats, gomock.Any()).
		Return(aggregates, nil)
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(domain.PlatformDoordash, gomock.Any()).
		Return(nil, nil)
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(domain.PlatformGrubhub, gomock.Any()).
		Return(nil, nil)

	return NewService(mockClientRepo, insighting.NewService(mockTransactionRepo))
}

func codes(report *domain.QualityReport) []string {
	found := make([]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		found = append(found, issue.Code)
	}
	return found
}

func TestService_DataQualityReport_VendasZeradasComRepasse(t *testing.T) {
	service := newTestService(t, []*domain.WeeklyAggregate{
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 1),
			TotalSales: 0, NetPayout: 150,
		},
	})

	report, err := service.DataQualityReport("CLI001", 8)

	assert.NoError(t, err)
	assert.Contains(t, codes(report), domain.QualityZeroSalesWithPayout)
}

func TestService_DataQualityReport_QuedaSemanal(t *testing.T) {
	// Queda de 5000 para 1500: 70% e mais de $1000 — sinaliza
	service := newTestService(t, []*domain.WeeklyAggregate{
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 1),
			TotalSales: 5000, TotalOrders: 100, NetPayout: 3500,
		},
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 8),
			TotalSales: 1500, TotalOrders: 30, NetPayout: 1050,
		},
	})

	report, err := service.DataQualityReport("CLI001", 8)

	assert.NoError(t, err)
	assert.Contains(t, codes(report), domain.QualityWeekOverWeekDrop)
}

func TestService_DataQualityReport_QuedaPequenaNaoSinaliza(t *testing.T) {
	// Queda de 5000 para 4900: 2% e só $100 — silencioso
	service := newTestService(t, []*domain.WeeklyAggregate{
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 1),
			TotalSales: 5000, TotalOrders: 100, NetPayout: 3500,
		},
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 8),
			TotalSales: 4900, TotalOrders: 95, NetPayout: 3430,
		},
	})

	report, err := service.DataQualityReport("CLI001", 8)

	assert.NoError(t, err)
	assert.NotContains(t, codes(report), domain.QualityWeekOverWeekDrop)
}

func TestService_DataQualityReport_SaltoSemanal(t *testing.T) {
	// Salto de 2000 para 6500: mais de 100% e mais de $2000 — provável
	// ingestão duplicada
	service := newTestService(t, []*domain.WeeklyAggregate{
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 1),
			TotalSales: 2000, TotalOrders: 50, NetPayout: 1400,
		},
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 8),
			TotalSales: 6500, TotalOrders: 160, NetPayout: 4550,
		},
	})

	report, err := service.DataQualityReport("CLI001", 8)

	assert.NoError(t, err)
	assert.Contains(t, codes(report), domain.QualityWeekOverWeekIncrease)
}

func TestService_DataQualityReport_RegrasSaoAditivas(t *testing.T) {
	// Uma mesma (location, semana) acumula todas as regras que disparar
	service := newTestService(t, []*domain.WeeklyAggregate{
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 1),
			TotalSales: 1000, TotalOrders: 20,
			MarketingSpend: 300, MarketingSales: 100, NetPayout: 200,
		},
	})

	report, err := service.DataQualityReport("CLI001", 8)

	assert.NoError(t, err)
	found := codes(report)
	assert.Contains(t, found, domain.QualityLowPayoutPercent)
	assert.Contains(t, found, domain.QualitySpendExceedsSales)
	assert.Contains(t, found, domain.QualityNegativeMargin)
}

func TestService_DataQualityReport_RoasImplausivel(t *testing.T) {
	service := newTestService(t, []*domain.WeeklyAggregate{
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 1),
			TotalSales: 5000, TotalOrders: 100,
			MarketingSpend: 10, MarketingSales: 500, NetPayout: 3500,
		},
	})

	report, err := service.DataQualityReport("CLI001", 8)

	assert.NoError(t, err)
	assert.Contains(t, codes(report), domain.QualityImplausibleRoas)
}

func TestService_DataQualityReport_ClienteInexistente(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockClientRepo.EXPECT().
		GetClientByID("CLI404").
		Return(nil, nil)

	service := NewService(mockClientRepo, insighting.NewService(mocks.NewMockTransactionRepository(ctrl)))

	_, err := service.DataQualityReport("CLI404", 8)

	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestService_DataQualityReportAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockClientRepo.EXPECT().
		ListClients().
		Return([]*domain.Client{{ID: "CLI001"}}, nil)
	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)

	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)
	mockTransactionRepo.EXPECT().
		WeeklyAggregates(gomock.Any(), gomock.Any()).
		Return(nil, nil).
		Times(3)

	service := NewService(mockClientRepo, insighting.NewService(mockTransactionRepo))

	reports, err := service.DataQualityReportAll(8)

	assert.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, "CLI001", reports[0].ClientID)
	assert.Empty(t, reports[0].Issues)
}

func TestService_DataQualityReport_SemanaComBuracoNaoComparada(t *testing.T) {
	// Queda de 5000 para 1500, mas com uma semana sem dados no meio:
	// não é comparação semana a semana
	service := newTestService(t, []*domain.WeeklyAggregate{
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 1),
			TotalSales: 5000, TotalOrders: 100, NetPayout: 3500,
		},
		{
			ClientID: "CLI001", LocationID: "LOC001", LocationName: "Anoka",
			Platform: domain.PlatformUberEats, WeekStart: weekOf(2024, 1, 15),
			TotalSales: 1500, TotalOrders: 30, NetPayout: 1050,
		},
	})

	report, err := service.DataQualityReport("CLI001", 8)

	assert.NoError(t, err)
	assert.NotContains(t, codes(report), domain.QualityWeekOverWeekDrop)
}
