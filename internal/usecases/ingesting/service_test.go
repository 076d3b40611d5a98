package ingesting

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository/mocks"
	"github.com/vfg2006/delivery-recon-api/internal/config"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/resolving"
	"go.uber.org/mock/gomock"
)

func stringPtr(s string) *string {
	return &s
}

func testConfig() *config.Config {
	return &config.Config{
		Matching:  config.Matching{FuzzyThreshold: 0.8},
		Ingestion: config.Ingestion{BatchSize: 100},
	}
}

func clientLocations() []*domain.Location {
	return []*domain.Location{
		{
			ID:                 "LOC001",
			ClientID:           "CLI001",
			CanonicalName:      "Main Street - Anoka",
			UberEatsStoreLabel: stringPtr("MN100477"),
			DoordashName:       stringPtr("MN100477 Anoka Main"),
		},
		{
			ID:            "LOC999",
			ClientID:      "CLI001",
			CanonicalName: domain.UnmappedLocationName,
			IsUnmapped:    true,
		},
	}
}

func TestService_Ingest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)
	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)

	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001", Name: "Brand"}, nil)
	mockLocationRepo.EXPECT().
		ListByClient("CLI001").
		Return(clientLocations(), nil)

	// DD-1 aparece duas vezes: a última linha do arquivo vence
	file := strings.Join([]string{
		"TRANSACTION_ID,STORE_NAME,PAYOUT_DATE,SUBTOTAL,NET_PAYOUT",
		"DD-1,MN100477 Anoka Main,2024-01-05,100.00,70.00",
		"DD-2,Unknown Kitchen XYZ,2024-01-05,50.00,35.00",
		",MN100477 Anoka Main,2024-01-05,10.00,7.00",
		"DD-1,MN100477 Anoka Main,2024-01-05,120.00,84.00",
	}, "\n")

	mockTransactionRepo.EXPECT().
		UpsertBatch(domain.PlatformDoordash, gomock.Any()).
		DoAndReturn(func(_ domain.Platform, transactions []*domain.Transaction) error {
			assert.Len(t, transactions, 2)

			// DD-1 deduplicado com os valores da última ocorrência
			assert.Equal(t, "DD-1", transactions[0].ExternalID)
			assert.Equal(t, 120.0, transactions[0].Sales)
			assert.Equal(t, "LOC001", transactions[0].LocationID)
			assert.Equal(t, "CLI001", transactions[0].ClientID)

			// DD-2 sem correspondência cai na sentinela
			assert.Equal(t, "DD-2", transactions[1].ExternalID)
			assert.Equal(t, "LOC999", transactions[1].LocationID)
			return nil
		})

	service := NewService(mockClientRepo, mockTransactionRepo,
		resolving.NewDirectoryLoader(mockLocationRepo), resolving.NewScorer(), testConfig())

	result, err := service.Ingest("CLI001", domain.PlatformDoordash, strings.NewReader(file))

	assert.NoError(t, err)
	assert.Equal(t, 3, result.RowsProcessed)
	assert.Equal(t, 1, result.RowsRejected)
	assert.Equal(t, 1, result.RowsUnmapped)
	assert.Len(t, result.RejectedRows, 1)
	assert.Equal(t, 4, result.RejectedRows[0].Line)
	assert.Contains(t, result.RejectedRows[0].Reason, "chave natural ausente")
}

func TestService_Ingest_ColunaObrigatoriaAusente(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)
	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)

	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)

	// Sem TRANSACTION_ID no cabeçalho: aborta antes de qualquer escrita
	file := "STORE_NAME,PAYOUT_DATE\nLoja,2024-01-05"

	service := NewService(mockClientRepo, mockTransactionRepo,
		resolving.NewDirectoryLoader(mockLocationRepo), resolving.NewScorer(), testConfig())

	result, err := service.Ingest("CLI001", domain.PlatformDoordash, strings.NewReader(file))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "coluna obrigatória ausente")
	assert.Nil(t, result)
}

func TestService_Ingest_ClienteInexistente(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockClientRepo.EXPECT().
		GetClientByID("CLI404").
		Return(nil, nil)

	service := NewService(mockClientRepo, mocks.NewMockTransactionRepository(ctrl),
		resolving.NewDirectoryLoader(mocks.NewMockLocationRepository(ctrl)), resolving.NewScorer(), testConfig())

	_, err := service.Ingest("CLI404", domain.PlatformGrubhub, strings.NewReader("Order Number\n"))

	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestService_Ingest_NenhumaLinhaValida(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)
	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)

	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)
	mockLocationRepo.EXPECT().
		ListByClient("CLI001").
		Return(clientLocations(), nil)

	file := strings.Join([]string{
		"TRANSACTION_ID,STORE_NAME,PAYOUT_DATE",
		",Loja A,2024-01-05",
		",Loja B,2024-01-05",
	}, "\n")

	service := NewService(mockClientRepo, mockTransactionRepo,
		resolving.NewDirectoryLoader(mockLocationRepo), resolving.NewScorer(), testConfig())

	result, err := service.Ingest("CLI001", domain.PlatformDoordash, strings.NewReader(file))

	assert.ErrorIs(t, err, ErrNoValidRows)
	assert.Equal(t, 2, result.RowsRejected)
}

func TestService_Ingest_FalhaDeLoteReportaIndice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)
	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)

	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)
	mockLocationRepo.EXPECT().
		ListByClient("CLI001").
		Return(clientLocations(), nil)

	// 3 linhas com lote de 2: o primeiro lote grava, o segundo falha e os
	// seguintes não executam
	lines := []string{"TRANSACTION_ID,STORE_NAME,PAYOUT_DATE,SUBTOTAL"}
	lines = append(lines,
		"DD-1,MN100477 Anoka Main,2024-01-05,10",
		"DD-2,MN100477 Anoka Main,2024-01-05,20",
		"DD-3,MN100477 Anoka Main,2024-01-05,30",
	)

	cfg := testConfig()
	cfg.Ingestion.BatchSize = 2

	gomock.InOrder(
		mockTransactionRepo.EXPECT().
			UpsertBatch(domain.PlatformDoordash, gomock.Len(2)).
			Return(nil),
		mockTransactionRepo.EXPECT().
			UpsertBatch(domain.PlatformDoordash, gomock.Len(1)).
			Return(errors.New("deadlock")),
	)

	service := NewService(mockClientRepo, mockTransactionRepo,
		resolving.NewDirectoryLoader(mockLocationRepo), resolving.NewScorer(), cfg)

	_, err := service.Ingest("CLI001", domain.PlatformDoordash, strings.NewReader(strings.Join(lines, "\n")))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "lote 1")
}

func TestDedupeLastWins(t *testing.T) {
	transactions := []*domain.Transaction{
		{Platform: domain.PlatformUberEats, ExternalID: "A", Sales: 1},
		{Platform: domain.PlatformUberEats, ExternalID: "B", Sales: 2},
		{Platform: domain.PlatformUberEats, ExternalID: "A", Sales: 3},
	}

	deduplicated := dedupeLastWins(transactions)

	assert.Len(t, deduplicated, 2)
	// A ordem relativa das chaves distintas é preservada; a última ocorrência
	// de cada chave vence
	assert.Equal(t, "A", deduplicated[0].ExternalID)
	assert.Equal(t, 3.0, deduplicated[0].Sales)
	assert.Equal(t, "B", deduplicated[1].ExternalID)
}

func TestDedupeLastWins_GrubhubDataNaChave(t *testing.T) {
	day1 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	transactions := []*domain.Transaction{
		{Platform: domain.PlatformGrubhub, ExternalID: "GH-1", Date: day1, Sales: 10},
		{Platform: domain.PlatformGrubhub, ExternalID: "GH-1", Date: day2, Sales: 20},
	}

	// Mesmo número de pedido em dias diferentes são transações distintas
	assert.Len(t, dedupeLastWins(transactions), 2)
}

func TestService_Purge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)

	purge := &domain.PurgeRequest{
		ClientID:  "CLI001",
		Platform:  domain.PlatformUberEats,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
	}

	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)
	mockTransactionRepo.EXPECT().
		DeleteByDateRange(purge).
		Return(int64(42), nil)

	service := NewService(mockClientRepo, mockTransactionRepo,
		resolving.NewDirectoryLoader(mocks.NewMockLocationRepository(ctrl)), resolving.NewScorer(), testConfig())

	deleted, err := service.Purge(purge)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), deleted)
}

func TestService_Purge_IntervaloInvertido(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewService(mocks.NewMockClientRepository(ctrl), mocks.NewMockTransactionRepository(ctrl),
		resolving.NewDirectoryLoader(mocks.NewMockLocationRepository(ctrl)), resolving.NewScorer(), testConfig())

	_, err := service.Purge(&domain.PurgeRequest{
		ClientID:  "CLI001",
		Platform:  domain.PlatformUberEats,
		StartDate: time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestService_Ingest_CabecalhoComBOM(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)
	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)

	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)
	mockLocationRepo.EXPECT().
		ListByClient("CLI001").
		Return(clientLocations(), nil)

	// Export do Excel com BOM UTF-8 antes da primeira célula do cabeçalho
	file := "\uFEFF" + strings.Join([]string{
		"TRANSACTION_ID,STORE_NAME,PAYOUT_DATE,SUBTOTAL,NET_PAYOUT",
		"DD-1,MN100477 Anoka Main,2024-01-05,100.00,70.00",
		"DD-1,MN100477 Anoka Main,2024-01-05,99.00,70.00",
	}, "\n")

	mockTransactionRepo.EXPECT().
		UpsertBatch(domain.PlatformDoordash, gomock.Any()).
		DoAndReturn(func(_ domain.Platform, transactions []*domain.Transaction) error {
			assert.Len(t, transactions, 1)
			assert.Equal(t, "DD-1", transactions[0].ExternalID)
			assert.Equal(t, 99.0, transactions[0].Sales)
			return nil
		})

	service := NewService(mockClientRepo, mockTransactionRepo,
		resolving.NewDirectoryLoader(mockLocationRepo), resolving.NewScorer(), testConfig())

	result, err := service.Ingest("CLI001", domain.PlatformDoordash, strings.NewReader(file))

	assert.NoError(t, err)
	assert.Equal(t, 2, result.RowsProcessed)
	assert.Equal(t, 0, result.RowsRejected)
}
