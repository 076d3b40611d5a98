package suggesting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository/mocks"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/resolving"
	"go.uber.org/mock/gomock"
)

func stringPtr(s string) *string {
	return &s
}

func clientLocations() []*domain.Location {
	return []*domain.Location{
		{
			ID:            "LOC001",
			ClientID:      "CLI001",
			CanonicalName: "Main Street - Anoka",
			DoordashName:  stringPtr("MN100477 Anoka Main"),
		},
		{
			ID:            "LOC002",
			ClientID:      "CLI001",
			CanonicalName: "Downtown Minneapolis",
		},
		{
			ID:            "LOC999",
			ClientID:      "CLI001",
			CanonicalName: domain.UnmappedLocationName,
			IsUnmapped:    true,
		},
	}
}

func TestService_ListSuggestions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)
	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)

	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)
	mockLocationRepo.EXPECT().
		ListByClient("CLI001").
		Return(clientLocations(), nil)

	mockTransactionRepo.EXPECT().
		DistinctRawNamesByLocation("CLI001", domain.PlatformUberEats, "LOC999").
		Return(nil, nil)
	mockTransactionRepo.EXPECT().
		DistinctRawNamesByLocation("CLI001", domain.PlatformDoordash, "LOC999").
		Return([]*domain.RawNameCount{
			{RawStoreName: "Main St Anoka", OrderCount: 37},
			{RawStoreName: "Galactic Noodle Bar", OrderCount: 4},
		}, nil)
	mockTransactionRepo.EXPECT().
		DistinctRawNamesByLocation("CLI001", domain.PlatformGrubhub, "LOC999").
		Return(nil, nil)

	service := NewService(mockClientRepo, mockLocationRepo, mockTransactionRepo,
		resolving.NewDirectoryLoader(mockLocationRepo), resolving.NewScorer())

	suggestions, err := service.ListSuggestions("CLI001")

	assert.NoError(t, err)
	assert.Len(t, suggestions, 2)

	// Ordenado por confiança decrescente: o quase-match vem primeiro
	assert.Equal(t, "Main St Anoka", suggestions[0].LocationName)
	assert.Equal(t, domain.PlatformDoordash, suggestions[0].Platform)
	assert.NotNil(t, suggestions[0].MatchedLocationID)
	assert.Equal(t, "LOC001", *suggestions[0].MatchedLocationID)
	assert.Greater(t, suggestions[0].Confidence, 0.5)
	assert.Equal(t, 37, suggestions[0].OrderCount)

	assert.Equal(t, "Galactic Noodle Bar", suggestions[1].LocationName)
	assert.Less(t, suggestions[1].Confidence, suggestions[0].Confidence)
}

func TestService_ListSuggestions_ClienteInexistente(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockClientRepo.EXPECT().
		GetClientByID("CLI404").
		Return(nil, nil)

	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)
	service := NewService(mockClientRepo, mockLocationRepo, mocks.NewMockTransactionRepository(ctrl),
		resolving.NewDirectoryLoader(mockLocationRepo), resolving.NewScorer())

	_, err := service.ListSuggestions("CLI404")

	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestService_ConfirmMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)
	mockTransactionRepo := mocks.NewMockTransactionRepository(ctrl)

	mockLocationRepo.EXPECT().
		GetByID("LOC001").
		Return(&domain.Location{ID: "LOC001", ClientID: "CLI001"}, nil)
	mockLocationRepo.EXPECT().
		ConfirmPlatformName("LOC001", domain.PlatformDoordash, "Main St Anoka").
		Return(nil)
	mockTransactionRepo.EXPECT().
		RebindRawName("CLI001", domain.PlatformDoordash, "Main St Anoka", "LOC001").
		Return(int64(37), nil)

	service := NewService(mockClientRepo, mockLocationRepo, mockTransactionRepo,
		resolving.NewDirectoryLoader(mockLocationRepo), resolving.NewScorer())

	err := service.ConfirmMatch("CLI001", &domain.ConfirmMatchRequest{
		RawLocationName: "Main St Anoka",
		Platform:        domain.PlatformDoordash,
		LocationID:      "LOC001",
	})

	assert.NoError(t, err)
}

func TestService_ConfirmMatch_LocationDeOutroCliente(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)
	mockLocationRepo.EXPECT().
		GetByID("LOC777").
		Return(&domain.Location{ID: "LOC777", ClientID: "CLI002"}, nil)

	service := NewService(mocks.NewMockClientRepository(ctrl), mockLocationRepo,
		mocks.NewMockTransactionRepository(ctrl),
		resolving.NewDirectoryLoader(mockLocationRepo), resolving.NewScorer())

	err := service.ConfirmMatch("CLI001", &domain.ConfirmMatchRequest{
		RawLocationName: "Loja",
		Platform:        domain.PlatformGrubhub,
		LocationID:      "LOC777",
	})

	assert.ErrorIs(t, err, ErrLocationNotFound)
}
