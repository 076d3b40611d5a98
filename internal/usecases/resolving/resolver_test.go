package resolving

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository/mocks"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func stringPtr(s string) *string {
	return &s
}

func testLocations() []*domain.Location {
	return []*domain.Location{
		{
			ID:                 "LOC001",
			ClientID:           "CLI001",
			CanonicalName:      "Main Street - Anoka",
			UberEatsStoreLabel: stringPtr("MN100477"),
			DoordashName:       stringPtr("MN100477 Anoka Main"),
		},
		{
			ID:            "LOC002",
			ClientID:      "CLI001",
			CanonicalName: "Downtown Minneapolis",
			GrubhubName:   stringPtr("Brand Downtown MPLS"),
		},
		{
			ID:            "LOC999",
			ClientID:      "CLI001",
			CanonicalName: domain.UnmappedLocationName,
			IsUnmapped:    true,
		},
	}
}

func loadTestDirectory(t *testing.T) *Directory {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)
	mockLocationRepo.EXPECT().
		ListByClient("CLI001").
		Return(testLocations(), nil)

	directory, err := NewDirectoryLoader(mockLocationRepo).Load("CLI001")
	assert.NoError(t, err)

	return directory
}

func TestResolver_Resolve(t *testing.T) {
	directory := loadTestDirectory(t)

	resolver, err := NewResolver(directory, NewScorer(), 0.8)
	assert.NoError(t, err)

	tests := []struct {
		name       string
		platform   domain.Platform
		rawName    string
		expectedID string
	}{
		{
			name:       "Uber Eats com código entre parênteses resolve pelo código",
			platform:   domain.PlatformUberEats,
			rawName:    "Brand (MN100477)",
			expectedID: "LOC001",
		},
		{
			name:       "Uber Eats com código desconhecido cai no fuzzy ou na sentinela",
			platform:   domain.PlatformUberEats,
			rawName:    "Brand (ZZ000000)",
			expectedID: "LOC999",
		},
		{
			name:       "DoorDash igualdade exata com o campo da plataforma",
			platform:   domain.PlatformDoordash,
			rawName:    "MN100477 Anoka Main",
			expectedID: "LOC001",
		},
		{
			name:       "DoorDash igualdade exata ignora caixa",
			platform:   domain.PlatformDoordash,
			rawName:    "mn100477 anoka main",
			expectedID: "LOC001",
		},
		{
			name:       "Grubhub igualdade exata com o nome canônico",
			platform:   domain.PlatformGrubhub,
			rawName:    "Downtown Minneapolis",
			expectedID: "LOC002",
		},
		{
			name:       "Fuzzy acima do limiar resolve para a melhor Location",
			platform:   domain.PlatformDoordash,
			rawName:    "Main Street Anoka MN",
			expectedID: "LOC001",
		},
		{
			name:       "Sem correspondência confiável cai na sentinela",
			platform:   domain.PlatformGrubhub,
			rawName:    "Totally Unrelated Kitchen",
			expectedID: "LOC999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locationID := resolver.Resolve(tt.platform, tt.rawName)

			assert.Equal(t, tt.expectedID, locationID)
			// Nunca devolve id vazio: toda linha acaba em alguma Location
			assert.NotEmpty(t, locationID)
		})
	}
}

func TestResolver_Resolve_Memoizacao(t *testing.T) {
	directory := loadTestDirectory(t)

	resolver, err := NewResolver(directory, NewScorer(), 0.8)
	assert.NoError(t, err)

	first := resolver.Resolve(domain.PlatformDoordash, "Main Street Anoka MN")
	second := resolver.Resolve(domain.PlatformDoordash, "Main Street Anoka MN")

	assert.Equal(t, first, second)
	assert.Len(t, resolver.memo, 1)
}

func TestResolver_Resolve_CodigoVenceFuzzy(t *testing.T) {
	directory := loadTestDirectory(t)

	resolver, err := NewResolver(directory, NewScorer(), 0.8)
	assert.NoError(t, err)

	// O nome sugere LOC002 por similaridade, mas o código embutido aponta
	// para LOC001: a extração de código tem precedência
	locationID := resolver.Resolve(domain.PlatformUberEats, "Downtown Minneapolis (MN100477)")

	assert.Equal(t, "LOC001", locationID)
}

func TestNewResolver_DiretorioInvalido(t *testing.T) {
	_, err := NewResolver(nil, NewScorer(), 0.8)
	assert.Error(t, err)
}

func TestDirectoryLoader_Load_CriaSentinela(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)
	mockLocationRepo.EXPECT().
		ListByClient("CLI002").
		Return([]*domain.Location{
			{ID: "LOC010", ClientID: "CLI002", CanonicalName: "Lakeville"},
		}, nil)
	mockLocationRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(location *domain.Location) error {
			assert.Equal(t, "CLI002", location.ClientID)
			assert.Equal(t, domain.UnmappedLocationName, location.CanonicalName)
			assert.True(t, location.IsUnmapped)
			return nil
		})

	directory, err := NewDirectoryLoader(mockLocationRepo).Load("CLI002")

	assert.NoError(t, err)
	assert.True(t, directory.SentinelCreated)
	assert.NotNil(t, directory.Unmapped())
}

func TestDirectoryLoader_Load_FalhaAoCriarSentinela(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)
	mockLocationRepo.EXPECT().
		ListByClient("CLI003").
		Return(nil, nil)
	mockLocationRepo.EXPECT().
		Create(gomock.Any()).
		Return(errors.New("erro de conexão"))

	directory, err := NewDirectoryLoader(mockLocationRepo).Load("CLI003")

	assert.Error(t, err)
	assert.Nil(t, directory)
}

func TestExtractStoreCode(t *testing.T) {
	tests := []struct {
		name     string
		rawName  string
		expected string
	}{
		{
			name:     "Código único entre parênteses",
			rawName:  "Brand (MN100477)",
			expected: "MN100477",
		},
		{
			name:     "Vários grupos usa o último",
			rawName:  "Brand (Anoka) (MN100477)",
			expected: "MN100477",
		},
		{
			name:     "Sem parênteses",
			rawName:  "Brand Anoka",
			expected: "",
		},
		{
			name:     "Parênteses vazios",
			rawName:  "Brand ()",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractStoreCode(tt.rawName))
		})
	}
}
