package locating

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository/mocks"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
)

func stringPtr(s string) *string {
	return &s
}

func masterListXLSX(t *testing.T, rows [][]string) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, cells := range rows {
		for j, value := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			assert.NoError(t, err)
			assert.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	buffer, err := f.WriteToBuffer()
	assert.NoError(t, err)
	return buffer
}

func TestService_ImportMasterList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockLocationRepo := mocks.NewMockLocationRepository(ctrl)

	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)

	// Nova: não existe ainda
	mockLocationRepo.EXPECT().
		GetByCanonicalName("CLI001", "Main Street - Anoka").
		Return(nil, nil)
	mockLocationRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(location *domain.Location) error {
			assert.Equal(t, "CLI001", location.ClientID)
			assert.Equal(t, "Main Street - Anoka", location.CanonicalName)
			assert.Equal(t, "MN100477", *location.StoreID)
			assert.False(t, location.IsUnmapped)
			return nil
		})

	// Existente com store_id diferente: atualiza
	mockLocationRepo.EXPECT().
		GetByCanonicalName("CLI001", "Downtown Minneapolis").
		Return(&domain.Location{ID: "LOC002", ClientID: "CLI001", StoreID: stringPtr("OLD")}, nil)
	mockLocationRepo.EXPECT().
		UpdateStoreID("LOC002", "MN100500").
		Return(nil)

	// Existente com o mesmo store_id: pulada
	mockLocationRepo.EXPECT().
		GetByCanonicalName("CLI001", "Lakeville").
		Return(&domain.Location{ID: "LOC003", ClientID: "CLI001", StoreID: stringPtr("MN100600")}, nil)

	file := masterListXLSX(t, [][]string{
		{"Location Name", "Store ID"},
		{"Main Street - Anoka", "MN100477"},
		{"Downtown Minneapolis", "MN100500"},
		{"Lakeville", "MN100600"},
		{"", "MN999999"}, // sem nome canônico: pulada
	})

	service := NewService(mockClientRepo, mockLocationRepo)

	result, err := service.ImportMasterList("CLI001", file)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, result.Skipped)
}

func TestService_ImportMasterList_PlanilhaVazia(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)

	file := masterListXLSX(t, [][]string{{"Location Name", "Store ID"}})

	service := NewService(mockClientRepo, mocks.NewMockLocationRepository(ctrl))

	_, err := service.ImportMasterList("CLI001", file)

	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestService_ImportMasterList_ArquivoInvalido(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockClientRepo.EXPECT().
		GetClientByID("CLI001").
		Return(&domain.Client{ID: "CLI001"}, nil)

	service := NewService(mockClientRepo, mocks.NewMockLocationRepository(ctrl))

	_, err := service.ImportMasterList("CLI001", strings.NewReader("não é um xlsx"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "erro ao abrir a planilha")
}

func TestService_ListLocations_ClienteInexistente(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockClientRepo.EXPECT().
		GetClientByID("CLI404").
		Return(nil, nil)

	service := NewService(mockClientRepo, mocks.NewMockLocationRepository(ctrl))

	_, err := service.ListLocations("CLI404")

	assert.ErrorIs(t, err, ErrClientNotFound)
}
