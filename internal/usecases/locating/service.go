// Package locating gerencia o catálogo de Locations: importação da lista
// mestra de lojas via planilha e listagem para a interface.
package locating

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/pkg/utils"
	"github.com/xuri/excelize/v2"
)

var (
	ErrClientNotFound = errors.New("cliente não encontrado")
	ErrEmptySheet     = errors.New("planilha sem linhas de dados")
)

type Service interface {
	ImportMasterList(clientID string, file io.Reader) (*domain.MasterImportResult, error)
	ListLocations(clientID string) ([]*domain.Location, error)
}

type service struct {
	clientRepo   repository.ClientRepository
	locationRepo repository.LocationRepository
}

func NewService(clientRepo repository.ClientRepository, locationRepo repository.LocationRepository) Service {
	return &service{
		clientRepo:   clientRepo,
		locationRepo: locationRepo,
	}
}

// ImportMasterList lê a planilha da lista mestra (coluna A: nome canônico,
// coluna B: código da loja) e cria ou atualiza as Locations do cliente.
// Linha sem nome canônico é pulada; Location existente com o mesmo store_id
// também. A primeira linha é cabeçalho.
func (s *service) ImportMasterList(clientID string, file io.Reader) (*domain.MasterImportResult, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar cliente %s: %w", clientID, err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	rows, err := readMasterRows(file)
	if err != nil {
		return nil, err
	}

	result := &domain.MasterImportResult{}
	for _, row := range rows {
		if row.CanonicalName == "" {
			result.Skipped++
			continue
		}

		existing, err := s.locationRepo.GetByCanonicalName(clientID, row.CanonicalName)
		if err != nil {
			return nil, fmt.Errorf("erro ao buscar location %q: %w", row.CanonicalName, err)
		}

		if existing == nil {
			if err := s.createLocation(clientID, row); err != nil {
				return nil, err
			}
			result.Created++
			continue
		}

		if existing.StoreID != nil && *existing.StoreID == row.StoreID {
			result.Skipped++
			continue
		}

		if err := s.locationRepo.UpdateStoreID(existing.ID, row.StoreID); err != nil {
			return nil, fmt.Errorf("erro ao atualizar store_id de %q: %w", row.CanonicalName, err)
		}
		result.Updated++
	}

	logrus.WithFields(logrus.Fields{
		"client_id": clientID,
		"created":   result.Created,
		"updated":   result.Updated,
		"skipped":   result.Skipped,
	}).Info("Lista mestra de lojas importada")

	return result, nil
}

func (s *service) createLocation(clientID string, row *domain.MasterLocationRow) error {
	id, err := utils.GenerateID()
	if err != nil {
		return fmt.Errorf("erro ao gerar id: %w", err)
	}

	location := &domain.Location{
		ID:            id,
		ClientID:      clientID,
		CanonicalName: row.CanonicalName,
	}
	if row.StoreID != "" {
		location.StoreID = &row.StoreID
	}

	if err := s.locationRepo.Create(location); err != nil {
		return fmt.Errorf("erro ao criar location %q: %w", row.CanonicalName, err)
	}

	return nil
}

func (s *service) ListLocations(clientID string) ([]*domain.Location, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar cliente %s: %w", clientID, err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	return s.locationRepo.ListByClient(clientID)
}

// readMasterRows abre o XLSX e extrai as linhas da primeira aba
func readMasterRows(file io.Reader) ([]*domain.MasterLocationRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir a planilha: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler a aba %q: %w", sheet, err)
	}

	if len(rows) <= 1 {
		return nil, ErrEmptySheet
	}

	masterRows := make([]*domain.MasterLocationRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := &domain.MasterLocationRow{}
		if len(cells) > 0 {
			row.CanonicalName = strings.TrimSpace(cells[0])
		}
		if len(cells) > 1 {
			row.StoreID = strings.TrimSpace(cells[1])
		}
		masterRows = append(masterRows, row)
	}

	return masterRows, nil
}
