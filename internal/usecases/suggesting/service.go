// Package suggesting calcula as sugestões de vínculo entre nomes brutos não
// mapeados e Locations canônicas, e aplica a confirmação humana.
package suggesting

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/resolving"
)

var (
	ErrClientNotFound   = errors.New("cliente não encontrado")
	ErrLocationNotFound = errors.New("location não encontrada")
)

type Service interface {
	ListSuggestions(clientID string) ([]*domain.MatchSuggestion, error)
	ConfirmMatch(clientID string, request *domain.ConfirmMatchRequest) error
}

type service struct {
	clientRepo      repository.ClientRepository
	locationRepo    repository.LocationRepository
	transactionRepo repository.TransactionRepository
	directoryLoader *resolving.DirectoryLoader
	scorer          resolving.Scorer
}

func NewService(
	clientRepo repository.ClientRepository,
	locationRepo repository.LocationRepository,
	transactionRepo repository.TransactionRepository,
	directoryLoader *resolving.DirectoryLoader,
	scorer resolving.Scorer,
) Service {
	return &service{
		clientRepo:      clientRepo,
		locationRepo:    locationRepo,
		transactionRepo: transactionRepo,
		directoryLoader: directoryLoader,
		scorer:          scorer,
	}
}

// ListSuggestions recalcula as sugestões sob demanda: para cada nome bruto
// distinto observado na sentinela de não mapeadas, pontua o melhor candidato
// com a mesma função de similaridade da ingestão. Nada é persistido; a
// escrita só acontece na confirmação humana.
func (s *service) ListSuggestions(clientID string) ([]*domain.MatchSuggestion, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar cliente %s: %w", clientID, err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	directory, err := s.directoryLoader.Load(clientID)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*domain.MatchSuggestion, 0)
	for _, platform := range domain.Platforms {
		rawNames, err := s.transactionRepo.DistinctRawNamesByLocation(clientID, platform, directory.Unmapped().ID)
		if err != nil {
			return nil, fmt.Errorf("erro ao listar nomes não mapeados (%s): %w", platform, err)
		}

		for _, rawName := range rawNames {
			suggestion := &domain.MatchSuggestion{
				LocationName: rawName.RawStoreName,
				Platform:     platform,
				OrderCount:   rawName.OrderCount,
			}

			if candidate, score := s.bestCandidate(directory, platform, rawName.RawStoreName); candidate != nil {
				suggestion.MatchedLocationID = &candidate.ID
				suggestion.MatchedLocation = &candidate.CanonicalName
				suggestion.Confidence = score
			}

			suggestions = append(suggestions, suggestion)
		}
	}

	// Ordenada para triagem humana: confiança decrescente, volume como
	// desempate
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return suggestions[i].OrderCount > suggestions[j].OrderCount
	})

	return suggestions, nil
}

func (s *service) bestCandidate(directory *resolving.Directory, platform domain.Platform, rawName string) (*domain.Location, float64) {
	var best *domain.Location
	bestScore := 0.0

	for _, location := range directory.Locations() {
		if location.IsUnmapped {
			continue
		}

		score := s.scorer.Score(rawName, location.CanonicalName)
		if name := location.PlatformName(platform); name != "" {
			if platformScore := s.scorer.Score(rawName, name); platformScore > score {
				score = platformScore
			}
		}

		if score > bestScore {
			bestScore = score
			best = location
		}
	}

	return best, bestScore
}

// ConfirmMatch aplica a ação humana: grava o nome bruto no campo da
// plataforma da Location alvo, marca como verificada e reatribui as
// transações já ingeridas sob aquele nome
func (s *service) ConfirmMatch(clientID string, request *domain.ConfirmMatchRequest) error {
	if request.RawLocationName == "" {
		return fmt.Errorf("raw_location_name é obrigatório")
	}

	location, err := s.locationRepo.GetByID(request.LocationID)
	if err != nil {
		return fmt.Errorf("erro ao buscar location %s: %w", request.LocationID, err)
	}
	if location == nil || location.ClientID != clientID {
		return ErrLocationNotFound
	}

	if err := s.locationRepo.ConfirmPlatformName(request.LocationID, request.Platform, request.RawLocationName); err != nil {
		return fmt.Errorf("erro ao confirmar o vínculo: %w", err)
	}

	rebound, err := s.transactionRepo.RebindRawName(clientID, request.Platform, request.RawLocationName, request.LocationID)
	if err != nil {
		return fmt.Errorf("erro ao reatribuir transações: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"client_id":   clientID,
		"platform":    request.Platform,
		"raw_name":    request.RawLocationName,
		"location_id": request.LocationID,
		"rebound":     rebound,
	}).Info("Vínculo de location confirmado")

	return nil
}
