// Package insighting monta a visão consolidada de performance por
// (location, semana, plataforma) a partir das transações já ingeridas.
// Tudo é calculado na leitura; não existe estado derivado durável.
package insighting

import (
	"fmt"
	"sort"

	"github.com/vfg2006/delivery-recon-api/infrastructure/repository"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
)

type Service interface {
	ConsolidatedMetrics(filters *domain.MetricsFilters) ([]*domain.ConsolidatedMetrics, error)
}

type service struct {
	transactionRepo repository.TransactionRepository
}

func NewService(transactionRepo repository.TransactionRepository) Service {
	return &service{
		transactionRepo: transactionRepo,
	}
}

// ConsolidatedMetrics consulta os agregados semanais de cada plataforma e
// deriva as métricas de leitura (AOV, ROAS, percentual de repasse). Com o
// filtro de plataforma, só aquela tabela é consultada.
func (s *service) ConsolidatedMetrics(filters *domain.MetricsFilters) ([]*domain.ConsolidatedMetrics, error) {
	platforms := domain.Platforms
	if filters != nil && filters.Platform != nil {
		platforms = []domain.Platform{*filters.Platform}
	}

	metrics := make([]*domain.ConsolidatedMetrics, 0)
	for _, platform := range platforms {
		aggregates, err := s.transactionRepo.WeeklyAggregates(platform, filters)
		if err != nil {
			return nil, fmt.Errorf("erro ao agregar métricas (%s): %w", platform, err)
		}

		for _, aggregate := range aggregates {
			metrics = append(metrics, domain.ConsolidateWeekly(aggregate))
		}
	}

	// Cada repositório devolve ordenado por semana; o merge entre plataformas
	// precisa reordenar
	sort.SliceStable(metrics, func(i, j int) bool {
		if !metrics[i].WeekStart.Equal(metrics[j].WeekStart) {
			return metrics[i].WeekStart.Before(metrics[j].WeekStart)
		}
		if metrics[i].LocationName != metrics[j].LocationName {
			return metrics[i].LocationName < metrics[j].LocationName
		}
		return metrics[i].Platform < metrics[j].Platform
	})

	return metrics, nil
}
