package handler

import (
	"net/http"

	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/insighting"
	"github.com/vfg2006/delivery-recon-api/pkg/apiErrors"
	"github.com/vfg2006/delivery-recon-api/pkg/log"
	"github.com/vfg2006/delivery-recon-api/pkg/utils"
)

// GetConsolidatedMetrics retorna as métricas semanais consolidadas por
// (location, semana, plataforma), com os filtros vindos da query string
func GetConsolidatedMetrics(service insighting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		filters, err := metricsFiltersFromQuery(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		metrics, err := service.ConsolidatedMetrics(filters)
		if err != nil {
			logger.WithError(err).Error("Erro ao consolidar métricas")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consolidar métricas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(metrics); err != nil {
			logger.WithError(err).Error("Erro ao enviar resposta")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}

func metricsFiltersFromQuery(r *http.Request) (*domain.MetricsFilters, error) {
	query := r.URL.Query()

	filters := &domain.MetricsFilters{
		ClientID:   query.Get("client_id"),
		LocationID: query.Get("location_id"),
	}

	if raw := query.Get("platform"); raw != "" {
		platform, err := domain.ParsePlatform(raw)
		if err != nil {
			return nil, err
		}
		filters.Platform = &platform
	}

	weekStart, err := utils.ParseDate(query.Get("week_start"))
	if err != nil {
		return nil, err
	}
	filters.WeekStart = weekStart

	weekEnd, err := utils.ParseDate(query.Get("week_end"))
	if err != nil {
		return nil, err
	}
	filters.WeekEnd = weekEnd

	return filters, nil
}
