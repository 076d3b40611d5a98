package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vfg2006/delivery-recon-api/internal/usecases/analyzing"
	"github.com/vfg2006/delivery-recon-api/pkg/apiErrors"
	"github.com/vfg2006/delivery-recon-api/pkg/log"
)

// GetDataQualityReport roda as regras de qualidade sobre as métricas
// consolidadas do cliente e devolve os avisos. Saída consultiva: nada aqui
// bloqueia ingestão.
func GetDataQualityReport(service analyzing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		clientID := r.URL.Query().Get("client_id")

		lookbackWeeks := 0
		if raw := r.URL.Query().Get("lookback_weeks"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "lookback_weeks deve ser um inteiro positivo", nil)
				return
			}
			lookbackWeeks = parsed
		}

		// Sem client_id o relatório cobre todos os clientes
		var payload any
		var err error
		if clientID == "" {
			payload, err = service.DataQualityReportAll(lookbackWeeks)
		} else {
			payload, err = service.DataQualityReport(clientID, lookbackWeeks)
		}
		if err != nil {
			logger.WithError(err).Error("Erro ao gerar relatório de qualidade")
			if errors.Is(err, analyzing.ErrClientNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrClientNotFound, "Cliente não encontrado", nil)
				return
			}
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao gerar relatório de qualidade", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.WithError(err).Error("Erro ao enviar resposta")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}
