package handler

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/suggesting"
	"github.com/vfg2006/delivery-recon-api/pkg/apiErrors"
)

// ListMatchSuggestions lista as sugestões de match para os nomes brutos
// pendentes do cliente, ordenadas por confiança
func ListMatchSuggestions(service suggesting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if clientID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do cliente não fornecido", nil)
			return
		}

		suggestions, err := service.ListSuggestions(clientID)
		if err != nil {
			logrus.Error(err)
			if errors.Is(err, suggesting.ErrClientNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrClientNotFound, "Cliente não encontrado", nil)
				return
			}
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao calcular sugestões de match", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(suggestions); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}

// ConfirmMatchSuggestion confirma o vínculo de um nome bruto a uma Location
// canônica e religa as transações históricas daquele nome
func ConfirmMatchSuggestion(service suggesting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - ConfirmMatchSuggestion")

		clientID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if clientID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do cliente não fornecido", nil)
			return
		}

		var req domain.ConfirmMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		if req.RawLocationName == "" || req.LocationID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Nome bruto e location de destino são obrigatórios", nil)
			return
		}

		if _, err := domain.ParsePlatform(req.Platform.String()); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Plataforma inválida. Valores aceitos: ubereats, doordash, grubhub", nil)
			return
		}

		if err := service.ConfirmMatch(clientID, &req); err != nil {
			logrus.Error(err)
			switch {
			case errors.Is(err, suggesting.ErrClientNotFound):
				apiErrors.WriteError(w, apiErrors.ErrClientNotFound, "Cliente não encontrado", nil)
			case errors.Is(err, suggesting.ErrLocationNotFound):
				apiErrors.WriteError(w, apiErrors.ErrLocationNotFound, "Location não encontrada para este cliente", nil)
			default:
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao confirmar sugestão de match", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	}
}
