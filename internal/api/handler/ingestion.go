package handler

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/ingesting"
	"github.com/vfg2006/delivery-recon-api/pkg/apiErrors"
	"github.com/vfg2006/delivery-recon-api/pkg/utils"
)

// Limite de memória para o parse do multipart (10 MB)
const maxIngestionFormMemory = 10 << 20

// IngestTransactions recebe o export semanal de uma plataforma (CSV via
// multipart) e dispara a ingestão para o cliente da URL
func IngestTransactions(service ingesting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - IngestTransactions")

		clientID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if clientID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do cliente não fornecido", nil)
			return
		}

		if err := r.ParseMultipartForm(maxIngestionFormMemory); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Requisição multipart inválida", nil)
			return
		}

		platform, err := domain.ParsePlatform(r.FormValue("platform"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Plataforma inválida. Valores aceitos: ubereats, doordash, grubhub", nil)
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Arquivo de transações não fornecido", nil)
			return
		}
		defer file.Close()

		result, err := service.Ingest(clientID, platform, file)
		if err != nil {
			handleIngestionError(w, err, result)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}

// PurgeTransactions apaga as transações de uma plataforma no intervalo de
// datas informado, para permitir o reimport limpo de uma semana
func PurgeTransactions(service ingesting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - PurgeTransactions")

		clientID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if clientID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do cliente não fornecido", nil)
			return
		}

		platform, err := domain.ParsePlatform(r.URL.Query().Get("platform"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Plataforma inválida. Valores aceitos: ubereats, doordash, grubhub", nil)
			return
		}

		startDate, err := utils.ParseDate(r.URL.Query().Get("start_date"))
		if err != nil || startDate == nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Data inicial inválida. Formato esperado: YYYY-MM-DD", nil)
			return
		}

		endDate, err := utils.ParseDate(r.URL.Query().Get("end_date"))
		if err != nil || endDate == nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Data final inválida. Formato esperado: YYYY-MM-DD", nil)
			return
		}

		deleted, err := service.Purge(&domain.PurgeRequest{
			ClientID:  clientID,
			Platform:  platform,
			StartDate: *startDate,
			EndDate:   *endDate,
		})
		if err != nil {
			logrus.Error(err)
			switch {
			case errors.Is(err, ingesting.ErrClientNotFound):
				apiErrors.WriteError(w, apiErrors.ErrClientNotFound, "Cliente não encontrado", nil)
			case errors.Is(err, ingesting.ErrInvalidDateRange):
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Data final anterior à data inicial", nil)
			default:
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao apagar transações", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"platform":             platform,
			"transactions_deleted": deleted,
		})
	}
}

// handleIngestionError traduz os erros da ingestão para as respostas da API.
// Quando há resultado parcial (ex.: todas as linhas rejeitadas), ele vai nos
// detalhes para o operador ver o que foi recusado.
func handleIngestionError(w http.ResponseWriter, err error, result *domain.IngestionResult) {
	logrus.Error(err)

	switch {
	case errors.Is(err, ingesting.ErrClientNotFound):
		apiErrors.WriteError(w, apiErrors.ErrClientNotFound, "Cliente não encontrado", nil)

	case errors.Is(err, ingesting.ErrNoValidRows):
		apiErrors.WriteError(w, apiErrors.ErrNoValidRows, "Nenhuma linha válida no arquivo", result)

	case errors.Is(err, ingesting.ErrUnparseableFile):
		apiErrors.WriteError(w, apiErrors.ErrUnparseableFile, err.Error(), nil)

	default:
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao processar o arquivo de transações", nil)
	}
}
