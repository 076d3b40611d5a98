package handler

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/locating"
	"github.com/vfg2006/delivery-recon-api/pkg/apiErrors"
)

// ImportLocationMasterList recebe a planilha mestre de locations (XLSX via
// multipart) e sincroniza o diretório canônico do cliente
func ImportLocationMasterList(service locating.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - ImportLocationMasterList")

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

		file, _, err := r.FormFile("file")
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Planilha mestre não fornecida", nil)
			return
		}
		defer file.Close()

		result, err := service.ImportMasterList(clientID, file)
		if err != nil {
			logrus.Error(err)
			switch {
			case errors.Is(err, locating.ErrClientNotFound):
				apiErrors.WriteError(w, apiErrors.ErrClientNotFound, "Cliente não encontrado", nil)
			case errors.Is(err, locating.ErrEmptySheet):
				apiErrors.WriteError(w, apiErrors.ErrNoValidRows, "Planilha sem linhas de dados", nil)
			default:
				apiErrors.WriteError(w, apiErrors.ErrUnparseableFile, "Erro ao processar a planilha mestre", nil)
			}
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

// ListLocations lista o diretório de locations do cliente, incluindo a
// sentinela de não mapeadas quando já existir
func ListLocations(service locating.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if clientID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do cliente não fornecido", nil)
			return
		}

		locations, err := service.ListLocations(clientID)
		if err != nil {
			logrus.Error(err)
			if errors.Is(err, locating.ErrClientNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrClientNotFound, "Cliente não encontrado", nil)
				return
			}
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar locations", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(locations); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}
