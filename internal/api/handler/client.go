package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository"
	"github.com/vfg2006/delivery-recon-api/pkg/apiErrors"
)

// ListClients lista os clientes (marcas) cadastrados
func ListClients(clientRepo repository.ClientRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients, err := clientRepo.ListClients()
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar clientes", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(clients); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}
