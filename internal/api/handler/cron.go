package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/scheduler"
	"github.com/vfg2006/delivery-recon-api/pkg/apiErrors"
	"github.com/vfg2006/delivery-recon-api/pkg/middleware"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypeDataQuality = "data-quality"
	CronJobTypeSuggestions = "suggestions"
	CronJobTypeAll         = "all"
)

// CronJobServices contém os serviços de cron necessários para executar manualmente
type CronJobServices struct {
	DataQualitySyncService      *scheduler.DataQualitySyncService
	SuggestionDigestSyncService *scheduler.SuggestionDigestSyncService
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		// Verificar permissões - apenas administradores podem executar cron jobs
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != 1 {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem executar cron jobs", nil)
			return
		}

		// Obter o tipo de cron job da URL
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		// Validar o tipo de cron job
		switch cronType {
		case CronJobTypeDataQuality:
			if services.DataQualitySyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de scan de qualidade de dados não disponível", nil)
				return
			}
			services.DataQualitySyncService.TriggerManualSync()

		case CronJobTypeSuggestions:
			if services.SuggestionDigestSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de resumo de sugestões não disponível", nil)
				return
			}
			services.SuggestionDigestSyncService.TriggerManualSync()

		case CronJobTypeAll:
			if services.DataQualitySyncService != nil {
				services.DataQualitySyncService.TriggerManualSync()
			}
			if services.SuggestionDigestSyncService != nil {
				services.SuggestionDigestSyncService.TriggerManualSync()
			}

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: data-quality, suggestions, all", nil)
			return
		}

		// Responder com sucesso
		response := map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		}
		json.NewEncoder(w).Encode(response)
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		// Verificar permissões - apenas administradores podem ver status das crons
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != 1 {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem verificar status de cron jobs", nil)
			return
		}

		status := map[string]any{
			"data-quality": services.DataQualitySyncService.GetStatus(),
			"suggestions":  services.SuggestionDigestSyncService.GetStatus(),
		}

		json.NewEncoder(w).Encode(status)
	}
}
