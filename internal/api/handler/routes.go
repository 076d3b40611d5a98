package handler

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/delivery-recon-api/infrastructure/repository"
	"github.com/vfg2006/delivery-recon-api/internal/api/handler/router"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/analyzing"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/authenticating"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/ingesting"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/insighting"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/locating"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/suggesting"
	"github.com/vfg2006/delivery-recon-api/pkg/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Clients(clientRepo repository.ClientRepository) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/clients",
			Method:      http.MethodGet,
			Handler:     ListClients(clientRepo),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Ingestions(service ingesting.Service) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/clients/:id/ingestions",
			Method:      http.MethodPost,
			Handler:     IngestTransactions(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/clients/:id/transactions",
			Method:      http.MethodDelete,
			Handler:     PurgeTransactions(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func Locations(service locating.Service) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/clients/:id/locations",
			Method:      http.MethodGet,
			Handler:     ListLocations(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/clients/:id/locations/import",
			Method:      http.MethodPost,
			Handler:     ImportLocationMasterList(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}

func Suggestions(service suggesting.Service) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/clients/:id/suggestions",
			Method:      http.MethodGet,
			Handler:     ListMatchSuggestions(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/clients/:id/suggestions/confirm",
			Method:      http.MethodPost,
			Handler:     ConfirmMatchSuggestion(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}

func Metrics(service insighting.Service) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/metrics",
			Method:      http.MethodGet,
			Handler:     GetConsolidatedMetrics(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Quality(service analyzing.Service) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/quality/report",
			Method:      http.MethodGet,
			Handler:     GetDataQualityReport(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:    "/v1/register",
			Method:  http.MethodPost,
			Handler: CreateUser(service),
		},
		{
			Path:        "/v1/users/:id/generate-password",
			Method:      http.MethodPost,
			Handler:     GeneratePassword(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/users/:id/change-password",
			Method:      http.MethodPost,
			Handler:     ChangePassword(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func User(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/users",
			Method:      http.MethodGet,
			Handler:     ListUsers(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/users",
			Method:      http.MethodPost,
			Handler:     CreateUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/users/:id",
			Method:      http.MethodGet,
			Handler:     GetUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/users/:id",
			Method:      http.MethodPut,
			Handler:     UpdateUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}
