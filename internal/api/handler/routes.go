package handler

import (
	"net/http"

	"github.com/vfg2006/live-performance-api/internal/api/handler/router"
	"github.com/vfg2006/live-performance-api/internal/usecases/syncing"
	"github.com/vfg2006/live-performance-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Metrics(handler http.Handler) []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: handler,
		},
	}
}

func Performance(provider StatusProvider, session LiveSession, orchestrator syncing.Orchestrator) []router.Route {
	return []router.Route{
		{
			Path:        "/performance/live",
			Method:      http.MethodGet,
			Handler:     GetLive(provider, session),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/performance/live",
			Method:      http.MethodDelete,
			Handler:     CloseLive(session),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/performance/status",
			Method:      http.MethodGet,
			Handler:     GetPerformanceStatus(provider),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/performance/test-connection/:platform",
			Method:      http.MethodPost,
			Handler:     TestPlatformConnection(provider),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/performance/force-sync/:campaignId",
			Method:      http.MethodPost,
			Handler:     ForceSync(orchestrator),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/performance/trends/hourly",
			Method:      http.MethodGet,
			Handler:     GetHourlyTrends(provider),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/performance/sync/run",
			Method:      http.MethodPost,
			Handler:     RunLiveSync(session),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}
