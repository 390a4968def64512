package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/live-performance-api/infrastructure/integrator"
	"github.com/vfg2006/live-performance-api/infrastructure/repository"
	"github.com/vfg2006/live-performance-api/internal/domain"
	"github.com/vfg2006/live-performance-api/internal/performance"
	"github.com/vfg2006/live-performance-api/internal/usecases/status"
	"github.com/vfg2006/live-performance-api/internal/usecases/syncing"
	"github.com/vfg2006/live-performance-api/pkg/apiErrors"
	"github.com/vfg2006/live-performance-api/pkg/log"
	"github.com/vfg2006/live-performance-api/pkg/middleware"
	"github.com/vfg2006/live-performance-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusProvider é implementado por status.Aggregator
type StatusProvider interface {
	Live(ctx context.Context, userID int) (*status.LiveResponse, error)
	Status(ctx context.Context, userID int) *status.StatusResponse
	TestConnection(ctx context.Context, userID int, platform domain.Platform) (*status.ConnectionTestResult, error)
	HourlyTrends(ctx context.Context, userID int, date time.Time, campaignID string) ([]domain.HourlyTrendPoint, error)
}

// LiveSession é implementado por scheduler.LivePerformanceScheduler
type LiveSession interface {
	AddActiveUser(userID int)
	RemoveActiveUser(userID int)
	TriggerPass() bool
}

type ForceSyncResponse struct {
	CampaignID string               `json:"campaignId"`
	Applied    bool                 `json:"applied"`
	Metrics    *domain.MetricBundle `json:"metrics"`
	Alerts     []domain.AlertEvent  `json:"alerts"`
	SyncedAt   time.Time            `json:"syncedAt"`
}

// GetLive marca o usuário como ativo e devolve o painel ao vivo
func GetLive(provider StatusProvider, session LiveSession) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		claims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		session.AddActiveUser(claims.UserID)

		live, err := provider.Live(r.Context(), claims.UserID)
		if err != nil {
			logger.WithFields(log.Fields{
				"user_id": claims.UserID,
				"error":   err.Error(),
			}).Error("performance: erro ao montar painel ao vivo")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar métricas ao vivo", nil)
			return
		}

		writeJSON(w, http.StatusOK, live)
	})
}

// CloseLive remove o usuário da sincronização quando o dashboard é fechado
func CloseLive(session LiveSession) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		session.RemoveActiveUser(claims.UserID)

		w.WriteHeader(http.StatusNoContent)
	})
}

func GetPerformanceStatus(provider StatusProvider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		writeJSON(w, http.StatusOK, provider.Status(r.Context(), claims.UserID))
	})
}

func TestPlatformConnection(provider StatusProvider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		claims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		platform := domain.Platform(httprouter.ParamsFromContext(r.Context()).ByName("platform"))
		if platform == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Plataforma não informada", nil)
			return
		}

		result, err := provider.TestConnection(r.Context(), claims.UserID, platform)
		if err != nil {
			if errors.Is(err, integrator.ErrUnsupportedPlatform) {
				apiErrors.WriteError(w, apiErrors.ErrSyncUnsupportedPlatform, "Plataforma não suportada", map[string]string{"platform": string(platform)})
				return
			}

			logger.WithFields(log.Fields{
				"platform": platform,
				"error":    err.Error(),
			}).Error("performance: erro ao testar conexão")

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao testar conexão", nil)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})
}

// ForceSync executa uma sincronização fora do ciclo e devolve o erro tipado
// diretamente ao usuário
func ForceSync(orchestrator syncing.Orchestrator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		claims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		campaignID := httprouter.ParamsFromContext(r.Context()).ByName("campaignId")
		if campaignID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Campanha não informada", nil)
			return
		}

		result, err := orchestrator.ForceSync(r.Context(), claims.UserID, campaignID)
		if err != nil {
			code := syncErrorCode(err)

			logger.WithFields(log.Fields{
				"user_id":     claims.UserID,
				"campaign_id": campaignID,
				"code":        code,
				"error":       err.Error(),
			}).Warn("performance: sincronização manual falhou")

			details := map[string]string{"campaignId": campaignID}
			if kind := integrator.KindName(err); kind != "unknown" {
				details["kind"] = kind
			}

			apiErrors.WriteError(w, code, err.Error(), details)
			return
		}

		resp := ForceSyncResponse{
			CampaignID: result.CampaignID,
			Applied:    result.Applied,
			Alerts:     result.Alerts,
			SyncedAt:   result.StartedAt,
		}
		if resp.Alerts == nil {
			resp.Alerts = []domain.AlertEvent{}
		}
		if result.Metrics != nil {
			display := performance.ForDisplay(*result.Metrics)
			resp.Metrics = &display
		}

		writeJSON(w, http.StatusOK, resp)
	})
}

// GetHourlyTrends aceita ?date=YYYY-MM-DD (padrão: hoje) e ?campaignId opcional
func GetHourlyTrends(provider StatusProvider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		claims, ok := middleware.UserFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		query := r.URL.Query()

		date, err := utils.ParseDate(query.Get("date"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Data inválida, use YYYY-MM-DD", map[string]string{"date": query.Get("date")})
			return
		}
		day := *date
		if day.IsZero() {
			day = utils.StartOfDay(time.Now())
		}

		points, err := provider.HourlyTrends(r.Context(), claims.UserID, day, query.Get("campaignId"))
		if err != nil {
			if errors.Is(err, status.ErrCampaignNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Campanha não encontrada", nil)
				return
			}

			logger.WithFields(log.Fields{
				"user_id": claims.UserID,
				"error":   err.Error(),
			}).Error("performance: erro ao buscar tendência horária")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar tendência horária", nil)
			return
		}

		writeJSON(w, http.StatusOK, points)
	})
}

// RunLiveSync dispara um ciclo do agendador fora do intervalo
func RunLiveSync(session LiveSession) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.TriggerPass() {
			apiErrors.WriteError(w, apiErrors.ErrSyncInProgress, "Ciclo de sincronização já em andamento", nil)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": "Ciclo de sincronização iniciado",
		})
	})
}

func syncErrorCode(err error) string {
	switch {
	case errors.Is(err, syncing.ErrCampaignNotFound):
		return apiErrors.ErrResourceNotFound
	case errors.Is(err, syncing.ErrCampaignNotActive):
		return apiErrors.ErrSyncCampaignNotActive
	case errors.Is(err, syncing.ErrSyncInProgress):
		return apiErrors.ErrSyncInProgress
	case errors.Is(err, integrator.ErrMissingCredentials):
		return apiErrors.ErrSyncMissingCredentials
	case errors.Is(err, integrator.ErrAuth):
		return apiErrors.ErrSyncPlatformAuth
	case errors.Is(err, integrator.ErrTransient):
		return apiErrors.ErrSyncPlatformUnavailable
	case errors.Is(err, integrator.ErrUnsupportedPlatform):
		return apiErrors.ErrSyncUnsupportedPlatform
	case errors.Is(err, repository.ErrStoreConflict):
		return apiErrors.ErrSyncStoreConflict
	default:
		return apiErrors.ErrInternalServer
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.L.WithError(err).Error("performance: erro ao serializar resposta")
	}
}
