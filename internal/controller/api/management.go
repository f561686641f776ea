package api

import (
	"net/http"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/domain"
	"github.com/femtoworks/femto-gateway/internal/gateway"
	"github.com/femtoworks/femto-gateway/internal/middlewares"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"
	"github.com/redhatinsights/platform-go-middlewares/v2/request_id"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ManagementServer exposes the operator endpoints for the eligibility
// cache.  Registry writes happen out of band, so operators need a way to
// drop stale eligibility without waiting out the expiry clocks.
type ManagementServer struct {
	eligibilityCache *gateway.EligibilityCache
	router           *mux.Router
	config           *config.Config
}

func NewManagementServer(cache *gateway.EligibilityCache, r *mux.Router, cfg *config.Config) *ManagementServer {
	return &ManagementServer{
		eligibilityCache: cache,
		router:           r,
		config:           cfg,
	}
}

func (s *ManagementServer) Routes() {
	mmw := &middlewares.MetricsMiddleware{}
	amw := &middlewares.AuthMiddleware{Secrets: s.config.ServiceToServiceCredentials}

	securedSubRouter := s.router.PathPrefix("/eligibility-cache").Subrouter()
	securedSubRouter.Use(logger.AccessLoggerMiddleware,
		mmw.RecordHTTPMetrics,
		amw.Authenticate)

	securedSubRouter.HandleFunc("/invalidate", s.handleInvalidate()).Methods(http.MethodPost)
	securedSubRouter.HandleFunc("/flush", s.handleFlush()).Methods(http.MethodPost)
}

type invalidateRequest struct {
	TenantID string `json:"tenant_id" validate:"required"`
}

type cacheSizeResponse struct {
	CachedTenants int `json:"cached_tenants"`
}

func (s *ManagementServer) handleInvalidate() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		principal, _ := middlewares.GetPrincipal(req.Context())
		requestId := request_id.GetReqID(req.Context())
		log := logger.Log.WithFields(logrus.Fields{
			"client_id":  principal.GetClientID(),
			"request_id": requestId})

		body := http.MaxBytesReader(w, req.Body, 1048576)

		var invalidate invalidateRequest

		if err := decodeJSON(body, &invalidate); err != nil {
			errorResponse := errorResponse{Title: "Unable to process json input",
				Status: http.StatusBadRequest,
				Detail: err.Error()}
			writeJSONResponse(w, errorResponse.Status, errorResponse)
			return
		}

		log.WithFields(logrus.Fields{"tenant_id": invalidate.TenantID}).Info("Invalidating cached eligibility for tenant")

		s.eligibilityCache.Invalidate(domain.TenantID(invalidate.TenantID))

		writeJSONResponse(w, http.StatusOK, cacheSizeResponse{CachedTenants: s.eligibilityCache.Len()})
	}
}

func (s *ManagementServer) handleFlush() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		principal, _ := middlewares.GetPrincipal(req.Context())
		requestId := request_id.GetReqID(req.Context())
		log := logger.Log.WithFields(logrus.Fields{
			"client_id":  principal.GetClientID(),
			"request_id": requestId})

		log.Info("Flushing the eligibility cache")

		s.eligibilityCache.InvalidateAll()

		writeJSONResponse(w, http.StatusOK, cacheSizeResponse{CachedTenants: s.eligibilityCache.Len()})
	}
}
