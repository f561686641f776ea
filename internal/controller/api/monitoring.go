package api

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"
	"github.com/femtoworks/femto-gateway/internal/tenant_registry"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type MonitoringServer struct {
	checkRegistryHealth tenant_registry.CheckRegistryHealth
	router              *mux.Router
	config              *config.Config
}

func NewMonitoringServer(healthChecker tenant_registry.CheckRegistryHealth, r *mux.Router, cfg *config.Config) *MonitoringServer {
	return &MonitoringServer{
		checkRegistryHealth: healthChecker,
		router:              r,
		config:              cfg,
	}
}

func (s *MonitoringServer) Routes() {
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/liveness", s.handleLiveness()).Methods(http.MethodGet)
	s.router.HandleFunc("/readiness", s.handleReadiness()).Methods(http.MethodGet)
	s.router.HandleFunc("/healthcheck", s.handleHealthCheck()).Methods(http.MethodGet)

	if s.config.Profile {
		logger.Log.Warn("WARNING: Enabling the profiler endpoint!!")
		s.router.PathPrefix("/debug").Handler(http.DefaultServeMux)
	}
}

func (s *MonitoringServer) handleLiveness() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func (s *MonitoringServer) handleReadiness() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

type healthCheckResponse struct {
	Status       string `json:"status"`
	RegistryTime string `json:"registry_time"`
}

func (s *MonitoringServer) handleHealthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {

		registryTime, err := s.checkRegistryHealth(req.Context())
		if err != nil {
			logger.Log.WithFields(logrus.Fields{"error": err}).Error("Registry health check failed")
			errorResponse := errorResponse{Title: "Registry health check failed",
				Status: http.StatusServiceUnavailable,
				Detail: err.Error()}
			writeJSONResponse(w, errorResponse.Status, errorResponse)
			return
		}

		writeJSONResponse(w, http.StatusOK, healthCheckResponse{Status: "ok", RegistryTime: registryTime})
	}
}
