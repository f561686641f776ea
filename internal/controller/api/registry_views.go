package api

import (
	"net/http"
	"strconv"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/domain"
	"github.com/femtoworks/femto-gateway/internal/middlewares"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"
	"github.com/femtoworks/femto-gateway/internal/tenant_registry"
	"github.com/redhatinsights/platform-go-middlewares/v2/request_id"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RegistryViewServer exposes read only views over the tenant registry for
// service to service consumers.  These are thin fetch-and-map handlers -
// all interpretation of the records stays in the dispatcher.
type RegistryViewServer struct {
	getTenantChannels       tenant_registry.GetTenantChannels
	getTenantChannelByRefID tenant_registry.GetTenantChannelByRefID
	getApplications         tenant_registry.GetApplications
	getApplicationByID      tenant_registry.GetApplicationByID
	countTenantChannels     tenant_registry.CountTenantChannelsByRefID
	nextSequenceValue       tenant_registry.NextSequenceValue
	router                  *mux.Router
	config                  *config.Config
}

func NewRegistryViewServer(
	getTenantChannels tenant_registry.GetTenantChannels,
	getTenantChannelByRefID tenant_registry.GetTenantChannelByRefID,
	getApplications tenant_registry.GetApplications,
	getApplicationByID tenant_registry.GetApplicationByID,
	countTenantChannels tenant_registry.CountTenantChannelsByRefID,
	nextSequenceValue tenant_registry.NextSequenceValue,
	r *mux.Router,
	cfg *config.Config) *RegistryViewServer {

	return &RegistryViewServer{
		getTenantChannels:       getTenantChannels,
		getTenantChannelByRefID: getTenantChannelByRefID,
		getApplications:         getApplications,
		getApplicationByID:      getApplicationByID,
		countTenantChannels:     countTenantChannels,
		nextSequenceValue:       nextSequenceValue,
		router:                  r,
		config:                  cfg,
	}
}

func (s *RegistryViewServer) Routes() {
	mmw := &middlewares.MetricsMiddleware{}
	amw := &middlewares.AuthMiddleware{Secrets: s.config.ServiceToServiceCredentials}

	// The records carry tenant and application tokens, so the listing
	// endpoints require service to service credentials.
	securedSubRouter := s.router.NewRoute().Subrouter()
	securedSubRouter.Use(logger.AccessLoggerMiddleware,
		mmw.RecordHTTPMetrics,
		amw.Authenticate)

	securedSubRouter.HandleFunc("/tenants", s.handleTenantChannelListing()).Methods(http.MethodGet)
	securedSubRouter.HandleFunc("/tenant", s.handleTenantChannelByID()).Methods(http.MethodGet)
	securedSubRouter.HandleFunc("/applications", s.handleApplicationListing()).Methods(http.MethodGet)
	securedSubRouter.HandleFunc("/application", s.handleApplicationByID()).Methods(http.MethodGet)
	securedSubRouter.HandleFunc("/eligible", s.handleEligible()).Methods(http.MethodGet)
	securedSubRouter.HandleFunc("/sequence", s.handleSequence()).Methods(http.MethodGet)
}

type tenantChannelResponse struct {
	ID      int    `json:"id"`
	RefID   string `json:"ref_id"`
	Name    string `json:"name"`
	RefType string `json:"ref_type"`
	Token   string `json:"token"`
}

type applicationResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type eligibleResponse struct {
	RefID    string `json:"ref_id"`
	Eligible bool   `json:"eligible"`
}

type sequenceResponse struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

func tenantChannelToResponse(channel domain.TenantChannel) tenantChannelResponse {
	return tenantChannelResponse{
		ID:      channel.ID,
		RefID:   channel.RefID.String(),
		Name:    channel.Name,
		RefType: channel.RefType,
		Token:   channel.Token,
	}
}

func applicationToResponse(app domain.Application) applicationResponse {
	return applicationResponse{
		ID:    app.ID,
		Name:  app.Name,
		Token: app.Token,
	}
}

func writeNotFoundResponse(w http.ResponseWriter, detail string) {
	errorResponse := errorResponse{Title: "Not found",
		Status: http.StatusNotFound,
		Detail: detail}
	writeJSONResponse(w, errorResponse.Status, errorResponse)
}

func writeRegistryFailureResponse(log *logrus.Entry, w http.ResponseWriter, err error) {
	log.WithFields(logrus.Fields{"error": err}).Error("Registry lookup failed")
	errorResponse := errorResponse{Title: "Registry lookup failed",
		Status: http.StatusInternalServerError,
		Detail: err.Error()}
	writeJSONResponse(w, errorResponse.Status, errorResponse)
}

func (s *RegistryViewServer) handleTenantChannelListing() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		log := logger.Log.WithFields(logrus.Fields{"request_id": request_id.GetReqID(req.Context())})

		channels, err := s.getTenantChannels(req.Context())
		if err != nil {
			writeRegistryFailureResponse(log, w, err)
			return
		}

		response := make([]tenantChannelResponse, len(channels))
		for i, channel := range channels {
			response[i] = tenantChannelToResponse(channel)
		}

		writeJSONResponse(w, http.StatusOK, response)
	}
}

func (s *RegistryViewServer) handleTenantChannelByID() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		log := logger.Log.WithFields(logrus.Fields{"request_id": request_id.GetReqID(req.Context())})

		id := req.URL.Query().Get("id")
		if id == "" {
			writeNotFoundResponse(w, "Missing id parameter")
			return
		}

		channel, err := s.getTenantChannelByRefID(req.Context(), domain.TenantID(id))
		if err == tenant_registry.NotFoundError {
			writeNotFoundResponse(w, "No tenant channel found for id "+id)
			return
		}
		if err != nil {
			writeRegistryFailureResponse(log, w, err)
			return
		}

		writeJSONResponse(w, http.StatusOK, tenantChannelToResponse(channel))
	}
}

func (s *RegistryViewServer) handleApplicationListing() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		log := logger.Log.WithFields(logrus.Fields{"request_id": request_id.GetReqID(req.Context())})

		apps, err := s.getApplications(req.Context())
		if err != nil {
			writeRegistryFailureResponse(log, w, err)
			return
		}

		response := make([]applicationResponse, len(apps))
		for i, app := range apps {
			response[i] = applicationToResponse(app)
		}

		writeJSONResponse(w, http.StatusOK, response)
	}
}

func (s *RegistryViewServer) handleApplicationByID() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		log := logger.Log.WithFields(logrus.Fields{"request_id": request_id.GetReqID(req.Context())})

		id, err := strconv.Atoi(req.URL.Query().Get("id"))
		if err != nil {
			writeNotFoundResponse(w, "Missing or malformed id parameter")
			return
		}

		app, err := s.getApplicationByID(req.Context(), id)
		if err == tenant_registry.NotFoundError {
			writeNotFoundResponse(w, "No application found for id "+strconv.Itoa(id))
			return
		}
		if err != nil {
			writeRegistryFailureResponse(log, w, err)
			return
		}

		writeJSONResponse(w, http.StatusOK, applicationToResponse(app))
	}
}

func (s *RegistryViewServer) handleEligible() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		log := logger.Log.WithFields(logrus.Fields{"request_id": request_id.GetReqID(req.Context())})

		id := req.URL.Query().Get("id")
		if id == "" {
			writeJSONResponse(w, http.StatusOK, eligibleResponse{RefID: "n/a", Eligible: false})
			return
		}

		count, err := s.countTenantChannels(req.Context(), log, domain.TenantID(id))
		if err != nil {
			writeRegistryFailureResponse(log, w, err)
			return
		}

		writeJSONResponse(w, http.StatusOK, eligibleResponse{RefID: id, Eligible: count > 0})
	}
}

func (s *RegistryViewServer) handleSequence() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		log := logger.Log.WithFields(logrus.Fields{"request_id": request_id.GetReqID(req.Context())})

		name := req.URL.Query().Get("id")
		if name == "" {
			writeJSONResponse(w, http.StatusOK, sequenceResponse{Name: "n/a", Value: 0})
			return
		}

		value, err := s.nextSequenceValue(req.Context(), name)
		if err != nil {
			writeRegistryFailureResponse(log, w, err)
			return
		}

		writeJSONResponse(w, http.StatusOK, sequenceResponse{Name: name, Value: value})
	}
}
