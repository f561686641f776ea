package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/controller/api"
	"github.com/femtoworks/femto-gateway/internal/gateway"
	"github.com/femtoworks/femto-gateway/internal/platform/db"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"
	"github.com/femtoworks/femto-gateway/internal/platform/queue"
	"github.com/femtoworks/femto-gateway/internal/platform/utils"
	"github.com/femtoworks/femto-gateway/internal/tenant_registry"
	"github.com/redhatinsights/platform-go-middlewares/v2/request_id"

	"github.com/gorilla/mux"
)

func startGatewayApiServer(listenAddr string, monitoringAddr string) {

	logger.InitLogger()
	defer logger.FlushLogger()

	logger.Log.Info("Starting Femto-Gateway service")

	cfg := config.GetConfig()
	logger.Log.Info("Femto-Gateway configuration:\n", cfg)

	database, err := db.InitializeDatabaseConnection(cfg)
	if err != nil {
		logger.LogFatalError("Unable to connect to database: ", err)
	}

	kafkaProducer := queue.StartProducer(&queue.ProducerConfig{
		Brokers:    cfg.KafkaBrokers,
		BatchSize:  cfg.KafkaBatchSize,
		BatchBytes: cfg.KafkaBatchBytes,
		Balancer:   cfg.KafkaBalancer,
	})
	defer kafkaProducer.Close()

	publisher := gateway.NewKafkaMessagePublisher(kafkaProducer, cfg.KafkaPublishTimeout)

	eligibilityCache, err := gateway.NewEligibilityCache(cfg.EligibilityCacheSize, cfg.EligibilityCacheTTL, cfg.EligibilityCacheTTI)
	if err != nil {
		logger.LogFatalError("Unable to create the eligibility cache", err)
	}

	countTenantChannels, err := tenant_registry.NewSqlCountTenantChannelsByRefID(cfg, database)
	if err != nil {
		logger.LogFatalError("Unable to create tenant_registry.CountTenantChannelsByRefID() function", err)
	}

	getRoutingConfig, err := tenant_registry.NewSqlGetRoutingConfig(cfg, database)
	if err != nil {
		logger.LogFatalError("Unable to create tenant_registry.GetRoutingConfig() function", err)
	}

	getTenantChannels, err := tenant_registry.NewSqlGetTenantChannels(cfg, database)
	if err != nil {
		logger.LogFatalError("Unable to create tenant_registry.GetTenantChannels() function", err)
	}

	getTenantChannelByRefID, err := tenant_registry.NewSqlGetTenantChannelByRefID(cfg, database)
	if err != nil {
		logger.LogFatalError("Unable to create tenant_registry.GetTenantChannelByRefID() function", err)
	}

	getApplications, err := tenant_registry.NewSqlGetApplications(cfg, database)
	if err != nil {
		logger.LogFatalError("Unable to create tenant_registry.GetApplications() function", err)
	}

	getApplicationByID, err := tenant_registry.NewSqlGetApplicationByID(cfg, database)
	if err != nil {
		logger.LogFatalError("Unable to create tenant_registry.GetApplicationByID() function", err)
	}

	nextSequenceValue, err := tenant_registry.NewSqlNextSequenceValue(cfg, database)
	if err != nil {
		logger.LogFatalError("Unable to create tenant_registry.NextSequenceValue() function", err)
	}

	checkRegistryHealth, err := tenant_registry.NewSqlCheckRegistryHealth(cfg, database)
	if err != nil {
		logger.LogFatalError("Unable to create tenant_registry.CheckRegistryHealth() function", err)
	}

	dispatcher := gateway.NewWebhookDispatcher(
		cfg.WebhookObjectType,
		eligibilityCache,
		countTenantChannels,
		getRoutingConfig,
		publisher)

	apiMux := mux.NewRouter()
	apiMux.Use(request_id.ConfiguredRequestID("x-request-id"))

	webhookReceiver := api.NewWebhookReceiver(dispatcher, apiMux, cfg.UrlBasePath, cfg)
	webhookReceiver.Routes()

	mgmtServer := api.NewManagementServer(eligibilityCache, apiMux.PathPrefix(cfg.UrlBasePath).Subrouter(), cfg)
	mgmtServer.Routes()

	registryViewServer := api.NewRegistryViewServer(
		getTenantChannels,
		getTenantChannelByRefID,
		getApplications,
		getApplicationByID,
		countTenantChannels,
		nextSequenceValue,
		apiMux.PathPrefix(cfg.UrlBasePath).Subrouter(),
		cfg)
	registryViewServer.Routes()

	monitoringMux := mux.NewRouter()
	monitoringServer := api.NewMonitoringServer(checkRegistryHealth, monitoringMux, cfg)
	monitoringServer.Routes()

	apiSrv := utils.StartHTTPServer(listenAddr, "api", apiMux)
	monitoringSrv := utils.StartHTTPServer(monitoringAddr, "monitoring", monitoringMux)

	signalChan := make(chan os.Signal, 1)

	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signalChan
	logger.Log.Info("Received signal to shutdown: ", sig)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HttpShutdownTimeout)
	defer cancel()

	utils.ShutdownHTTPServer(ctx, "api", apiSrv)
	utils.ShutdownHTTPServer(ctx, "monitoring", monitoringSrv)

	logger.Log.Info("Femto-Gateway shutting down")
}
