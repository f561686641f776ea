package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/platform/db"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"
	"github.com/femtoworks/femto-gateway/internal/tenant_registry"
)

func startTenantChannelCountReport(refTypesToExcludeCmdLineArg string) {

	logger.InitLogger()

	logger.Log.Info("Starting Femto-Gateway Tenant Channel Count Report")

	cfg := config.GetConfig()
	logger.Log.Info("Femto-Gateway configuration:\n", cfg)

	databaseConn, err := db.InitializeDatabaseConnection(cfg)
	if err != nil {
		logger.LogFatalError("Failed to connect to the database", err)
	}

	sqlTimeout := cfg.RegistryQueryTimeout

	refTypesToExclude := strings.Split(refTypesToExcludeCmdLineArg, ",")

	tenant_registry.ProcessTenantChannelCounts(
		context.TODO(),
		databaseConn,
		sqlTimeout,
		refTypesToExclude,
		stdoutChannelCountProcessor)
}

func stdoutChannelCountProcessor(ctx context.Context, refType string, count int) error {
	fmt.Printf("%s - %d\n", refType, count)
	return nil
}
