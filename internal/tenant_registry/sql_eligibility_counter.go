package tenant_registry

import (
	"context"
	"database/sql"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/domain"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func NewSqlCountTenantChannelsByRefID(cfg *config.Config, database *sql.DB) (CountTenantChannelsByRefID, error) {

	return func(ctx context.Context, log *logrus.Entry, tenantID domain.TenantID) (int, error) {

		callDurationTimer := prometheus.NewTimer(metrics.sqlCountTenantChannelsByRefIDDuration)
		defer callDurationTimer.ObserveDuration()

		ctx, cancel := context.WithTimeout(ctx, cfg.RegistryQueryTimeout)
		defer cancel()

		statement, err := database.Prepare("SELECT COUNT(*) FROM tenant_channels WHERE ref_id = $1")
		if err != nil {
			logger.LogWithError(log, "SQL Prepare failed", err)
			return 0, err
		}
		defer statement.Close()

		var count int
		err = statement.QueryRowContext(ctx, tenantID).Scan(&count)
		if err != nil {
			logger.LogWithError(log, "SQL query failed", err)
			return 0, err
		}

		return count, nil
	}, nil
}
