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

// NewSqlGetRoutingConfig builds the resolver for per-tenant routing
// configuration.  Routing is read from the registry on every dispatch so
// that configuration changes take effect immediately.
func NewSqlGetRoutingConfig(cfg *config.Config, database *sql.DB) (GetRoutingConfig, error) {

	return func(ctx context.Context, log *logrus.Entry, tenantID domain.TenantID) (domain.RoutingConfig, error) {
		var routingConfig domain.RoutingConfig

		callDurationTimer := prometheus.NewTimer(metrics.sqlLookupRoutingConfigDuration)
		defer callDurationTimer.ObserveDuration()

		ctx, cancel := context.WithTimeout(ctx, cfg.RegistryQueryTimeout)
		defer cancel()

		statement, err := database.Prepare(`SELECT tc.app_id, tc.topic, tc.enabled
            FROM tenant_configs tc
            JOIN tenant_channels ch ON ch.id = tc.channel_id
            WHERE ch.ref_id = $1`)
		if err != nil {
			logger.LogWithError(log, "SQL Prepare failed", err)
			return routingConfig, err
		}
		defer statement.Close()

		var appID int
		var topic sql.NullString
		var enabled sql.NullBool

		err = statement.QueryRowContext(ctx, tenantID).Scan(&appID, &topic, &enabled)

		if err != nil {
			if err == sql.ErrNoRows {
				return routingConfig, NotFoundError
			}

			logger.LogWithError(log, "SQL query failed", err)
			return routingConfig, err
		}

		routingConfig.TenantID = tenantID
		routingConfig.AppID = domain.AppID(appID)

		if topic.Valid {
			routingConfig.Topic = domain.Topic(topic.String)
		}

		if enabled.Valid {
			routingConfig.Enabled = enabled.Bool
		}

		return routingConfig, nil
	}, nil
}
