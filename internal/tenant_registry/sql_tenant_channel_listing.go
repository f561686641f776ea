package tenant_registry

import (
	"context"
	"database/sql"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/domain"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
)

func NewSqlGetTenantChannels(cfg *config.Config, database *sql.DB) (GetTenantChannels, error) {

	return func(ctx context.Context) ([]domain.TenantChannel, error) {

		callDurationTimer := prometheus.NewTimer(metrics.sqlListTenantChannelsDuration)
		defer callDurationTimer.ObserveDuration()

		ctx, cancel := context.WithTimeout(ctx, cfg.RegistryQueryTimeout)
		defer cancel()

		rows, err := database.QueryContext(ctx,
			"SELECT id, ref_id, name, ref_type, token FROM tenant_channels ORDER BY id")
		if err != nil {
			logger.LogError("SQL query failed", err)
			return nil, err
		}
		defer rows.Close()

		var channels []domain.TenantChannel

		for rows.Next() {
			var channel domain.TenantChannel
			if err := rows.Scan(&channel.ID, &channel.RefID, &channel.Name, &channel.RefType, &channel.Token); err != nil {
				logger.LogError("SQL row scan failed", err)
				return nil, err
			}
			channels = append(channels, channel)
		}

		return channels, rows.Err()
	}, nil
}

func NewSqlGetTenantChannelByRefID(cfg *config.Config, database *sql.DB) (GetTenantChannelByRefID, error) {

	return func(ctx context.Context, tenantID domain.TenantID) (domain.TenantChannel, error) {
		var channel domain.TenantChannel

		ctx, cancel := context.WithTimeout(ctx, cfg.RegistryQueryTimeout)
		defer cancel()

		err := database.QueryRowContext(ctx,
			"SELECT id, ref_id, name, ref_type, token FROM tenant_channels WHERE ref_id = $1",
			tenantID).Scan(&channel.ID, &channel.RefID, &channel.Name, &channel.RefType, &channel.Token)

		if err != nil {
			if err == sql.ErrNoRows {
				return channel, NotFoundError
			}
			logger.LogErrorWithTenantID("SQL query failed", err, tenantID)
			return channel, err
		}

		return channel, nil
	}, nil
}

func NewSqlGetApplications(cfg *config.Config, database *sql.DB) (GetApplications, error) {

	return func(ctx context.Context) ([]domain.Application, error) {

		callDurationTimer := prometheus.NewTimer(metrics.sqlListApplicationsDuration)
		defer callDurationTimer.ObserveDuration()

		ctx, cancel := context.WithTimeout(ctx, cfg.RegistryQueryTimeout)
		defer cancel()

		rows, err := database.QueryContext(ctx, "SELECT id, name, token FROM applications ORDER BY id")
		if err != nil {
			logger.LogError("SQL query failed", err)
			return nil, err
		}
		defer rows.Close()

		var apps []domain.Application

		for rows.Next() {
			var app domain.Application
			if err := rows.Scan(&app.ID, &app.Name, &app.Token); err != nil {
				logger.LogError("SQL row scan failed", err)
				return nil, err
			}
			apps = append(apps, app)
		}

		return apps, rows.Err()
	}, nil
}

func NewSqlGetApplicationByID(cfg *config.Config, database *sql.DB) (GetApplicationByID, error) {

	return func(ctx context.Context, id int) (domain.Application, error) {
		var app domain.Application

		ctx, cancel := context.WithTimeout(ctx, cfg.RegistryQueryTimeout)
		defer cancel()

		err := database.QueryRowContext(ctx,
			"SELECT id, name, token FROM applications WHERE id = $1",
			id).Scan(&app.ID, &app.Name, &app.Token)

		if err != nil {
			if err == sql.ErrNoRows {
				return app, NotFoundError
			}
			logger.LogError("SQL query failed", err)
			return app, err
		}

		return app, nil
	}, nil
}
