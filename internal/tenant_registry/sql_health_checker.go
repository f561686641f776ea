package tenant_registry

import (
	"context"
	"database/sql"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"
)

func NewSqlCheckRegistryHealth(cfg *config.Config, database *sql.DB) (CheckRegistryHealth, error) {

	return func(ctx context.Context) (string, error) {

		ctx, cancel := context.WithTimeout(ctx, cfg.RegistryQueryTimeout)
		defer cancel()

		var now string
		err := database.QueryRowContext(ctx, "SELECT NOW()::VARCHAR").Scan(&now)
		if err != nil {
			logger.LogError("Registry health check failed", err)
			return "", err
		}

		return now, nil
	}, nil
}
