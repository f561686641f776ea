package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/femtoworks/femto-gateway/internal/config"

	_ "github.com/lib/pq"
)

func InitializeDatabaseConnection(cfg *config.Config) (*sql.DB, error) {

	psqlConnectionInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s TimeZone=UTC",
		cfg.RegistryDatabaseHost,
		cfg.RegistryDatabasePort,
		cfg.RegistryDatabaseUser,
		cfg.RegistryDatabasePassword,
		cfg.RegistryDatabaseName)

	sslSettings, err := buildPostgresSslConfigString(cfg)
	if err != nil {
		return nil, err
	}

	psqlConnectionInfo += " " + sslSettings

	database, err := sql.Open("postgres", psqlConnectionInfo)
	if err != nil {
		return nil, err
	}

	database.SetMaxOpenConns(cfg.RegistryDatabaseMaxConns)

	return database, nil
}

func buildPostgresSslConfigString(cfg *config.Config) (string, error) {
	if cfg.RegistryDatabaseSslMode == "disable" {
		return "sslmode=disable", nil
	} else if cfg.RegistryDatabaseSslMode == "verify-full" {
		return "sslmode=verify-full sslrootcert=" + cfg.RegistryDatabaseSslRootCert, nil
	} else {
		return "", errors.New("Invalid SSL configuration for database connection: " + cfg.RegistryDatabaseSslMode)
	}
}
