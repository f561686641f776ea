package tenant_registry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/femtoworks/femto-gateway/internal/platform/logger"
)

type TenantChannelCountProcessor func(context.Context, string, int) error

func ProcessTenantChannelCounts(ctx context.Context, databaseConn *sql.DB, sqlTimeout time.Duration, refTypesToExclude []string, processChannelCount TenantChannelCountProcessor) error {

	queryCtx, cancel := context.WithTimeout(ctx, sqlTimeout)
	defer cancel()

	queryStmt := `SELECT ref_type, COUNT(1) AS channel_count FROM tenant_channels`

	if len(refTypesToExclude) > 0 {
		inClause := strings.Join(refTypesToExclude, "','")
		queryStmt = fmt.Sprintf(" %s WHERE ref_type NOT IN ('%s')", queryStmt, inClause)
	}

	queryStmt = fmt.Sprintf(" %s GROUP BY ref_type ORDER BY channel_count DESC", queryStmt)

	logger.Log.Debug("queryStmt:", queryStmt)

	statement, err := databaseConn.Prepare(queryStmt)
	if err != nil {
		logger.LogFatalError("SQL Prepare failed", err)
		return nil
	}
	defer statement.Close()

	rows, err := databaseConn.QueryContext(queryCtx, queryStmt)

	if err != nil {
		logger.LogFatalError("SQL query failed", err)
		return nil
	}
	defer rows.Close()

	for rows.Next() {
		var refType string
		var channelCount int

		if err := rows.Scan(&refType, &channelCount); err != nil {
			logger.LogError("SQL scan failed.  Skipping row.", err)
			continue
		}

		processChannelCount(ctx, refType, channelCount)
	}

	return nil
}
