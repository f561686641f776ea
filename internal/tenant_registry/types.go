package tenant_registry

import (
	"context"
	"errors"

	"github.com/femtoworks/femto-gateway/internal/domain"

	"github.com/sirupsen/logrus"
)

// NotFoundError is returned when a lookup targets a record that does not
// exist.  Absence of routing configuration is a normal outcome for an
// eligible tenant, so callers must distinguish this from a registry failure.
var NotFoundError = errors.New("Not found")

// CountTenantChannelsByRefID returns the number of registry records that
// reference the tenant id.  A tenant is eligible when the count is non-zero.
type CountTenantChannelsByRefID func(ctx context.Context, log *logrus.Entry, tenantID domain.TenantID) (int, error)

// GetRoutingConfig reads the current routing configuration for a tenant
// straight from the registry.  Returns NotFoundError when the tenant has no
// routing configuration.
type GetRoutingConfig func(ctx context.Context, log *logrus.Entry, tenantID domain.TenantID) (domain.RoutingConfig, error)

type GetTenantChannels func(ctx context.Context) ([]domain.TenantChannel, error)

type GetTenantChannelByRefID func(ctx context.Context, tenantID domain.TenantID) (domain.TenantChannel, error)

type GetApplications func(ctx context.Context) ([]domain.Application, error)

type GetApplicationByID func(ctx context.Context, id int) (domain.Application, error)

// NextSequenceValue increments a named monotonic counter under a row lock
// and returns the new value.
type NextSequenceValue func(ctx context.Context, name string) (int64, error)

// CheckRegistryHealth verifies the registry is reachable and returns its
// current clock reading.
type CheckRegistryHealth func(ctx context.Context) (string, error)
