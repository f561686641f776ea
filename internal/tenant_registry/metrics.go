package tenant_registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type tenantRegistryMetrics struct {
	sqlCountTenantChannelsByRefIDDuration prometheus.Histogram
	sqlLookupRoutingConfigDuration        prometheus.Histogram
	sqlListTenantChannelsDuration         prometheus.Histogram
	sqlListApplicationsDuration           prometheus.Histogram
	sqlNextSequenceValueDuration          prometheus.Histogram
}

var metrics *tenantRegistryMetrics

func init() {
	metrics = new(tenantRegistryMetrics)

	metrics.sqlCountTenantChannelsByRefIDDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "femto_gateway_sql_count_tenant_channels_by_ref_id_duration",
		Help: "The amount of time it took to count the tenant channels referencing a tenant id",
	})

	metrics.sqlLookupRoutingConfigDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "femto_gateway_sql_lookup_routing_config_duration",
		Help: "The amount of time it took to lookup the routing config for a tenant",
	})

	metrics.sqlListTenantChannelsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "femto_gateway_sql_list_tenant_channels_duration",
		Help: "The amount of time it took to list tenant channels",
	})

	metrics.sqlListApplicationsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "femto_gateway_sql_list_applications_duration",
		Help: "The amount of time it took to list applications",
	})

	metrics.sqlNextSequenceValueDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "femto_gateway_sql_next_sequence_value_duration",
		Help: "The amount of time it took to increment a sequence counter",
	})
}
