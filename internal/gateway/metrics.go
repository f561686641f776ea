package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type gatewayMetrics struct {
	eligibilityCacheHitCounter          prometheus.Counter
	eligibilityCacheMissCounter         prometheus.Counter
	eligibilityCacheEvictionCounter     prometheus.Counter
	eligibilityCacheExpirationCounter   prometheus.Counter
	eligibilityCacheInvalidationCounter prometheus.Counter

	webhookReceivedCounter      prometheus.Counter
	webhookUnknownObjectCounter prometheus.Counter
	entryIneligibleCounter      prometheus.Counter
	entryNoRoutingConfigCounter prometheus.Counter
	entryRoutingDisabledCounter prometheus.Counter
	entryRegistryFailureCounter prometheus.Counter
	entryPublishedCounter       prometheus.Counter
	kafkaPublishFailureCounter  prometheus.Counter
	kafkaWriterPublishDuration  prometheus.Histogram
}

var metrics *gatewayMetrics

func init() {
	metrics = new(gatewayMetrics)

	metrics.eligibilityCacheHitCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_eligibility_cache_hit_count",
		Help: "The number of eligibility lookups answered from the cache",
	})

	metrics.eligibilityCacheMissCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_eligibility_cache_miss_count",
		Help: "The number of eligibility lookups that fell through to the registry",
	})

	metrics.eligibilityCacheEvictionCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_eligibility_cache_eviction_count",
		Help: "The number of cache entries evicted to make room for new entries",
	})

	metrics.eligibilityCacheExpirationCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_eligibility_cache_expiration_count",
		Help: "The number of cache entries that expired due to ttl or idle timeout",
	})

	metrics.eligibilityCacheInvalidationCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_eligibility_cache_invalidation_count",
		Help: "The number of cache entries removed by explicit invalidation",
	})

	metrics.webhookReceivedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_webhook_received_count",
		Help: "The number of webhook deliveries received",
	})

	metrics.webhookUnknownObjectCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_webhook_unknown_object_count",
		Help: "The number of webhook deliveries dropped due to an unexpected object type",
	})

	metrics.entryIneligibleCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_entry_ineligible_count",
		Help: "The number of webhook entries skipped because the tenant was not eligible",
	})

	metrics.entryNoRoutingConfigCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_entry_no_routing_config_count",
		Help: "The number of webhook entries skipped because the tenant had no routing config",
	})

	metrics.entryRoutingDisabledCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_entry_routing_disabled_count",
		Help: "The number of webhook entries skipped because routing was disabled for the tenant",
	})

	metrics.entryRegistryFailureCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_entry_registry_failure_count",
		Help: "The number of webhook entries that failed closed due to a registry error",
	})

	metrics.entryPublishedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_entry_published_count",
		Help: "The number of webhook entries published to the bus",
	})

	metrics.kafkaPublishFailureCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "femto_gateway_kafka_publish_failure_count",
		Help: "The number of failed kafka publishes",
	})

	metrics.kafkaWriterPublishDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "femto_gateway_kafka_publish_duration",
		Help: "The amount of time it took to write a message to kafka",
	})
}
