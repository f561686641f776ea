package gateway

import (
	"context"
	"encoding/json"

	"github.com/femtoworks/femto-gateway/internal/domain"
	"github.com/femtoworks/femto-gateway/internal/tenant_registry"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// WebhookDispatcher runs the per-delivery pipeline: authorize each entry
// against the eligibility cache (read-through to the registry on miss),
// resolve the tenant's routing configuration fresh from the registry, and
// publish the wrapped entry to the resolved topic.
//
// Entries are processed independently - a registry or bus failure for one
// entry never aborts its siblings, and nothing from the pipeline is allowed
// to fail the delivery acknowledgement.
type WebhookDispatcher struct {
	expectedObjectType  string
	eligibilityCache    *EligibilityCache
	countTenantChannels tenant_registry.CountTenantChannelsByRefID
	getRoutingConfig    tenant_registry.GetRoutingConfig
	publisher           MessagePublisher
	inflightLookups     singleflight.Group
}

func NewWebhookDispatcher(
	expectedObjectType string,
	eligibilityCache *EligibilityCache,
	countTenantChannels tenant_registry.CountTenantChannelsByRefID,
	getRoutingConfig tenant_registry.GetRoutingConfig,
	publisher MessagePublisher) *WebhookDispatcher {

	return &WebhookDispatcher{
		expectedObjectType:  expectedObjectType,
		eligibilityCache:    eligibilityCache,
		countTenantChannels: countTenantChannels,
		getRoutingConfig:    getRoutingConfig,
		publisher:           publisher,
	}
}

// outboundEnvelope wraps one webhook entry for the downstream consumer.
// The entry itself is republished verbatim.
type outboundEnvelope struct {
	TenantID  domain.TenantID `json:"tenant_id"`
	AppID     domain.AppID    `json:"app_id"`
	Object    string          `json:"object"`
	RequestID string          `json:"request_id"`
	Entry     json.RawMessage `json:"entry"`
}

// ProcessWebhook runs one delivery to completion.  The caller has already
// acknowledged (or will unconditionally acknowledge) the delivery - the
// dispatcher only reports outcomes through logs and metrics.
func (wd *WebhookDispatcher) ProcessWebhook(ctx context.Context, log *logrus.Entry, requestID string, event InboundEvent) {

	metrics.webhookReceivedCounter.Inc()

	if event.Object != wd.expectedObjectType {
		metrics.webhookUnknownObjectCounter.Inc()
		log.WithFields(logrus.Fields{"object": event.Object}).Info("Ignoring webhook with unexpected object type")
		return
	}

	for i := range event.Entries {
		wd.processEntry(ctx, log, requestID, event.Object, &event.Entries[i])
	}
}

func (wd *WebhookDispatcher) processEntry(ctx context.Context, log *logrus.Entry, requestID string, object string, entry *EventEntry) {

	tenantID := entry.TenantID

	log = log.WithFields(logrus.Fields{"tenant_id": tenantID, "event_count": len(entry.Events)})

	eligible, err := wd.authorize(ctx, log, tenantID)
	if err != nil {
		// Fail closed for this dispatch.  The next delivery retries the
		// lookup since nothing was cached.
		metrics.entryRegistryFailureCounter.Inc()
		log.WithFields(logrus.Fields{"error": err}).Error("Eligibility lookup failed, skipping entry")
		return
	}

	if !eligible {
		metrics.entryIneligibleCounter.Inc()
		log.Info("Tenant is not eligible, skipping entry")
		return
	}

	routingConfig, err := wd.getRoutingConfig(ctx, log, tenantID)
	if err == tenant_registry.NotFoundError {
		metrics.entryNoRoutingConfigCounter.Inc()
		log.Info("Tenant has no routing config, skipping entry")
		return
	}
	if err != nil {
		metrics.entryRegistryFailureCounter.Inc()
		log.WithFields(logrus.Fields{"error": err}).Error("Routing config lookup failed, skipping entry")
		return
	}

	if !routingConfig.Enabled {
		metrics.entryRoutingDisabledCounter.Inc()
		log.Info("Routing is disabled for tenant, skipping entry")
		return
	}

	envelope := outboundEnvelope{
		TenantID:  tenantID,
		AppID:     routingConfig.AppID,
		Object:    object,
		RequestID: requestID,
		Entry:     entry.Raw,
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		log.WithFields(logrus.Fields{"error": err}).Error("JSON marshal of outbound message failed")
		return
	}

	err = wd.publisher.Publish(ctx, routingConfig.Topic, tenantID, requestID, payload)
	if err != nil {
		log.WithFields(logrus.Fields{"error": err, "topic": routingConfig.Topic}).Error("Error publishing entry to the bus")
		return
	}

	metrics.entryPublishedCounter.Inc()
	log.WithFields(logrus.Fields{"topic": routingConfig.Topic}).Debug("Entry published")
}

// authorize implements the read-through: a cache hit answers immediately,
// a miss queries the registry and caches the result.  Concurrent misses
// for the same tenant are coalesced into one registry query.
func (wd *WebhookDispatcher) authorize(ctx context.Context, log *logrus.Entry, tenantID domain.TenantID) (bool, error) {

	if eligible, ok := wd.eligibilityCache.Get(tenantID); ok {
		return eligible, nil
	}

	result, err, _ := wd.inflightLookups.Do(tenantID.String(), func() (interface{}, error) {
		count, err := wd.countTenantChannels(ctx, log, tenantID)
		if err != nil {
			return false, err
		}

		eligible := count > 0
		wd.eligibilityCache.Set(tenantID, eligible)
		return eligible, nil
	})

	if err != nil {
		return false, err
	}

	return result.(bool), nil
}
