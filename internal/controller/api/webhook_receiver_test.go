package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/domain"
	"github.com/femtoworks/femto-gateway/internal/gateway"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"
	"github.com/femtoworks/femto-gateway/internal/tenant_registry"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	URL_BASE_PATH    = "/api/femto-gateway/v1"
	WEBHOOK_ENDPOINT = URL_BASE_PATH + "/webhook"

	VERIFY_TOKEN = "verify-me"
)

func init() {
	logger.InitLogger()
}

type mockTenantCounter struct {
	channelCounts map[domain.TenantID]int
	failingTenant domain.TenantID
	callCount     int
}

func (m *mockTenantCounter) count(ctx context.Context, log *logrus.Entry, tenantID domain.TenantID) (int, error) {
	m.callCount++
	if tenantID == m.failingTenant {
		return 0, errors.New("registry is down")
	}
	return m.channelCounts[tenantID], nil
}

type mockRoutingResolver struct {
	configs map[domain.TenantID]domain.RoutingConfig
}

func (m *mockRoutingResolver) resolve(ctx context.Context, log *logrus.Entry, tenantID domain.TenantID) (domain.RoutingConfig, error) {
	routingConfig, ok := m.configs[tenantID]
	if !ok {
		return domain.RoutingConfig{}, tenant_registry.NotFoundError
	}
	return routingConfig, nil
}

type publishedMessage struct {
	topic   domain.Topic
	key     domain.TenantID
	payload []byte
}

type mockPublisher struct {
	published []publishedMessage
}

func (m *mockPublisher) Publish(ctx context.Context, topic domain.Topic, key domain.TenantID, requestID string, payload []byte) error {
	m.published = append(m.published, publishedMessage{topic: topic, key: key, payload: payload})
	return nil
}

func buildHandshakeUrl(mode string, verifyToken string, challenge string) string {
	query := url.Values{}
	if mode != "" {
		query.Set("hub.mode", mode)
	}
	if verifyToken != "" {
		query.Set("hub.verify_token", verifyToken)
	}
	if challenge != "" {
		query.Set("hub.challenge", challenge)
	}
	return WEBHOOK_ENDPOINT + "?" + query.Encode()
}

var _ = Describe("WebhookReceiver", func() {

	var (
		wr            *WebhookReceiver
		tenantCounter *mockTenantCounter
		resolver      *mockRoutingResolver
		publisher     *mockPublisher
	)

	BeforeEach(func() {
		apiMux := mux.NewRouter()
		cfg := config.GetConfig()
		cfg.WebhookVerifyToken = VERIFY_TOKEN

		tenantCounter = &mockTenantCounter{
			channelCounts: map[domain.TenantID]int{
				"tenant-1": 2,
				"tenant-2": 1,
				"tenant-3": 1,
			},
			failingTenant: "tenant-broken",
		}

		resolver = &mockRoutingResolver{
			configs: map[domain.TenantID]domain.RoutingConfig{
				"tenant-1": {TenantID: "tenant-1", AppID: 7, Topic: "events.tenant-1", Enabled: true},
				"tenant-2": {TenantID: "tenant-2", AppID: 8, Topic: "events.tenant-2", Enabled: false},
			},
		}

		publisher = &mockPublisher{}

		cache, err := gateway.NewEligibilityCache(10, 30*time.Minute, 5*time.Minute)
		Expect(err).NotTo(HaveOccurred())

		dispatcher := gateway.NewWebhookDispatcher("page", cache, tenantCounter.count, resolver.resolve, publisher)

		wr = NewWebhookReceiver(dispatcher, apiMux, URL_BASE_PATH, cfg)
		wr.Routes()
	})

	Describe("Verifying a webhook subscription", func() {

		It("Should echo the challenge for a valid handshake", func() {
			req, err := http.NewRequest("GET", buildHandshakeUrl("subscribe", VERIFY_TOKEN, "challenge-1234"), nil)
			Expect(err).NotTo(HaveOccurred())

			rr := httptest.NewRecorder()
			wr.router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal("challenge-1234"))
		})

		It("Should reject a handshake with the wrong verify token", func() {
			req, err := http.NewRequest("GET", buildHandshakeUrl("subscribe", "wrong-token", "challenge-1234"), nil)
			Expect(err).NotTo(HaveOccurred())

			rr := httptest.NewRecorder()
			wr.router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal("Verification failed"))
		})

		It("Should reject a handshake with the wrong mode", func() {
			req, err := http.NewRequest("GET", buildHandshakeUrl("unsubscribe", VERIFY_TOKEN, "challenge-1234"), nil)
			Expect(err).NotTo(HaveOccurred())

			rr := httptest.NewRecorder()
			wr.router.ServeHTTP(rr, req)

			Expect(rr.Body.String()).To(Equal("Verification failed"))
		})

		It("Should report a missing verify token", func() {
			req, err := http.NewRequest("GET", buildHandshakeUrl("subscribe", "", "challenge-1234"), nil)
			Expect(err).NotTo(HaveOccurred())

			rr := httptest.NewRecorder()
			wr.router.ServeHTTP(rr, req)

			Expect(rr.Body.String()).To(Equal("No verify token"))
		})

		It("Should report a missing mode", func() {
			req, err := http.NewRequest("GET", buildHandshakeUrl("", VERIFY_TOKEN, "challenge-1234"), nil)
			Expect(err).NotTo(HaveOccurred())

			rr := httptest.NewRecorder()
			wr.router.ServeHTTP(rr, req)

			Expect(rr.Body.String()).To(Equal("No hub mode"))
		})

		It("Should report a missing challenge", func() {
			req, err := http.NewRequest("GET", buildHandshakeUrl("subscribe", VERIFY_TOKEN, ""), nil)
			Expect(err).NotTo(HaveOccurred())

			rr := httptest.NewRecorder()
			wr.router.ServeHTTP(rr, req)

			Expect(rr.Body.String()).To(Equal("No hub challenge"))
		})
	})

	Describe("Receiving a webhook delivery", func() {

		postWebhook := func(body string) *httptest.ResponseRecorder {
			req, err := http.NewRequest("POST", WEBHOOK_ENDPOINT, strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())

			rr := httptest.NewRecorder()
			wr.router.ServeHTTP(rr, req)
			return rr
		}

		expectSuccessResponse := func(rr *httptest.ResponseRecorder) {
			Expect(rr.Code).To(Equal(http.StatusOK))

			var response webhookResponse
			Expect(json.Unmarshal(rr.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Success).To(BeTrue())
		}

		It("Should publish an entry for an eligible tenant with enabled routing", func() {
			rr := postWebhook(`{"object": "page", "entry": [{"id": "tenant-1", "time": 123, "messaging": [{"sender": {"id": "user-9"}, "message": {"text": "hi"}}]}]}`)

			expectSuccessResponse(rr)

			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].topic).To(Equal(domain.Topic("events.tenant-1")))
			Expect(publisher.published[0].key).To(Equal(domain.TenantID("tenant-1")))

			var envelope map[string]interface{}
			Expect(json.Unmarshal(publisher.published[0].payload, &envelope)).To(Succeed())
			Expect(envelope["tenant_id"]).To(Equal("tenant-1"))
			Expect(envelope["object"]).To(Equal("page"))
			Expect(envelope).To(HaveKey("entry"))
		})

		It("Should not publish an entry when routing is disabled", func() {
			rr := postWebhook(`{"object": "page", "entry": [{"id": "tenant-2", "messaging": [{"sender": {"id": "user-9"}, "message": {"text": "hi"}}]}]}`)

			expectSuccessResponse(rr)
			Expect(publisher.published).To(BeEmpty())
		})

		It("Should not publish an entry when the tenant has no routing config", func() {
			rr := postWebhook(`{"object": "page", "entry": [{"id": "tenant-3", "messaging": [{"sender": {"id": "user-9"}, "message": {"text": "hi"}}]}]}`)

			expectSuccessResponse(rr)
			Expect(publisher.published).To(BeEmpty())
		})

		It("Should not publish an entry for an ineligible tenant", func() {
			rr := postWebhook(`{"object": "page", "entry": [{"id": "tenant-unknown", "messaging": [{"sender": {"id": "user-9"}, "message": {"text": "hi"}}]}]}`)

			expectSuccessResponse(rr)
			Expect(publisher.published).To(BeEmpty())
		})

		It("Should keep processing sibling entries when one tenant's lookup fails", func() {
			rr := postWebhook(`{"object": "page", "entry": [` +
				`{"id": "tenant-1", "messaging": [{"sender": {"id": "a"}, "message": {"text": "one"}}]},` +
				`{"id": "tenant-broken", "messaging": [{"sender": {"id": "b"}, "message": {"text": "two"}}]},` +
				`{"id": "tenant-1", "messaging": [{"sender": {"id": "c"}, "message": {"text": "three"}}]}]}`)

			expectSuccessResponse(rr)
			Expect(publisher.published).To(HaveLen(2))
		})

		It("Should answer the eligibility of a repeated tenant from the cache", func() {
			postWebhook(`{"object": "page", "entry": [{"id": "tenant-1", "messaging": [{"sender": {"id": "a"}, "message": {"text": "one"}}]}]}`)
			postWebhook(`{"object": "page", "entry": [{"id": "tenant-1", "messaging": [{"sender": {"id": "a"}, "message": {"text": "two"}}]}]}`)

			Expect(tenantCounter.callCount).To(Equal(1))
			Expect(publisher.published).To(HaveLen(2))
		})

		It("Should acknowledge and drop a delivery with an unexpected object type", func() {
			rr := postWebhook(`{"object": "group", "entry": [{"id": "tenant-1", "messaging": [{"sender": {"id": "a"}, "message": {"text": "one"}}]}]}`)

			expectSuccessResponse(rr)
			Expect(publisher.published).To(BeEmpty())
			Expect(tenantCounter.callCount).To(Equal(0))
		})

		It("Should acknowledge a malformed body without touching the registry", func() {
			rr := postWebhook(`{"object" = "page"`)

			expectSuccessResponse(rr)
			Expect(publisher.published).To(BeEmpty())
			Expect(tenantCounter.callCount).To(Equal(0))
		})

		It("Should acknowledge an empty entry list", func() {
			rr := postWebhook(`{"object": "page", "entry": []}`)

			expectSuccessResponse(rr)
			Expect(publisher.published).To(BeEmpty())
		})
	})
})
