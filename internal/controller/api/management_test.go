package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/gateway"
	"github.com/femtoworks/femto-gateway/internal/middlewares"

	"github.com/gorilla/mux"
)

const (
	TOKEN_HEADER_CLIENT_NAME = middlewares.PSKClientIdHeader
	TOKEN_HEADER_PSK_NAME    = middlewares.PSKHeader

	INVALIDATE_ENDPOINT = "/eligibility-cache/invalidate"
	FLUSH_ENDPOINT      = "/eligibility-cache/flush"
)

var _ = Describe("ManagementServer", func() {

	var (
		ms    *ManagementServer
		cache *gateway.EligibilityCache
	)

	BeforeEach(func() {
		apiMux := mux.NewRouter()
		cfg := config.GetConfig()
		cfg.ServiceToServiceCredentials["test_client_1"] = "12345"

		var err error
		cache, err = gateway.NewEligibilityCache(10, 30*time.Minute, 5*time.Minute)
		Expect(err).NotTo(HaveOccurred())

		cache.Set("tenant-1", true)
		cache.Set("tenant-2", false)

		ms = NewManagementServer(cache, apiMux, cfg)
		ms.Routes()
	})

	makeRequest := func(endpoint string, body string, authenticated bool) *httptest.ResponseRecorder {
		req, err := http.NewRequest("POST", endpoint, strings.NewReader(body))
		Expect(err).NotTo(HaveOccurred())

		if authenticated {
			req.Header.Add(TOKEN_HEADER_CLIENT_NAME, "test_client_1")
			req.Header.Add(TOKEN_HEADER_PSK_NAME, "12345")
		}

		rr := httptest.NewRecorder()
		ms.router.ServeHTTP(rr, req)
		return rr
	}

	Describe("Invalidating a single tenant", func() {

		It("Should remove the tenant's cached eligibility", func() {
			rr := makeRequest(INVALIDATE_ENDPOINT, `{"tenant_id": "tenant-1"}`, true)

			Expect(rr.Code).To(Equal(http.StatusOK))

			var response cacheSizeResponse
			Expect(json.Unmarshal(rr.Body.Bytes(), &response)).To(Succeed())
			Expect(response.CachedTenants).To(Equal(1))

			_, ok := cache.Get("tenant-1")
			Expect(ok).To(BeFalse())
		})

		It("Should tolerate invalidating an uncached tenant", func() {
			rr := makeRequest(INVALIDATE_ENDPOINT, `{"tenant_id": "tenant-unknown"}`, true)

			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(cache.Len()).To(Equal(2))
		})

		It("Should reject a request without a tenant id", func() {
			rr := makeRequest(INVALIDATE_ENDPOINT, `{}`, true)

			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(cache.Len()).To(Equal(2))
		})

		It("Should reject a request with malformed json", func() {
			rr := makeRequest(INVALIDATE_ENDPOINT, `{"tenant_id" = "tenant-1"}`, true)

			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("Should require service to service credentials", func() {
			rr := makeRequest(INVALIDATE_ENDPOINT, `{"tenant_id": "tenant-1"}`, false)

			Expect(rr.Code).To(Equal(http.StatusUnauthorized))
			Expect(cache.Len()).To(Equal(2))
		})
	})

	Describe("Flushing the cache", func() {

		It("Should remove every cached entry", func() {
			rr := makeRequest(FLUSH_ENDPOINT, "", true)

			Expect(rr.Code).To(Equal(http.StatusOK))

			var response cacheSizeResponse
			Expect(json.Unmarshal(rr.Body.Bytes(), &response)).To(Succeed())
			Expect(response.CachedTenants).To(Equal(0))
			Expect(cache.Len()).To(Equal(0))
		})

		It("Should require service to service credentials", func() {
			rr := makeRequest(FLUSH_ENDPOINT, "", false)

			Expect(rr.Code).To(Equal(http.StatusUnauthorized))
			Expect(cache.Len()).To(Equal(2))
		})
	})
})
