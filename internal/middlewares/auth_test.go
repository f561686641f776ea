package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/femtoworks/femto-gateway/internal/middlewares"
)

const (
	TOKEN_HEADER_CLIENT_NAME = middlewares.PSKClientIdHeader
	TOKEN_HEADER_PSK_NAME    = middlewares.PSKHeader
	authFailure              = "Authentication failed\n"
	EXPECTED_CLIENT_ID       = "test_client_1"
)

func GetTestHandler(expectedClientID string) http.HandlerFunc {
	fn := func(rw http.ResponseWriter, req *http.Request) {
		principal, ok := middlewares.GetPrincipal(req.Context())
		Expect(ok).To(Equal(true))
		Expect(principal.GetClientID()).To(Equal(expectedClientID))
	}

	return http.HandlerFunc(fn)
}

func boiler(req *http.Request, expectedStatusCode int, expectedBody string, expectedClientID string, amw *middlewares.AuthMiddleware) {
	rr := httptest.NewRecorder()
	handler := amw.Authenticate(GetTestHandler(expectedClientID))
	handler.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(expectedStatusCode))
	Expect(rr.Body.String()).To(Equal(expectedBody))
}

var _ = Describe("Auth", func() {
	var (
		req *http.Request
		amw *middlewares.AuthMiddleware
	)

	BeforeEach(func() {
		knownSecrets := make(map[string]interface{})
		knownSecrets[EXPECTED_CLIENT_ID] = "12345"
		amw = &middlewares.AuthMiddleware{Secrets: knownSecrets}

		r, err := http.NewRequest("POST", "/api/femto-gateway/v1/eligibility-cache/flush", nil)
		if err != nil {
			panic("Test error unable to get new request")
		}
		req = r
	})

	Describe("Using token authentication", func() {
		Context("With no missing token auth headers", func() {
			It("Should return 200 when the key is correct", func() {
				req.Header.Add(TOKEN_HEADER_CLIENT_NAME, EXPECTED_CLIENT_ID)
				req.Header.Add(TOKEN_HEADER_PSK_NAME, "12345")

				boiler(req, 200, "", EXPECTED_CLIENT_ID, amw)
			})

			It("Should return 401 when the key is incorrect", func() {
				req.Header.Add(TOKEN_HEADER_CLIENT_NAME, EXPECTED_CLIENT_ID)
				req.Header.Add(TOKEN_HEADER_PSK_NAME, "not-the-key")

				boiler(req, 401, authFailure, EXPECTED_CLIENT_ID, amw)
			})

			It("Should return 401 when the client id is unknown", func() {
				req.Header.Add(TOKEN_HEADER_CLIENT_NAME, "who_is_this")
				req.Header.Add(TOKEN_HEADER_PSK_NAME, "12345")

				boiler(req, 401, authFailure, "who_is_this", amw)
			})
		})

		Context("With missing token auth headers", func() {
			It("Should return 401 when the client id header is missing", func() {
				req.Header.Add(TOKEN_HEADER_PSK_NAME, "12345")

				boiler(req, 401, authFailure, "", amw)
			})

			It("Should return 401 when the psk header is missing", func() {
				req.Header.Add(TOKEN_HEADER_CLIENT_NAME, EXPECTED_CLIENT_ID)

				boiler(req, 401, authFailure, EXPECTED_CLIENT_ID, amw)
			})
		})
	})
})
