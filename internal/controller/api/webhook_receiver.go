package api

import (
	"context"
	"io"
	"net/http"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/gateway"
	"github.com/femtoworks/femto-gateway/internal/middlewares"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"
	"github.com/redhatinsights/platform-go-middlewares/v2/request_id"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// WebhookReceiver terminates the platform facing webhook endpoint.  The
// GET route answers the platform's subscription handshake, the POST route
// accepts event deliveries and hands them to the dispatcher.
type WebhookReceiver struct {
	dispatcher *gateway.WebhookDispatcher
	router     *mux.Router
	config     *config.Config
	urlPrefix  string
}

func NewWebhookReceiver(dispatcher *gateway.WebhookDispatcher, r *mux.Router, urlPrefix string, cfg *config.Config) *WebhookReceiver {
	return &WebhookReceiver{
		dispatcher: dispatcher,
		router:     r,
		config:     cfg,
		urlPrefix:  urlPrefix,
	}
}

func (wr *WebhookReceiver) Routes() {
	mmw := &middlewares.MetricsMiddleware{}

	subRouter := wr.router.PathPrefix(wr.urlPrefix).Subrouter()
	subRouter.Use(logger.AccessLoggerMiddleware,
		mmw.RecordHTTPMetrics)

	subRouter.HandleFunc("/webhook", wr.handleVerifySubscription()).Methods(http.MethodGet)
	subRouter.HandleFunc("/webhook", wr.handleWebhook()).Methods(http.MethodPost)
}

type webhookResponse struct {
	Success bool `json:"success"`
}

func (wr *WebhookReceiver) handleVerifySubscription() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		requestId := request_id.GetReqID(req.Context())
		log := logger.Log.WithFields(logrus.Fields{"request_id": requestId})

		query := req.URL.Query()

		if !query.Has("hub.verify_token") {
			writePlainTextResponse(w, "No verify token")
			return
		}

		if !query.Has("hub.mode") {
			writePlainTextResponse(w, "No hub mode")
			return
		}

		if !query.Has("hub.challenge") {
			writePlainTextResponse(w, "No hub challenge")
			return
		}

		if query.Get("hub.mode") != "subscribe" || query.Get("hub.verify_token") != wr.config.WebhookVerifyToken {
			log.Info("Webhook subscription verification failed")
			writePlainTextResponse(w, "Verification failed")
			return
		}

		log.Info("Webhook subscription verified")
		writePlainTextResponse(w, query.Get("hub.challenge"))
	}
}

func (wr *WebhookReceiver) handleWebhook() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		requestId := request_id.GetReqID(req.Context())
		log := logger.Log.WithFields(logrus.Fields{"request_id": requestId})

		body := http.MaxBytesReader(w, req.Body, 1048576)

		// The platform interprets anything other than a 200 as a failed
		// delivery and retries it.  A delivery the gateway cannot process is
		// acknowledged and dropped instead of being redelivered forever.
		data, err := io.ReadAll(body)
		if err != nil {
			log.WithFields(logrus.Fields{"error": err}).Warn("Unable to read webhook body, acknowledging anyway")
			writeJSONResponse(w, http.StatusOK, webhookResponse{Success: true})
			return
		}

		event, err := gateway.ParseInboundEvent(data)
		if err != nil {
			log.WithFields(logrus.Fields{"error": err}).Warn("Unable to parse webhook body, acknowledging anyway")
			writeJSONResponse(w, http.StatusOK, webhookResponse{Success: true})
			return
		}

		// Detach from the request's cancellation so that a client hangup
		// mid-dispatch does not abort the registry and bus work.
		wr.dispatcher.ProcessWebhook(context.WithoutCancel(req.Context()), log, requestId, event)

		writeJSONResponse(w, http.StatusOK, webhookResponse{Success: true})
	}
}

func writePlainTextResponse(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
