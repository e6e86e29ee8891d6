package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/promobot/golang_services/internal/promo_router_service/app"
	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

const (
	MaxRequestBodySize = 1 << 20 // 1 MB

	AckBody                 = "ok"
	VerificationFailureBody = "Error de verificación"
	SignatureHeader         = "X-Hub-Signature-256"
)

// WebhookProcessor handles one raw webhook body.
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, rawPayload []byte) error
}

type HandlerConfig struct {
	VerifyToken string
	// AppSecret enables X-Hub-Signature-256 verification when set.
	AppSecret   string
	CallTimeout time.Duration
}

// WebhookHandler is the platform-facing boundary. POST deliveries are always
// acknowledged with 200 so the platform never retries them.
type WebhookHandler struct {
	cfg       HandlerConfig
	processor WebhookProcessor
	sender    domain.MessageSender
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewWebhookHandler(cfg HandlerConfig, processor WebhookProcessor, sender domain.MessageSender, validate *validator.Validate, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:       cfg,
		processor: processor,
		sender:    sender,
		validate:  validate,
		logger:    logger.With("component", "webhook_handler"),
	}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/webhook", h.Verify)
	r.Post("/webhook", h.Receive)
	r.Get("/test-send", h.TestSend)
}

func (h *WebhookHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, AckBody)
}

// Verify answers the subscription handshake.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	q := r.URL.Query()
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if h.cfg.VerifyToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.VerifyToken)) == 1 {
		logger.InfoContext(ctx, "Webhook verified", "mode", q.Get("hub.mode"))
		writeText(w, http.StatusOK, challenge)
		return
	}

	logger.WarnContext(ctx, "Webhook verification failed", "mode", q.Get("hub.mode"), "token_present", token != "")
	writeText(w, http.StatusForbidden, VerificationFailureBody)
}

// Receive processes a message delivery and always acknowledges it.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				webhookDeliveriesCounter.WithLabelValues("panic").Inc()
				logger.ErrorContext(ctx, "Unhandled fault while processing webhook", "panic", rec, "stack", string(debugStack()))
			}
		}()
		h.process(w, r, logger)
	}()

	writeText(w, http.StatusOK, AckBody)
}

func (h *WebhookHandler) process(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			webhookDeliveriesCounter.WithLabelValues("too_large").Inc()
			logger.WarnContext(ctx, "Webhook body too large, ignoring", "limit", MaxRequestBodySize)
		} else {
			webhookDeliveriesCounter.WithLabelValues("read_error").Inc()
			logger.ErrorContext(ctx, "Failed to read webhook body", "error", err)
		}
		return
	}

	if h.cfg.AppSecret != "" && !validSignature(body, r.Header.Get(SignatureHeader), h.cfg.AppSecret) {
		webhookDeliveriesCounter.WithLabelValues("bad_signature").Inc()
		logger.WarnContext(ctx, "Webhook signature mismatch, ignoring delivery")
		return
	}

	// Processing outlives a client disconnect; each external call carries its own timeout.
	procCtx := context.WithoutCancel(ctx)
	err = h.processor.HandleWebhook(procCtx, body)
	switch {
	case err == nil:
		webhookDeliveriesCounter.WithLabelValues("processed").Inc()
	case errors.Is(err, domain.ErrPayloadShapeMismatch):
		webhookDeliveriesCounter.WithLabelValues("no_message").Inc()
		logger.InfoContext(ctx, "Webhook carried no message to process", "reason", err.Error())
	default:
		webhookDeliveriesCounter.WithLabelValues("error").Inc()
		logger.ErrorContext(ctx, "Webhook processing failed", "error", err)
	}
}

// TestSend sends a fixed message to ?to= and returns the send outcome.
func (h *WebhookHandler) TestSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	query := TestSendQuery{To: strings.TrimSpace(r.URL.Query().Get("to"))}
	if err := h.validate.StructCtx(ctx, query); err != nil {
		logger.WarnContext(ctx, "Invalid test-send request", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "query parameter 'to' must be a phone number"})
		return
	}

	sendCtx := ctx
	if h.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, h.cfg.CallTimeout)
		defer cancel()
	}
	res := h.sender.Send(sendCtx, domain.OutboundMessage{RecipientID: query.To, BodyText: app.TestSendMessage})
	logger.InfoContext(ctx, "Test message sent", "to", query.To, "status_code", res.StatusCode, "ok", res.Succeeded())

	writeJSON(w, http.StatusOK, TestSendResponse{Code: res.StatusCode, Resp: res.ResponseBody})
}

func validSignature(body []byte, header, secret string) bool {
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
