package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

// PromotionFinder is the record lookup used by the router.
type PromotionFinder interface {
	FindPromotion(ctx context.Context, phone string) (domain.PromotionRecord, error)
}

// OperatorEscalation forwards a customer to the human operator.
type OperatorEscalation interface {
	Escalate(ctx context.Context, customerID string, promoLabel *string)
}

// Router decides how to answer one inbound message. It keeps no state
// between messages; the sender id is the only correlation key.
type Router struct {
	classifier  Classifier
	lookup      PromotionFinder
	sender      domain.MessageSender
	escalation  OperatorEscalation
	callTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewRouter(classifier Classifier, lookup PromotionFinder, sender domain.MessageSender, escalation OperatorEscalation, callTimeout time.Duration, logger *slog.Logger) *Router {
	return &Router{
		classifier:  classifier,
		lookup:      lookup,
		sender:      sender,
		escalation:  escalation,
		callTimeout: callTimeout,
		logger:      logger.With("component", "intent_router"),
		now:         time.Now,
	}
}

// HandleWebhook extracts the message from a raw webhook body and routes it.
// The only error it returns wraps domain.ErrPayloadShapeMismatch, meaning
// there was nothing to act on.
func (r *Router) HandleWebhook(ctx context.Context, rawPayload []byte) error {
	msg, err := domain.ExtractInboundMessage(rawPayload, r.now())
	if err != nil {
		inboundMessagesCounter.WithLabelValues("no_message").Inc()
		return err
	}
	inboundMessagesCounter.WithLabelValues("routed").Inc()
	r.Route(ctx, msg)
	return nil
}

// Route classifies msg and performs the replies for its intent. External
// failures are logged inside; Route returns the intent it selected.
func (r *Router) Route(ctx context.Context, msg domain.InboundMessage) domain.Intent {
	intent := r.classifier.Classify(msg.BodyText)
	intentsClassifiedCounter.WithLabelValues(string(intent)).Inc()

	logger := r.logger.With("message_id", msg.ID, "sender", msg.SenderID, "intent", intent)
	logger.InfoContext(ctx, "Inbound message classified")

	switch intent {
	case domain.IntentPromo:
		r.handlePromo(ctx, msg.SenderID, logger)
	case domain.IntentAdvisor:
		r.reply(ctx, logger, msg.SenderID, AdvisorRequestedMessage, "advisor_connect")
		r.escalation.Escalate(ctx, msg.SenderID, nil)
	default:
		r.reply(ctx, logger, msg.SenderID, MenuMessage, "menu")
	}
	return intent
}

func (r *Router) handlePromo(ctx context.Context, sender string, logger *slog.Logger) {
	var (
		text         string
		promoContext *string
	)
	rec, err := r.lookup.FindPromotion(ctx, sender)
	switch {
	case err == nil:
		text = fmt.Sprintf(PromoFoundTemplate, rec.PromoLabel)
		promoContext = &text
	case IsNotFound(err):
		text = PromoNotFoundMessage
		promoContext = &text
	default:
		logger.WarnContext(ctx, "Promotion lookup failed, sending apology", "error", err)
		text = LookupFailedMessage
	}

	r.reply(ctx, logger, sender, text, "promo_result")
	r.reply(ctx, logger, sender, AdvisorConnectingMessage, "advisor_connect")
	r.escalation.Escalate(ctx, sender, promoContext)
}

// reply sends one message. Failures are logged and counted, never retried.
func (r *Router) reply(ctx context.Context, logger *slog.Logger, to, text, purpose string) {
	sendCtx := ctx
	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	res := r.sender.Send(sendCtx, domain.OutboundMessage{RecipientID: to, BodyText: text})
	if !res.Succeeded() {
		repliesSentCounter.WithLabelValues(purpose, "failed").Inc()
		logger.ErrorContext(ctx, "Reply not delivered",
			"purpose", purpose, "status_code", res.StatusCode, "response", res.ResponseBody, "error", res.Err)
		return
	}
	repliesSentCounter.WithLabelValues(purpose, "sent").Inc()
	logger.DebugContext(ctx, "Reply sent", "purpose", purpose, "status_code", res.StatusCode)
}
