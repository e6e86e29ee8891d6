package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

// EscalationSubject is the broker subject escalation events are published on.
const EscalationSubject = "promo.escalations"

// EventPublisher is satisfied by messagebroker.NatsClient.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Escalator notifies the operator about a customer that needs a human.
// A missing operator id disables it. Failures are logged and never returned.
type Escalator struct {
	sender     domain.MessageSender
	publisher  EventPublisher
	operatorID string
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewEscalator builds an Escalator. publisher may be nil.
func NewEscalator(sender domain.MessageSender, publisher EventPublisher, operatorID string, timeout time.Duration, logger *slog.Logger) *Escalator {
	return &Escalator{
		sender:     sender,
		publisher:  publisher,
		operatorID: strings.TrimSpace(operatorID),
		timeout:    timeout,
		logger:     logger.With("component", "escalator"),
		now:        time.Now,
	}
}

// Enabled reports whether an operator id is configured.
func (e *Escalator) Enabled() bool { return e.operatorID != "" }

func (e *Escalator) Escalate(ctx context.Context, customerID string, promoLabel *string) {
	if !e.Enabled() {
		escalationsCounter.WithLabelValues("disabled").Inc()
		e.logger.InfoContext(ctx, "Escalation skipped: operator phone not configured",
			"customer_id", customerID, "reason", domain.ErrConfigAbsent)
		return
	}

	notice := domain.EscalationNotice{
		CustomerID: customerID,
		PromoLabel: promoLabel,
		OperatorID: e.operatorID,
		RaisedAt:   e.now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			escalationsCounter.WithLabelValues("send_failed").Inc()
			e.logger.ErrorContext(ctx, "Escalation panicked", "customer_id", customerID, "panic", r)
		}
	}()

	sendCtx, cancel := e.callContext(ctx)
	defer cancel()
	res := e.sender.Send(sendCtx, domain.OutboundMessage{RecipientID: e.operatorID, BodyText: ComposeEscalation(notice)})
	if !res.Succeeded() {
		escalationsCounter.WithLabelValues("send_failed").Inc()
		e.logger.ErrorContext(ctx, "Escalation send failed",
			"customer_id", customerID, "status_code", res.StatusCode, "response", res.ResponseBody, "error", res.Err)
	} else {
		escalationsCounter.WithLabelValues("sent").Inc()
		e.logger.InfoContext(ctx, "Operator notified", "customer_id", customerID, "operator_id", e.operatorID)
	}

	e.publish(ctx, notice)
}

func (e *Escalator) publish(ctx context.Context, notice domain.EscalationNotice) {
	if e.publisher == nil {
		return
	}
	data, err := json.Marshal(notice)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to marshal escalation event", "error", err)
		return
	}
	pubCtx, cancel := e.callContext(ctx)
	defer cancel()
	if err := e.publisher.Publish(pubCtx, EscalationSubject, data); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish escalation event", "subject", EscalationSubject, "error", err)
	}
}

func (e *Escalator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

// ComposeEscalation renders the operator notification text.
func ComposeEscalation(n domain.EscalationNotice) string {
	text := fmt.Sprintf(EscalationTemplate, strings.TrimPrefix(n.CustomerID, "+"))
	if n.PromoLabel != nil && *n.PromoLabel != "" {
		text += fmt.Sprintf(EscalationPromoTemplate, *n.PromoLabel)
	}
	return text
}
