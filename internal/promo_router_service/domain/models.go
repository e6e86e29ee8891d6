package domain

import (
	"encoding/json"
	"time"
)

// InboundMessage is a customer message extracted from one webhook delivery.
// SenderID is the only correlation key between the customer, the record lookup and any escalation.
type InboundMessage struct {
	ID         string // platform message id, or a generated trace id when absent
	SenderID   string
	BodyText   string
	ReceivedAt time.Time
	RawPayload json.RawMessage
}

// PromotionRecord is one row of the external record store.
type PromotionRecord struct {
	Phone      string
	PromoLabel string
}

// OutboundMessage is a text addressed to a channel recipient.
type OutboundMessage struct {
	RecipientID string
	BodyText    string
}

// EscalationNotice carries the customer context forwarded to the operator.
type EscalationNotice struct {
	CustomerID string    `json:"customer_id"`
	PromoLabel *string   `json:"promo_label,omitempty"`
	OperatorID string    `json:"operator_id"`
	RaisedAt   time.Time `json:"raised_at"`
}

// SendResult is the outcome of one outbound send. Sends never return an error
// directly; transport failures have StatusCode 0 and Err set.
type SendResult struct {
	StatusCode   int    `json:"code"`
	ResponseBody string `json:"resp"`
	Err          error  `json:"-"`
}

// Succeeded reports whether the platform accepted the message.
func (r SendResult) Succeeded() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	IntentPromo   Intent = "promo"
	IntentAdvisor Intent = "advisor"
	IntentUnknown Intent = "unknown"
)
