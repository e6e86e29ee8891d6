package domain

import "context"

// PromotionSource returns the full current set of promotion records, in store order.
// Implementations do no filtering; matching happens in the caller.
type PromotionSource interface {
	FetchPromotions(ctx context.Context) ([]PromotionRecord, error)
	Name() string
}

// MessageSender posts a text message to the chat platform.
type MessageSender interface {
	Send(ctx context.Context, msg OutboundMessage) SendResult
}
