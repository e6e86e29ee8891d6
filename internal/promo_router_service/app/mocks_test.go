package app

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockPromotionSource is a mock implementation of domain.PromotionSource
type MockPromotionSource struct {
	mock.Mock
}

func (m *MockPromotionSource) FetchPromotions(ctx context.Context) ([]domain.PromotionRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PromotionRecord), args.Error(1)
}

func (m *MockPromotionSource) Name() string { return "mock" }

// MockPromotionFinder is a mock implementation of PromotionFinder
type MockPromotionFinder struct {
	mock.Mock
}

func (m *MockPromotionFinder) FindPromotion(ctx context.Context, phone string) (domain.PromotionRecord, error) {
	args := m.Called(ctx, phone)
	return args.Get(0).(domain.PromotionRecord), args.Error(1)
}

// MockEscalation is a mock implementation of OperatorEscalation
type MockEscalation struct {
	mock.Mock
}

func (m *MockEscalation) Escalate(ctx context.Context, customerID string, promoLabel *string) {
	m.Called(ctx, customerID, promoLabel)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

// recordingSender captures every outbound message and answers with a fixed result.
type recordingSender struct {
	mu     sync.Mutex
	sent   []domain.OutboundMessage
	result func(domain.OutboundMessage) domain.SendResult
}

func (s *recordingSender) Send(_ context.Context, msg domain.OutboundMessage) domain.SendResult {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	if s.result != nil {
		return s.result(msg)
	}
	return domain.SendResult{StatusCode: 200, ResponseBody: `{"messages":[{"id":"wamid.X"}]}`}
}

func (s *recordingSender) to(recipient string) []domain.OutboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.OutboundMessage
	for _, m := range s.sent {
		if m.RecipientID == recipient {
			out = append(out, m)
		}
	}
	return out
}
