package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

func TestPromotionLookup_FindPromotion(t *testing.T) {
	source := new(MockPromotionSource)
	lookup := NewPromotionLookup(source, time.Second, discardLogger())

	records := []domain.PromotionRecord{
		{Phone: "5491100000000", PromoLabel: "other"},
		{Phone: "5491112345678", PromoLabel: "20% off"},
		{Phone: "5491112345678", PromoLabel: "shadowed"},
	}
	source.On("FetchPromotions", mock.Anything).Return(records, nil)

	rec, err := lookup.FindPromotion(context.Background(), "5491112345678")
	require.NoError(t, err)
	assert.Equal(t, "20% off", rec.PromoLabel) // first match wins

	_, err = lookup.FindPromotion(context.Background(), "000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, IsNotFound(err))

	source.AssertNumberOfCalls(t, "FetchPromotions", 2) // no caching
}

func TestPromotionLookup_NormalizesPhoneStrings(t *testing.T) {
	source := new(MockPromotionSource)
	lookup := NewPromotionLookup(source, time.Second, discardLogger())

	source.On("FetchPromotions", mock.Anything).Return([]domain.PromotionRecord{
		{Phone: " +5491112345678 ", PromoLabel: "2x1"},
	}, nil)

	rec, err := lookup.FindPromotion(context.Background(), "5491112345678")
	require.NoError(t, err)
	assert.Equal(t, "2x1", rec.PromoLabel)
}

func TestPromotionLookup_StoreFailure(t *testing.T) {
	source := new(MockPromotionSource)
	lookup := NewPromotionLookup(source, time.Second, discardLogger())

	storeErr := errors.New("403 permission denied")
	source.On("FetchPromotions", mock.Anything).Return(nil, storeErr)

	_, err := lookup.FindPromotion(context.Background(), "5491112345678")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLookupFailure)
	assert.ErrorIs(t, err, storeErr)
	assert.False(t, IsNotFound(err))
}

func TestPromotionLookup_AppliesTimeout(t *testing.T) {
	source := new(MockPromotionSource)
	lookup := NewPromotionLookup(source, 250*time.Millisecond, discardLogger())

	source.On("FetchPromotions", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 250*time.Millisecond
	})).Return([]domain.PromotionRecord{}, nil)

	_, err := lookup.FindPromotion(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	source.AssertExpectations(t)
}
