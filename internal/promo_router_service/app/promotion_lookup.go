package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

// PromotionLookup finds the promotion entitled to a phone number.
type PromotionLookup struct {
	source  domain.PromotionSource
	timeout time.Duration
	logger  *slog.Logger
}

func NewPromotionLookup(source domain.PromotionSource, timeout time.Duration, logger *slog.Logger) *PromotionLookup {
	return &PromotionLookup{
		source:  source,
		timeout: timeout,
		logger:  logger.With("component", "promotion_lookup", "source", source.Name()),
	}
}

// FindPromotion fetches every record and returns the first whose phone equals
// phone after normalization. It returns domain.ErrNotFound when nothing matches
// and an error wrapping domain.ErrLookupFailure when the store cannot be read.
func (l *PromotionLookup) FindPromotion(ctx context.Context, phone string) (domain.PromotionRecord, error) {
	start := time.Now()
	defer func() {
		promotionLookupDurationHist.WithLabelValues(l.source.Name()).Observe(time.Since(start).Seconds())
	}()

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	records, err := l.source.FetchPromotions(ctx)
	if err != nil {
		promotionLookupsCounter.WithLabelValues(l.source.Name(), "error").Inc()
		l.logger.ErrorContext(ctx, "Record store fetch failed", "phone", phone, "error", err)
		return domain.PromotionRecord{}, fmt.Errorf("%w: %w", domain.ErrLookupFailure, err)
	}

	key := normalizeKey(phone)
	for _, rec := range records {
		if normalizeKey(rec.Phone) == key {
			promotionLookupsCounter.WithLabelValues(l.source.Name(), "found").Inc()
			l.logger.InfoContext(ctx, "Promotion found", "phone", phone, "promo", rec.PromoLabel)
			return rec, nil
		}
	}

	promotionLookupsCounter.WithLabelValues(l.source.Name(), "not_found").Inc()
	l.logger.InfoContext(ctx, "No promotion for phone", "phone", phone, "records_scanned", len(records))
	return domain.PromotionRecord{}, domain.ErrNotFound
}

// IsNotFound reports whether err is the normal "no promotion" outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func normalizeKey(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}
