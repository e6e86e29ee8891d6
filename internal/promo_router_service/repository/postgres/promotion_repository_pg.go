package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

// Querier is the subset of pgxpool.Pool used by the repository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgPromotionRepository serves the promotions table as a record store.
// Rows come back in id order, mirroring the insertion order of a sheet.
type PgPromotionRepository struct {
	db     Querier
	logger *slog.Logger
}

func NewPgPromotionRepository(db Querier, logger *slog.Logger) *PgPromotionRepository {
	return &PgPromotionRepository{db: db, logger: logger.With("component", "promotion_repository_pg")}
}

func (r *PgPromotionRepository) Name() string { return "postgres" }

const selectPromotionsQuery = `SELECT telefono, promo FROM promotions ORDER BY id`

func (r *PgPromotionRepository) FetchPromotions(ctx context.Context) ([]domain.PromotionRecord, error) {
	rows, err := r.db.Query(ctx, selectPromotionsQuery)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying promotions", "error", err)
		return nil, fmt.Errorf("querying promotions: %w", err)
	}
	defer rows.Close()

	var records []domain.PromotionRecord
	for rows.Next() {
		var rec domain.PromotionRecord
		if err := rows.Scan(&rec.Phone, &rec.PromoLabel); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning promotion row", "error", err)
			return nil, fmt.Errorf("scanning promotion row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating promotion rows", "error", err)
		return nil, fmt.Errorf("iterating promotion rows: %w", err)
	}

	r.logger.DebugContext(ctx, "Fetched promotion rows", "count", len(records))
	return records, nil
}
