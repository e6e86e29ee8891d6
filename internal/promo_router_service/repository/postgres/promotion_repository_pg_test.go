package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

func TestPgPromotionRepository_FetchPromotions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("ReturnsRowsInOrder", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgPromotionRepository(mockPool, logger)

		rows := mockPool.NewRows([]string{"telefono", "promo"}).
			AddRow("5491112345678", "20% off").
			AddRow("5491199999999", "2x1")
		mockPool.ExpectQuery(`SELECT telefono, promo FROM promotions ORDER BY id`).WillReturnRows(rows)

		records, err := repo.FetchPromotions(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []domain.PromotionRecord{
			{Phone: "5491112345678", PromoLabel: "20% off"},
			{Phone: "5491199999999", PromoLabel: "2x1"},
		}, records)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("EmptyTable", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgPromotionRepository(mockPool, logger)
		mockPool.ExpectQuery(`SELECT telefono, promo FROM promotions`).
			WillReturnRows(mockPool.NewRows([]string{"telefono", "promo"}))

		records, err := repo.FetchPromotions(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgPromotionRepository(mockPool, logger)
		dbErr := errors.New("connection refused")
		mockPool.ExpectQuery(`SELECT telefono, promo FROM promotions`).WillReturnError(dbErr)

		_, err = repo.FetchPromotions(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("RowError", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgPromotionRepository(mockPool, logger)
		rowErr := errors.New("row broke")
		rows := mockPool.NewRows([]string{"telefono", "promo"}).
			AddRow("5491112345678", "20% off").
			RowError(0, rowErr)
		mockPool.ExpectQuery(`SELECT telefono, promo FROM promotions`).WillReturnRows(rows)

		_, err = repo.FetchPromotions(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, rowErr)
	})
}
