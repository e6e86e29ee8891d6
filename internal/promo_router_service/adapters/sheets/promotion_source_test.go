package sheets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

func TestRowsToRecords(t *testing.T) {
	rows := [][]interface{}{
		{"Nombre", " telefono ", "Promo"},
		{"Ana", "5491112345678", "20% off"},
		{"Beto", float64(5491199999999), "2x1"},
		{},
		{"Caro", "5491100000000"},
	}

	records, err := RowsToRecords(rows)
	require.NoError(t, err)
	assert.Equal(t, []domain.PromotionRecord{
		{Phone: "5491112345678", PromoLabel: "20% off"},
		{Phone: "5491199999999", PromoLabel: "2x1"},
		{Phone: "5491100000000", PromoLabel: ""},
	}, records)
}

func TestRowsToRecords_EmptyAndBadHeader(t *testing.T) {
	records, err := RowsToRecords(nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = RowsToRecords([][]interface{}{{"Phone", "Promo"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Telefono")
}

func newTestSource(t *testing.T, handler http.HandlerFunc) *PromotionSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewService(context.Background(), "",
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return NewPromotionSource(svc, "SHEET_ID", "", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPromotionSource_FetchPromotions(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/SHEET_ID/values/"), r.URL.Path)
		assert.Equal(t, "FORMATTED_VALUE", r.URL.Query().Get("valueRenderOption"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"range":"Sheet1!A1:Z3","majorDimension":"ROWS","values":[["Telefono","Promo"],["5491112345678","20% off"],["5491199999999","2x1"]]}`)
	})

	records, err := source.FetchPromotions(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "5491112345678", records[0].Phone)
	assert.Equal(t, "20% off", records[0].PromoLabel)
	assert.Equal(t, "sheets", source.Name())
}

func TestPromotionSource_FetchPromotions_APIError(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`)
	})

	_, err := source.FetchPromotions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHEET_ID")
}
