package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

// Column headers expected on the first row of the sheet.
const (
	PhoneColumn = "Telefono"
	PromoColumn = "Promo"
)

// NewService builds a read-only Sheets client from a service-account key file.
// Extra options are appended last, so callers can override the endpoint or transport.
func NewService(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*gsheets.Service, error) {
	base := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsReadonlyScope)}
	if credentialsFile != "" {
		base = append(base, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := gsheets.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return svc, nil
}

// PromotionSource reads promotion rows from a spreadsheet range whose first row is a header.
type PromotionSource struct {
	svc       *gsheets.Service
	sheetID   string
	readRange string
	logger    *slog.Logger
}

func NewPromotionSource(svc *gsheets.Service, sheetID, readRange string, logger *slog.Logger) *PromotionSource {
	if readRange == "" {
		readRange = "A:Z"
	}
	return &PromotionSource{
		svc:       svc,
		sheetID:   sheetID,
		readRange: readRange,
		logger:    logger.With("component", "sheets_promotion_source"),
	}
}

func (s *PromotionSource) Name() string { return "sheets" }

// FetchPromotions returns every data row of the range, in sheet order.
func (s *PromotionSource) FetchPromotions(ctx context.Context) ([]domain.PromotionRecord, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, s.readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read sheet values", "sheet_id", s.sheetID, "range", s.readRange, "error", err)
		return nil, fmt.Errorf("reading sheet %s: %w", s.sheetID, err)
	}

	records, err := RowsToRecords(resp.Values)
	if err != nil {
		s.logger.ErrorContext(ctx, "Sheet layout not usable", "sheet_id", s.sheetID, "error", err)
		return nil, err
	}
	s.logger.DebugContext(ctx, "Fetched promotion rows", "count", len(records))
	return records, nil
}

// RowsToRecords maps raw sheet rows to records using the header row.
// Short rows are padded with empty cells; fully empty rows are skipped.
func RowsToRecords(rows [][]interface{}) ([]domain.PromotionRecord, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	phoneIdx, promoIdx := -1, -1
	for i, cell := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(cellString(cell))) {
		case strings.ToLower(PhoneColumn):
			if phoneIdx < 0 {
				phoneIdx = i
			}
		case strings.ToLower(PromoColumn):
			if promoIdx < 0 {
				promoIdx = i
			}
		}
	}
	if phoneIdx < 0 || promoIdx < 0 {
		return nil, fmt.Errorf("header row must contain %q and %q columns", PhoneColumn, PromoColumn)
	}

	records := make([]domain.PromotionRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		phone := cellAt(row, phoneIdx)
		promo := cellAt(row, promoIdx)
		if phone == "" && promo == "" {
			continue
		}
		records = append(records, domain.PromotionRecord{Phone: phone, PromoLabel: promo})
	}
	return records, nil
}

func cellAt(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return cellString(row[idx])
}

// cellString renders a cell the way it reads on screen. Numeric cells
// (unformatted reads) are printed without exponent notation.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
