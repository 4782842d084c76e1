package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/layout"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/model"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/roster"
)

// SheetFetcher downloads the roster CSV behind a shareable spreadsheet link.
type SheetFetcher interface {
	FetchCSV(ctx context.Context, shareURL string) ([]byte, error)
}

// LayoutEngine renders roster rows into a printable coupon workbook.
type LayoutEngine interface {
	Generate(ctx context.Context, rows []model.RosterRow, periodLabel, fallbackPrefix string, progress layout.ProgressFunc) (*bytes.Buffer, error)
}

// GenerateService ties roster acquisition to coupon sheet rendering.
type GenerateService struct {
	fetcher SheetFetcher
	engine  LayoutEngine
}

// NewGenerateService creates a GenerateService with the given fetcher and
// layout engine.
func NewGenerateService(fetcher SheetFetcher, engine LayoutEngine) *GenerateService {
	return &GenerateService{fetcher: fetcher, engine: engine}
}

// GenerateFromSheet downloads the roster behind a shareable link and renders
// the coupon workbook.
func (s *GenerateService) GenerateFromSheet(ctx context.Context, req *model.GenerateSheetRequest) (*model.GeneratedDocument, error) {
	// Defense-in-depth: check for nil even though the handler validates
	if req == nil {
		return nil, ErrInvalidRequest
	}

	data, err := s.fetcher.FetchCSV(ctx, req.SheetURL)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}

	table, err := roster.ParseCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	return s.generate(ctx, table, req.PeriodLabel, req.FallbackPrefix)
}

// GenerateFromUpload renders the coupon workbook from an uploaded roster
// file. The file extension selects the parser; anything but .csv or .xlsx
// is rejected with ErrUnsupportedRosterFormat.
func (s *GenerateService) GenerateFromUpload(ctx context.Context, filename string, file io.Reader, periodLabel, fallbackPrefix string) (*model.GeneratedDocument, error) {
	var (
		table *roster.Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		table, err = roster.ParseCSV(file)
	case ".xlsx":
		table, err = roster.ParseXLSX(file)
	default:
		return nil, ErrUnsupportedRosterFormat
	}
	if err != nil {
		return nil, fmt.Errorf("parse roster %q: %w", filename, err)
	}
	return s.generate(ctx, table, periodLabel, fallbackPrefix)
}

func (s *GenerateService) generate(ctx context.Context, table *roster.Table, periodLabel, fallbackPrefix string) (*model.GeneratedDocument, error) {
	cols, err := roster.Resolve(table.Columns)
	if err != nil {
		return nil, err
	}

	prefixCol := "using fallback"
	if cols.HasPrefix() {
		prefixCol = cols.Prefix
	}
	log.Info().
		Str("name_column", cols.Name).
		Str("id_column", cols.ID).
		Str("prefix_column", prefixCol).
		Int("rows", len(table.Rows)).
		Msg("resolved roster columns")

	buf, err := s.engine.Generate(ctx, table.RosterRows(cols), periodLabel, fallbackPrefix, func(done, total int) {
		log.Debug().Int("done", done).Int("total", total).Msg("rendered employee page")
	})
	if err != nil {
		return nil, err
	}

	return &model.GeneratedDocument{
		Filename: Filename(periodLabel),
		Content:  buf.Bytes(),
	}, nil
}

// Filename builds the suggested download name for a period label: spaces
// become underscores and punctuation is stripped.
func Filename(periodLabel string) string {
	var b strings.Builder
	b.WriteString("Coupons_")
	for _, r := range strings.ReplaceAll(strings.TrimSpace(periodLabel), " ", "_") {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	b.WriteString(".xlsx")
	return b.String()
}
