package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/layout"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/model"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/roster"
)

// mockFetcher is a mock implementation of SheetFetcher.
type mockFetcher struct {
	fetchFn func(ctx context.Context, shareURL string) ([]byte, error)
}

func (m *mockFetcher) FetchCSV(ctx context.Context, shareURL string) ([]byte, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, shareURL)
	}
	return nil, nil
}

// mockEngine is a mock implementation of LayoutEngine.
type mockEngine struct {
	generateFn func(ctx context.Context, rows []model.RosterRow, periodLabel, fallbackPrefix string, progress layout.ProgressFunc) (*bytes.Buffer, error)
}

func (m *mockEngine) Generate(ctx context.Context, rows []model.RosterRow, periodLabel, fallbackPrefix string, progress layout.ProgressFunc) (*bytes.Buffer, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, rows, periodLabel, fallbackPrefix, progress)
	}
	return bytes.NewBufferString("workbook"), nil
}

const sampleCSV = "Employee Name,Emp ID,Prefix\nAsha,E001,VIP\nRavi,E002,nan\n"

func TestGenerateFromSheet_Success(t *testing.T) {
	var capturedRows []model.RosterRow
	fetcher := &mockFetcher{
		fetchFn: func(ctx context.Context, shareURL string) ([]byte, error) {
			assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/edit", shareURL)
			return []byte(sampleCSV), nil
		},
	}
	engine := &mockEngine{
		generateFn: func(ctx context.Context, rows []model.RosterRow, periodLabel, fallbackPrefix string, progress layout.ProgressFunc) (*bytes.Buffer, error) {
			capturedRows = rows
			assert.Equal(t, "March 2025", periodLabel)
			assert.Equal(t, "EMP", fallbackPrefix)
			return bytes.NewBufferString("workbook"), nil
		},
	}

	svc := NewGenerateService(fetcher, engine)
	doc, err := svc.GenerateFromSheet(context.Background(), &model.GenerateSheetRequest{
		SheetURL:       "https://docs.google.com/spreadsheets/d/abc/edit",
		PeriodLabel:    "March 2025",
		FallbackPrefix: "EMP",
	})

	require.NoError(t, err)
	assert.Equal(t, "Coupons_March_2025.xlsx", doc.Filename)
	assert.Equal(t, []byte("workbook"), doc.Content)

	require.Len(t, capturedRows, 2)
	assert.Equal(t, model.RosterRow{Name: "Asha", EmployeeID: "E001", PrefixOverride: "VIP"}, capturedRows[0])
	assert.Equal(t, model.RosterRow{Name: "Ravi", EmployeeID: "E002", PrefixOverride: "nan"}, capturedRows[1])
}

func TestGenerateFromSheet_NilRequest(t *testing.T) {
	svc := NewGenerateService(&mockFetcher{}, &mockEngine{})

	_, err := svc.GenerateFromSheet(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestGenerateFromSheet_FetchError(t *testing.T) {
	fetchErr := errors.New("connection refused")
	fetcher := &mockFetcher{
		fetchFn: func(ctx context.Context, shareURL string) ([]byte, error) {
			return nil, fetchErr
		},
	}

	svc := NewGenerateService(fetcher, &mockEngine{})
	_, err := svc.GenerateFromSheet(context.Background(), &model.GenerateSheetRequest{
		SheetURL:    "https://docs.google.com/spreadsheets/d/abc/edit",
		PeriodLabel: "March 2025",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, fetchErr))
}

func TestGenerateFromSheet_InsufficientColumns(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFn: func(ctx context.Context, shareURL string) ([]byte, error) {
			return []byte("OnlyColumn\nvalue\n"), nil
		},
	}

	svc := NewGenerateService(fetcher, &mockEngine{})
	_, err := svc.GenerateFromSheet(context.Background(), &model.GenerateSheetRequest{
		SheetURL:    "https://docs.google.com/spreadsheets/d/abc/edit",
		PeriodLabel: "March 2025",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, roster.ErrInsufficientColumns))
}

func TestGenerateFromSheet_EmptyRosterPropagates(t *testing.T) {
	fetcher := &mockFetcher{
		fetchFn: func(ctx context.Context, shareURL string) ([]byte, error) {
			return []byte("Name,ID\n"), nil
		},
	}
	engine := &mockEngine{
		generateFn: func(ctx context.Context, rows []model.RosterRow, periodLabel, fallbackPrefix string, progress layout.ProgressFunc) (*bytes.Buffer, error) {
			assert.Empty(t, rows)
			return nil, layout.ErrEmptyRoster
		},
	}

	svc := NewGenerateService(fetcher, engine)
	_, err := svc.GenerateFromSheet(context.Background(), &model.GenerateSheetRequest{
		SheetURL:    "https://docs.google.com/spreadsheets/d/abc/edit",
		PeriodLabel: "March 2025",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, layout.ErrEmptyRoster))
}

func TestGenerateFromUpload_CSV(t *testing.T) {
	svc := NewGenerateService(&mockFetcher{}, &mockEngine{})

	doc, err := svc.GenerateFromUpload(context.Background(), "roster.csv", strings.NewReader(sampleCSV), "April 2025", "EMP")
	require.NoError(t, err)
	assert.Equal(t, "Coupons_April_2025.xlsx", doc.Filename)
}

func TestGenerateFromUpload_UnsupportedFormat(t *testing.T) {
	svc := NewGenerateService(&mockFetcher{}, &mockEngine{})

	_, err := svc.GenerateFromUpload(context.Background(), "roster.pdf", strings.NewReader("x"), "April 2025", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedRosterFormat))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Coupons_March_2025.xlsx", Filename("March 2025"))
	assert.Equal(t, "Coupons_Q1_FY_2526.xlsx", Filename("Q1, FY 25/26"))
	assert.Equal(t, "Coupons_.xlsx", Filename(""))
}
