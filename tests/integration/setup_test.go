//go:build integration

// Package integration contains end-to-end flow tests that exercise the whole
// generation pipeline through the HTTP surface: handler, validation, column
// resolution, layout engine and code generation. Only the outbound Google
// Sheets fetch is stubbed.
//
// Usage:
//
//	go test -v -race -tags integration ./tests/integration/...
package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"mime/multipart"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/handler"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/layout"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/service"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/validator"
)

// csvFetcher serves a fixed CSV payload in place of the Google Sheets export.
type csvFetcher struct {
	csv []byte
	err error
}

func (f *csvFetcher) FetchCSV(ctx context.Context, shareURL string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.csv, nil
}

// newTestApp wires the real generation stack behind a Fiber app, mirroring
// the route and middleware setup in cmd/api.
func newTestApp(fetcher service.SheetFetcher, opts layout.Options, password string) *fiber.App {
	app := fiber.New()

	validate := validator.New()
	engine := layout.NewEngine(opts)
	generateService := service.NewGenerateService(fetcher, engine)
	sheetHandler := handler.NewSheetHandler(generateService, validate)

	healthHandler := handler.NewHealthHandler(rand.Reader)
	app.Get("/health", healthHandler.Check)

	api := app.Group("/api", handler.PasswordGate(password))
	api.Post("/coupon-sheets", sheetHandler.GenerateFromSheet)
	api.Post("/coupon-sheets/upload", sheetHandler.GenerateFromUpload)
	return app
}

// newMultipart writes a roster file plus form fields into buf and returns
// the multipart content type for the request header.
func newMultipart(t *testing.T, buf *bytes.Buffer, filename, content string, fields map[string]string) string {
	t.Helper()
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("roster", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType()
}
