package handler

import (
	"context"
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/layout"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/model"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/roster"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/service"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/pkg/sheetsource"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetServiceInterface defines the interface for coupon sheet generation.
type SheetServiceInterface interface {
	GenerateFromSheet(ctx context.Context, req *model.GenerateSheetRequest) (*model.GeneratedDocument, error)
	GenerateFromUpload(ctx context.Context, filename string, file io.Reader, periodLabel, fallbackPrefix string) (*model.GeneratedDocument, error)
}

// SheetHandler handles HTTP requests for coupon sheet generation.
type SheetHandler struct {
	service   SheetServiceInterface
	validator *validator.Validate
}

// NewSheetHandler creates a new SheetHandler with the given service and validator.
func NewSheetHandler(svc SheetServiceInterface, v *validator.Validate) *SheetHandler {
	return &SheetHandler{service: svc, validator: v}
}

// formatSheetValidationError converts validator errors to stable messages.
// Provides defensive handling for unknown fields with descriptive fallbacks.
func formatSheetValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
			case "SheetURL":
				if tag == "required" {
					return "invalid request: sheet_url is required"
				}
				if tag == "notblank" {
					return "invalid request: sheet_url cannot be whitespace only"
				}
				if tag == "url" {
					return "invalid request: sheet_url is not a valid link"
				}
				return "invalid request: sheet_url is invalid"
			case "PeriodLabel":
				if tag == "required" {
					return "invalid request: period_label is required"
				}
				if tag == "notblank" {
					return "invalid request: period_label cannot be whitespace only"
				}
				if tag == "max" {
					return "invalid request: period_label exceeds maximum length of 64"
				}
				return "invalid request: period_label is invalid"
			case "FallbackPrefix":
				if tag == "max" {
					return "invalid request: fallback_prefix exceeds maximum length of 16"
				}
				return "invalid request: fallback_prefix is invalid"
			default:
				if tag == "required" {
					return "invalid request: " + field + " is required"
				}
				if tag == "max" {
					return "invalid request: " + field + " exceeds maximum length"
				}
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}

// GenerateFromSheet handles POST /api/coupon-sheets requests: fetches the
// roster behind the submitted link and responds with the workbook as a
// download attachment.
func (h *SheetHandler) GenerateFromSheet(c *fiber.Ctx) error {
	var req model.GenerateSheetRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatSheetValidationError(err)})
	}

	doc, err := h.service.GenerateFromSheet(c.Context(), &req)
	if err != nil {
		return sheetError(c, err)
	}

	log.Info().
		Str("filename", doc.Filename).
		Int("bytes", len(doc.Content)).
		Msg("coupon sheet generated")
	return sendDocument(c, doc)
}

// GenerateFromUpload handles POST /api/coupon-sheets/upload requests
// carrying the roster as a multipart file next to the form fields.
func (h *SheetHandler) GenerateFromUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("roster")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: roster file is required"})
	}

	req := model.GenerateUploadRequest{
		PeriodLabel:    c.FormValue("period_label"),
		FallbackPrefix: c.FormValue("fallback_prefix"),
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatSheetValidationError(err)})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: roster file is unreadable"})
	}
	defer func() { _ = file.Close() }()

	doc, err := h.service.GenerateFromUpload(c.Context(), fileHeader.Filename, file, req.PeriodLabel, req.FallbackPrefix)
	if err != nil {
		return sheetError(c, err)
	}

	log.Info().
		Str("filename", doc.Filename).
		Str("roster_file", fileHeader.Filename).
		Int("bytes", len(doc.Content)).
		Msg("coupon sheet generated from upload")
	return sendDocument(c, doc)
}

// sheetError maps core and collaborator errors onto HTTP responses. Error
// kinds stay distinct here even though the UI shell may flatten them.
func sheetError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, sheetsource.ErrInvalidSheetURL):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: sheet_url is not a recognizable spreadsheet link"})
	case errors.Is(err, service.ErrUnsupportedRosterFormat):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: roster file must be .csv or .xlsx"})
	case errors.Is(err, service.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	case errors.Is(err, roster.ErrInsufficientColumns):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "roster needs at least a name column and an id column"})
	case errors.Is(err, layout.ErrEmptyRoster):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "roster has no employee rows"})
	case errors.Is(err, sheetsource.ErrFetchFailed):
		log.Error().Err(err).Msg("roster sheet download failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not download the roster sheet"})
	default:
		log.Error().Err(err).Msg("failed to generate coupon sheet")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

func sendDocument(c *fiber.Ctx, doc *model.GeneratedDocument) error {
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	return c.Send(doc.Content)
}
