// Package api exposes the ingestion pipeline and the date calculator
// over HTTP for the upload-handling frontend.
package api

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/financas-app/statement-parser/internal/invoicedates"
	"github.com/financas-app/statement-parser/internal/logger"
	"github.com/financas-app/statement-parser/internal/models"
	"github.com/financas-app/statement-parser/internal/parser"
)

// Version is the release version reported by the health endpoint and
// the CLI.
const Version = "1.1.0"

// ParseResponse is the JSON reply from POST /api/parse.
type ParseResponse struct {
	ParseID string `json:"parseId"`
	CardID  string `json:"cardId,omitempty"`
	models.ParseResult
	Competency   *models.InvoiceCompetency `json:"competency,omitempty"`
	InvoiceDates *InvoiceDatesResponse     `json:"invoiceDates,omitempty"`
}

// InvoiceDatesResponse carries calculated dates plus display forms.
type InvoiceDatesResponse struct {
	models.CalculatedDates
	ClosingDateDisplay string `json:"closingDateDisplay"`
	DueDateDisplay     string `json:"dueDateDisplay"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Dispatcher     *parser.Dispatcher
	MaxUploadBytes int64
	Log            zerolog.Logger
}

// Register sets up the routes on the fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.handleHealth)
	app.Post("/api/parse", h.handleParse)
	app.Get("/api/invoice-dates", h.handleInvoiceDates)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
	})
}

func (h *Handler) handleParse(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.fail(c, fiber.StatusBadRequest, "no file uploaded: use form field 'file'")
	}
	if h.MaxUploadBytes > 0 && fileHeader.Size > h.MaxUploadBytes {
		return h.fail(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte upload limit", h.MaxUploadBytes))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "could not read uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "could not read uploaded file")
	}

	file := models.StatementFile{
		Name:      fileHeader.Filename,
		MediaType: fileHeader.Header.Get("Content-Type"),
		Data:      data,
	}

	resp := ParseResponse{
		ParseID: uuid.NewString(),
		CardID:  c.FormValue("cardId"),
	}

	// Target competency and card cycle configuration are optional; when
	// present they enrich the response with calculated invoice dates.
	month, _ := strconv.Atoi(c.FormValue("month"))
	year, _ := strconv.Atoi(c.FormValue("year"))
	if month != 0 && year != 0 {
		competency := models.InvoiceCompetency{Month: month, Year: year}
		if err := invoicedates.ValidateCompetency(competency); err != nil {
			return h.fail(c, fiber.StatusBadRequest, err.Error())
		}
		resp.Competency = &competency

		closingDay, _ := strconv.Atoi(c.FormValue("closingDay"))
		dueDay, _ := strconv.Atoi(c.FormValue("dueDay"))
		if closingDay != 0 && dueDay != 0 {
			dates, err := invoicedates.CalculateInvoiceDates(
				models.CardDates{ClosingDay: closingDay, DueDay: dueDay},
				*resp.Competency,
			)
			if err != nil {
				return h.fail(c, fiber.StatusBadRequest, err.Error())
			}
			resp.InvoiceDates = displayDates(dates)
		}
	}

	// Dispatcher log lines for this request carry the parse ID.
	ctx := logger.WithContext(c.UserContext(),
		h.Log.With().Str("parse_id", resp.ParseID).Logger())
	resp.ParseResult = h.Dispatcher.Parse(ctx, file)

	status := fiber.StatusOK
	if !resp.ParseResult.Success {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(resp)
}

func (h *Handler) handleInvoiceDates(c *fiber.Ctx) error {
	card := models.CardDates{
		ClosingDay: c.QueryInt("closingDay"),
		DueDay:     c.QueryInt("dueDay"),
	}
	competency := models.InvoiceCompetency{
		Month: c.QueryInt("month"),
		Year:  c.QueryInt("year"),
	}

	dates, err := invoicedates.CalculateInvoiceDates(card, competency)
	if err != nil {
		return h.fail(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(displayDates(dates))
}

func displayDates(dates models.CalculatedDates) *InvoiceDatesResponse {
	return &InvoiceDatesResponse{
		CalculatedDates:    dates,
		ClosingDateDisplay: invoicedates.FormatForDisplay(dates.ClosingDate),
		DueDateDisplay:     invoicedates.FormatForDisplay(dates.DueDate),
	}
}

func (h *Handler) fail(c *fiber.Ctx, status int, msg string) error {
	h.Log.Warn().Int("status", status).Str("path", c.Path()).Msg(msg)
	return c.Status(status).JSON(ParseResponse{
		ParseResult: models.Failure(msg),
	})
}
