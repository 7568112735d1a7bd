package http

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/weatherlog/backend/internal/domain"
	"github.com/weatherlog/backend/internal/export"
	"github.com/weatherlog/backend/internal/service"
	"github.com/weatherlog/backend/internal/validation"
	"github.com/weatherlog/backend/pkg/utils"
)

const layout = "layouts/main"

// Handler contains all HTTP handlers
type Handler struct {
	lookup  *service.LookupService
	history *service.HistoryService
}

// NewHandler creates a new handler
func NewHandler(lookup *service.LookupService, history *service.HistoryService) *Handler {
	return &Handler{
		lookup:  lookup,
		history: history,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	if err := h.history.Health(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "weatherlog",
		"version": "1.0.0",
	})
}

// Home renders the empty search form
func (h *Handler) Home(c *fiber.Ctx) error {
	return h.renderHome(c, fiber.Map{"Form": validation.SearchForm{}})
}

// Search looks up a city, saves it to history and renders the result.
// Every failure is shown inline on the same page.
func (h *Handler) Search(c *fiber.Ctx) error {
	form := validation.NewSearchForm(c.FormValue("city"), c.FormValue("start_date"), c.FormValue("end_date"))
	data := fiber.Map{"Form": form}

	res, err := h.lookup.Search(c.Context(), form)

	var (
		verr *validation.Error
		perr *domain.ProviderError
		nerr *domain.NetworkError
	)
	switch {
	case err == nil:
		addFlash(c, "success", "Weather saved to history.")
		data["Weather"] = &res.Weather
		data["Forecast"] = res.Forecast
	case errors.As(err, &verr):
		data["Error"] = verr.Message
	case errors.As(err, &perr):
		data["Error"] = utils.Capitalize(perr.Message)
	case errors.As(err, &nerr):
		data["Error"] = "Network error: " + nerr.Error()
	default:
		return err
	}

	return h.renderHome(c, data)
}

func (h *Handler) renderHome(c *fiber.Ctx, data fiber.Map) error {
	data["Title"] = "Search"
	data["Flashes"] = popFlashes(c)
	return c.Render("home", data, layout)
}

// History lists every saved lookup, newest first
func (h *Handler) History(c *fiber.Ctx) error {
	records, err := h.history.List(c.Context())
	if err != nil {
		return err
	}

	return c.Render("history", fiber.Map{
		"Title":   "History",
		"Records": records,
		"Flashes": popFlashes(c),
	}, layout)
}

// EditRecord renders the edit form for one record
func (h *Handler) EditRecord(c *fiber.Ctx) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	record, err := h.history.Get(c.Context(), id)
	if err != nil {
		return notFound(err)
	}

	return c.Render("update", fiber.Map{
		"Title":   fmt.Sprintf("Edit #%d", id),
		"Record":  record,
		"Flashes": popFlashes(c),
	}, layout)
}

// UpdateRecord applies the edit form. Invalid input sends the user back to the
// form; a store failure is reported on the history page.
func (h *Handler) UpdateRecord(c *fiber.Ctx) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}
	if _, err := h.history.Get(c.Context(), id); err != nil {
		return notFound(err)
	}

	form := validation.NewUpdateForm(
		c.FormValue("city"),
		c.FormValue("start_date"),
		c.FormValue("end_date"),
		c.FormValue("temperature"),
		c.FormValue("description"),
	)

	_, err = h.history.Update(c.Context(), id, form)

	var verr *validation.Error
	switch {
	case err == nil:
		addFlash(c, "success", "Record updated.")
	case errors.As(err, &verr):
		addFlash(c, "error", verr.Message)
		return c.Redirect(fmt.Sprintf("/update/%d", id))
	case errors.Is(err, domain.ErrRecordNotFound):
		return notFound(err)
	default:
		addFlash(c, "error", "Update failed: "+err.Error())
	}

	return c.Redirect("/history")
}

// DeleteRecord removes a record and returns to the history page
func (h *Handler) DeleteRecord(c *fiber.Ctx) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	err = h.history.Delete(c.Context(), id)
	switch {
	case err == nil:
		addFlash(c, "success", "Record deleted.")
	case errors.Is(err, domain.ErrRecordNotFound):
		return notFound(err)
	default:
		addFlash(c, "error", "Delete failed: "+err.Error())
	}

	return c.Redirect("/history")
}

// WeatherByCoords returns current weather for lat/lon as JSON without saving it
func (h *Handler) WeatherByCoords(c *fiber.Ctx) error {
	q := validation.CoordsQuery{Lat: c.Query("lat"), Lon: c.Query("lon")}

	w, err := h.lookup.ByCoords(c.Context(), q)

	var (
		verr *validation.Error
		perr *domain.ProviderError
		nerr *domain.NetworkError
	)
	switch {
	case err == nil:
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Message})
	case errors.As(err, &perr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": perr.Message})
	case errors.As(err, &nerr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": nerr.Error()})
	default:
		return err
	}

	return c.JSON(fiber.Map{
		"city":        w.City,
		"country":     domain.StringPtr(w.Country),
		"temperature": w.Temperature,
		"description": w.Description,
		"icon":        domain.StringPtr(w.Icon),
	})
}

// ExportCSV streams the full history as a CSV attachment
func (h *Handler) ExportCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.history.ExportCSV(c.Context(), &buf); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+export.Filename)
	return c.Send(buf.Bytes())
}

func recordID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid record id")
	}
	return int64(id), nil
}

func notFound(err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Record not found")
	}
	return err
}
