package http

import (
	"embed"
	"errors"
	"io/fs"
	"log"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/weatherlog/backend/internal/domain"
	"github.com/weatherlog/backend/internal/service"
	"github.com/weatherlog/backend/pkg/utils"
)

//go:embed views
var viewsFS embed.FS

// AppConfig controls how NewApp builds the fiber application
type AppConfig struct {
	// SecretKey encrypts the flash cookie
	SecretKey string

	// AccessLog enables the request logger middleware
	AccessLog bool
}

// NewApp builds the fiber application with views, middleware and routes
func NewApp(cfg AppConfig, handler *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Weatherlog v1.0",
		Views:        newViews(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: ErrorHandler,
		// form values outlive the request in the history store
		Immutable: true,
	})

	// Middleware
	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: CookieKey(cfg.SecretKey),
	}))

	SetupRoutes(app, handler)
	return app
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// Pages
	app.Get("/", handler.Home)
	app.Post("/", handler.Search)
	app.Get("/history", handler.History)
	app.Get("/update/:id", handler.EditRecord)
	app.Post("/update/:id", handler.UpdateRecord)
	app.Get("/delete/:id", handler.DeleteRecord)
	app.Post("/delete/:id", handler.DeleteRecord)

	// JSON and downloads
	app.Get("/weather_by_coords", handler.WeatherByCoords)
	app.Get("/export/csv", handler.ExportCSV)
}

// ErrorHandler answers JSON endpoints with {"error": ...} and pages with plain text
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("Request %s %s failed: %v", c.Method(), c.Path(), err)
	}

	if isJSONPath(c.Path()) {
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
	return c.Status(code).SendString(message)
}

func isJSONPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/weather_by_coords")
}

func newViews() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}

	engine := html.NewFileSystem(nethttp.FS(sub), ".html")
	engine.AddFunc("value", domain.StringValue)
	engine.AddFunc("decimal", utils.FormatDecimal)
	engine.AddFunc("icon", service.IconURL)
	engine.AddFunc("timestamp", func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 UTC")
	})
	return engine
}
