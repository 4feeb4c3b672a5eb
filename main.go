package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	waLog "go.mau.fi/whatsmeow/util/log"
	"golang.org/x/time/rate"

	"gowa-blast/config"
	"gowa-blast/database"
	"gowa-blast/internal/handler"
	"gowa-blast/internal/logger"
	customMiddleware "gowa-blast/internal/middleware"
	"gowa-blast/internal/service"
	"gowa-blast/internal/wa"
	"gowa-blast/internal/ws"
)

func main() {

	// Load .env (ignore error when the file does not exist, e.g. in
	// production).
	_ = godotenv.Load()

	cfg := config.Load()

	rootLog := waLog.Stdout("Blast", "INFO", true)

	// WebSocket hub for status / qr / log fan-out.
	hub := ws.NewHub()
	go hub.Run()

	// Every published event goes to the hub; log events additionally
	// land in the blast log file.
	var publisher ws.RealtimePublisher = hub
	sink, err := logger.NewFileSink(cfg.BlastLogPath)
	if err != nil {
		log.Printf("Warning: blast log disabled: %v", err)
	} else {
		publisher = ws.MultiPublisher{hub, sink}
	}

	// Per-session whatsmeow credential stores.
	stores := database.NewStores(cfg.SessionDir, rootLog.Sub("Database"))

	factory := wa.NewFactory(stores, rootLog.Sub("Client"), cfg.DeviceName)
	registry := service.NewRegistry(publisher, factory, stores, rootLog.Sub("Registry"))
	blaster := service.NewBlaster(publisher, rootLog.Sub("Blaster"),
		cfg.CountryPrefix, cfg.AddressSuffix, cfg.MinDelay, cfg.MaxDelay)

	service.InitAuthConfig(cfg.JWTSecret)
	if !service.AuthEnabled() {
		log.Println("JWT_SECRET is not set, command surface is unauthenticated")
	}

	// Setup Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: []string{
			echo.GET,
			echo.POST,
			echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
	}))
	e.OPTIONS("/*", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimitPerSecond),
				Burst:     cfg.RateLimitBurst,
				ExpiresIn: cfg.RateLimitWindow,
			},
		),
	}))

	// Keep unexpected failures inside the {success:false} envelope so
	// no handler fault ever takes the process down.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := "Internal Server Error"

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			message = fmt.Sprintf("%v", he.Message)
		}

		if c.Response().Committed {
			return
		}
		_ = c.JSON(code, map[string]interface{}{
			"success": false,
			"error":   message,
		})
	}

	// Health check
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "WhatsApp blast API is running",
			"version": "1.0.0",
		})
	})

	// Realtime channel stays open like the frontend expects; events
	// carry no credentials beyond the QR payload the UI needs anyway.
	e.GET("/ws", handler.WebSocketHandler(hub))
	e.GET("/ws/:sessionId", handler.ListenSession(hub, registry))

	api := e.Group("")
	if service.AuthEnabled() {
		e.POST("/token", handler.IssueToken(cfg.APIKey))
		api.Use(customMiddleware.JWTAuthMiddleware())
	}

	api.GET("/sessions", handler.ListSessions(registry))
	api.POST("/session/init", handler.InitSession(registry))
	api.GET("/session/:sessionId/status", handler.GetSessionStatus(registry))
	api.GET("/session/:sessionId/qr", handler.GetSessionQR(registry))
	api.POST("/session/:sessionId/restart", handler.RestartSession(registry))

	api.POST("/send", handler.SendBlast(registry, blaster))
	api.POST("/send-file", handler.SendBlastFromFile(registry, blaster,
		cfg.ContactsDir, cfg.CountryPrefix, cfg.AddressSuffix))

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(e.Start(":" + cfg.Port))
}
