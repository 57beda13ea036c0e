package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/robfig/cron/v3"

	"arsitekku_backend/internals/configs"
	database "arsitekku_backend/internals/databases"
	txscheduler "arsitekku_backend/internals/features/finance/transactions/scheduler"
	txservice "arsitekku_backend/internals/features/finance/transactions/service"
	archservice "arsitekku_backend/internals/features/users/architects/service"
	middlewares "arsitekku_backend/internals/middlewares"
	"arsitekku_backend/internals/notifications"
	routes "arsitekku_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing (observability ringan)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// HTTP timeout guard (selaras dengan statement_timeout di DB)
		ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		dur := time.Since(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + migrasi
	database.ConnectDB()
	database.TunePool()
	database.Migrate()

	// ✅ MIDTRANS (sandbox/production dipilih sekali saat bootstrap)
	gateway := txservice.NewMidtransGateway(
		configs.MidtransServerKey,
		configs.UseMidtransProduction,
	)

	// 📧 Email (Brevo) — fire and forget
	notifications.InitEmailService()

	store := &txservice.TransactionStore{DB: database.DB}
	architects := &archservice.ArchitectService{DB: database.DB}
	mailer := &notifications.PaymentMailer{}

	// ⏱ sweeper transaksi kadaluarsa, jalan tiap jam
	sweeper := &txscheduler.ExpirySweeper{
		Store:      store,
		Gateway:    gateway,
		Architects: architects,
		Mailer:     mailer,
	}
	cr := cron.New()
	if _, err := cr.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := sweeper.RunOnce(ctx); err != nil {
			log.Printf("[SWEEPER] run gagal: %v", err)
		}
	}); err != nil {
		log.Fatalf("gagal daftar sweeper: %v", err)
	}
	cr.Start()

	// ❤️ Health check (anti-cold start)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, gateway)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + stop sweeper + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cronCtx := cr.Stop()
	<-cronCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
