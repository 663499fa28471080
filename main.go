package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"admissions_backend/internals/configs"
	database "admissions_backend/internals/databases"
	helper "admissions_backend/internals/helpers"
	"admissions_backend/internals/helpers/mailer"
	"admissions_backend/internals/helpers/pdf"
	"admissions_backend/internals/helpers/storage"
	"admissions_backend/internals/logger"
	middlewares "admissions_backend/internals/middlewares"
	reqLogger "admissions_backend/internals/middlewares/logger"
	routes "admissions_backend/internals/route"
	"admissions_backend/internals/scheduler"
	"admissions_backend/internals/seeds"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply migrations and exit")
	seedDir := flag.String("seed", "", "load JSON fixtures from this directory and exit")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	configs.LoadEnv()

	// 🔌 DB connect + migrations
	database.ConnectDB()
	database.TunePool()
	if *migrateOnly || configs.GetEnvBool("MIGRATE_ON_BOOT", true) {
		if err := database.RunMigrations(database.DSN()); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}
	if *migrateOnly {
		database.Close()
		return
	}
	database.WarmUpQueries()

	if *seedDir != "" {
		if err := seeds.RunAllSeeds(database.DB, *seedDir); err != nil {
			logger.Fatal("seeding failed", zap.Error(err))
		}
		logger.Info("seeding done")
		database.Close()
		return
	}

	rdb, err := database.ConnectRedis(context.Background())
	if err != nil {
		logger.Warn("redis unavailable, fee OTP disabled", zap.Error(err))
	}

	var store storage.Store
	if s3, err := storage.Default(); err != nil {
		logger.Warn("object storage not configured, using in-memory store", zap.Error(err))
		store = storage.NewMemory()
	} else {
		store = s3
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		BodyLimit:             8 << 20,
		ErrorHandler:          helper.FiberErrorHandler,
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(reqLogger.RequestContext(configs.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)))
	if !strings.EqualFold(configs.GetEnv("APP_ENV"), "production") {
		app.Use(fiberLogger.New(fiberLogger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	middlewares.SetupMiddlewares(app)

	routes.SetupRoutes(app, routes.Deps{
		DB:     database.DB,
		Redis:  rdb,
		Store:  store,
		Mailer: mailer.New(),
		PDF:    pdf.NewChrome(),
	})

	// ⏱ scheduler after DB is ready
	cron, err := scheduler.Start(database.DB)
	if err != nil {
		logger.Fatal("scheduler failed", zap.Error(err))
	}

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 60 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")
	go func() {
		logger.Info("listening", zap.String("port", port))
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	<-cron.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if rdb != nil {
		_ = rdb.Close()
	}
	database.Close()
}
