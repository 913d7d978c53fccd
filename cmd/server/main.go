package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ritualplanner/ritualplanner/internal/config"
	"github.com/ritualplanner/ritualplanner/internal/database"
	"github.com/ritualplanner/ritualplanner/internal/handler"
	"github.com/ritualplanner/ritualplanner/internal/middleware"
	"github.com/ritualplanner/ritualplanner/internal/migrate"
	"github.com/ritualplanner/ritualplanner/internal/notify"
	"github.com/ritualplanner/ritualplanner/internal/otp"
	"github.com/ritualplanner/ritualplanner/internal/queue"
	"github.com/ritualplanner/ritualplanner/internal/repository"
	"github.com/ritualplanner/ritualplanner/internal/router"
)

func main() {
	// .env is a development convenience; in production the variables come
	// from the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := migrate.Up(context.Background(), db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	// Redis is optional. Without it the rate limiter passes everything
	// through and OTP codes live in process memory.
	rdb := config.NewRedisClient()
	var otpStore otp.Store
	if rdb != nil {
		otpStore = otp.NewRedisStore(rdb)
	} else {
		otpStore = otp.NewMemoryStore()
	}

	mailer, err := notify.NewMailer(cfg)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}
	go func() {
		if err := queue.StartEmailConsumer(mailer); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clients := repository.NewClientRepo(db)
	coworkers := repository.NewCoWorkerRepo(db)
	notes := repository.NewNoteRepo(db)
	templates := repository.NewTemplateRepo(db)
	bills := repository.NewBillRepo(db)
	tasks := repository.NewTaskRepo(db, cfg.PaymentCleanup == config.PaymentCleanupCascade)
	payments := repository.NewPaymentRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterPublic(e, handler.NewContactHandler(cfg))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, otpStore), limiter, cfg.JWTSecret, users)
	router.RegisterAPI(e, router.Handlers{
		Clients:   handler.NewClientHandler(clients),
		CoWorkers: handler.NewCoWorkerHandler(coworkers, users),
		Notes:     handler.NewNoteHandler(notes),
		Templates: handler.NewTemplateHandler(templates),
		Bills:     handler.NewBillHandler(bills),
		Tasks:     handler.NewTaskHandler(tasks),
		Payments:  handler.NewPaymentHandler(payments),
	}, cfg.JWTSecret, users)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
