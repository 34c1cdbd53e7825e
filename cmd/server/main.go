package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/adisurya/hr-admin-api/internal/config"
	"github.com/adisurya/hr-admin-api/internal/database"
	"github.com/adisurya/hr-admin-api/internal/handler"
	"github.com/adisurya/hr-admin-api/internal/mail"
	"github.com/adisurya/hr-admin-api/internal/middleware"
	"github.com/adisurya/hr-admin-api/internal/queue"
	"github.com/adisurya/hr-admin-api/internal/repository"
	"github.com/adisurya/hr-admin-api/internal/router"
	audit "github.com/adisurya/hr-admin-api/internal/service"
)

func main() {
	// .env is a development convenience; in production the variables
	// come from the environment and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and response caching. A nil client
	// disables both; the API itself keeps working.
	rdb := config.NewRedisClient()

	users := &repository.UserRepo{DB: db}
	sessions := &repository.SessionRepo{DB: db}
	resets := &repository.LoginTokenRepo{DB: db}
	roles := &repository.RoleRepo{DB: db}
	perms := &repository.PermissionRepo{DB: db}
	menus := &repository.MenuRepo{DB: db}

	mailer := mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	publisher := audit.NewPublisher()

	// The audit consumer drains auth events into the log sink. It
	// reconnects on its own; a missing broker only costs the audit
	// trail.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer: %v", err)
		}
	}()

	deps := router.Deps{
		Auth:      handler.NewAuthHandler(cfg, users, sessions, resets, mailer, publisher),
		Access:    handler.NewAccessHandler(perms, menus, roles, publisher),
		Account:   handler.NewAccountHandler(users),
		JWTSecret: cfg.JWTSecret,
		Sessions:  sessions,
		Perms:     perms,
	}
	if rdb != nil {
		deps.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		deps.Cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	e := echo.New()
	router.RegisterRoutes(e, deps)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
