package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/ai"
	"github.com/01moynul/hidaaya-golang/internal/auth"
	"github.com/01moynul/hidaaya-golang/internal/catalog"
	"github.com/01moynul/hidaaya-golang/internal/checkout"
	"github.com/01moynul/hidaaya-golang/internal/config"
	"github.com/01moynul/hidaaya-golang/internal/database"
	"github.com/01moynul/hidaaya-golang/internal/email"
	"github.com/01moynul/hidaaya-golang/internal/handlers"
	"github.com/01moynul/hidaaya-golang/internal/logger"
	"github.com/01moynul/hidaaya-golang/internal/orders"
	"github.com/01moynul/hidaaya-golang/internal/payment"
	"github.com/01moynul/hidaaya-golang/internal/reports"
	"github.com/01moynul/hidaaya-golang/internal/routes"
	"github.com/01moynul/hidaaya-golang/internal/session"
	"github.com/01moynul/hidaaya-golang/internal/settings"
	"github.com/01moynul/hidaaya-golang/internal/storage"
	"github.com/01moynul/hidaaya-golang/internal/users"
)

func main() {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFile)
	defer zlog.Sync()

	// 1. --- Main Database Connection (Read/Write) ---
	db, err := database.OpenDB(cfg.DatabaseDSN)
	if err != nil {
		zlog.Fatal("failed to connect to primary database", zap.Error(err))
	}
	defer db.Close()

	schemaCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(schemaCtx, db); err != nil {
		cancel()
		zlog.Fatal("failed to apply schema", zap.Error(err))
	}
	cancel()

	// 2. --- Stores ---
	settingsStore := settings.NewStore(db, zlog)
	productStore := catalog.NewStore(db, zlog)
	products := catalog.New(productStore, catalog.NewStatic(), zlog)
	userStore := users.NewStore(db)
	sessionBackend := session.NewSQLBackend(db)
	if n, err := sessionBackend.DeleteExpired(context.Background(), time.Now()); err != nil {
		zlog.Warn("failed to purge expired visitor sessions", zap.Error(err))
	} else if n > 0 {
		zlog.Info("purged expired visitor sessions", zap.Int64("count", n))
	}
	orderStore, err := orders.NewStore(db, cfg.NodeID, zlog)
	if err != nil {
		zlog.Fatal("failed to create order id generator", zap.Int64("node_id", cfg.NodeID), zap.Error(err))
	}

	// 3. --- Email ---
	pipeline := email.NewPipeline(newSender(cfg, zlog), cfg.EmailFrom, cfg.FallbackNotifyEmail, settingsStore, zlog)
	var notifier email.Notifier = pipeline
	if cfg.NotifyFunctionURL != "" {
		notifier = email.NewClient(cfg.NotifyFunctionURL, cfg.FunctionsSecret)
		zlog.Info("order emails go through remote functions", zap.String("url", cfg.NotifyFunctionURL))
	}
	if cfg.FunctionsSecret == "" {
		zlog.Warn("FUNCTIONS_SECRET not set; /v1/functions refuses every call")
	}

	// 4. --- Payments ---
	var verifier payment.Verifier = payment.NoopVerifier{}
	if cfg.PaymentVerificationEnabled() {
		verifier = payment.NewPaystackVerifier(cfg.PaystackSecretKey)
	} else {
		zlog.Warn("PAYSTACK_SECRET_KEY not set; payments are not verified server-side")
	}

	orchestrator := &checkout.Orchestrator{
		Orders:            orderStore,
		Settings:          settingsStore,
		Notifier:          notifier,
		Verifier:          verifier,
		PublicKey:         cfg.PaystackPublicKey,
		ReferencePrefix:   cfg.PaymentReferencePrefix,
		FallbackRecipient: cfg.FallbackNotifyEmail,
		Logger:            zlog.Named("checkout"),
	}

	// 5. --- Background Workers (Cron) ---
	scheduler := reports.NewScheduler(orderStore, pipeline, "", zlog.Named("reports"))
	if err := scheduler.Start(cfg.ReportSchedule); err != nil {
		zlog.Fatal("failed to schedule sales report", zap.Error(err))
	}
	defer scheduler.Stop()

	tokens := auth.NewTokens(cfg.JWTSecret, auth.DefaultTTL)
	app := &handlers.Handlers{
		Catalog:   products,
		Products:  productStore,
		Settings:  settingsStore,
		Orders:    orderStore,
		Users:     userStore,
		Tokens:    tokens,
		Sessions:  session.NewStore(cfg.SessionSecret, strings.HasPrefix(cfg.BaseURL, "https://"), sessionBackend),
		Checkout:  orchestrator,
		Notifier:  notifier,
		Functions: pipeline,
		Files:     storage.NewLocal(cfg.UploadDir, cfg.BaseURL),
		Reports:   scheduler,
		Logger:    zlog,
	}

	// 6. --- AI Service Initialization (optional) ---
	if cfg.GeminiAPIKey != "" {
		aiDB := db
		if cfg.ReadOnlyDSN != "" {
			readOnly, err := database.OpenDB(cfg.ReadOnlyDSN)
			if err != nil {
				zlog.Fatal("failed to connect to read-only database", zap.Error(err))
			}
			defer readOnly.Close()
			aiDB = readOnly
		}
		aiService, err := ai.NewService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, aiDB, zlog.Named("ai"))
		if err != nil {
			zlog.Fatal("failed to initialize AI service", zap.Error(err))
		}
		defer aiService.Close()
		app.AI = aiService
	}

	// --- Router Setup ---
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(app, routes.Options{
		CORSOrigin:      cfg.CORSOrigin,
		UploadDir:       cfg.UploadDir,
		Tokens:          tokens,
		Roles:           userStore,
		FunctionsSecret: cfg.FunctionsSecret,
		Logger:          zlog.Named("http"),
	})

	// --- Start Server ---
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zlog.Info("starting Hidaaya API server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	zlog.Info("shutdown signal received; draining requests")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newSender picks the email transport: Resend when an API key is set, then
// SMTP, then a sender that only logs.
func newSender(cfg config.Config, zlog *zap.Logger) email.Sender {
	switch {
	case cfg.ResendAPIKey != "":
		return email.NewResendSender(cfg.ResendAPIKey)
	case cfg.SMTPHost != "":
		return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	}
	zlog.Warn("no email transport configured; emails are only logged")
	return email.LogSender{Logger: zlog.Named("email")}
}
