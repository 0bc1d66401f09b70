package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/daycast/backend/internal/ai"
	"github.com/daycast/backend/internal/auth"
	"github.com/daycast/backend/internal/config"
	"github.com/daycast/backend/internal/events"
	"github.com/daycast/backend/internal/logging"
	"github.com/daycast/backend/internal/middleware"
	"github.com/daycast/backend/internal/notify"
	"github.com/daycast/backend/internal/stats"
	"github.com/daycast/backend/internal/store"
	"github.com/daycast/backend/internal/users"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	zlog, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalw("postgres connect", "err", err)
	}
	defer pgPool.Close()
	userStore := store.NewPostgresStore(pgPool)
	if err := userStore.Migrate(ctx); err != nil {
		logger.Fatalw("postgres migrate", "err", err)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatalw("mongo connect", "err", err)
	}
	defer mongoClient.Disconnect(ctx)
	eventStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Fatalw("redis connect", "err", err)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb)

	// ── MinIO ────────────────────────────────────────────────
	avatarStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Fatalw("minio connect", "err", err)
	}

	// ── Collaborators ────────────────────────────────────────
	completer := ai.NewCompletionClient(cfg.CompletionURL, cfg.CompletionAPIKey, cfg.CompletionModel)
	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, cfg.FrontendURL)

	// ── Services & handlers ──────────────────────────────────
	eventService := events.NewService(eventStore)
	aggregator := stats.NewAggregator(eventStore)

	authHandler := auth.NewHandler(userStore, sessions, logger)
	eventHandler := events.NewHandler(eventService, userStore, mailer, logger)
	statsHandler := stats.NewHandler(aggregator, logger)
	userHandler := users.NewHandler(userStore, avatarStore, logger)
	aiHandler := ai.NewHandler(completer, eventStore, logger)

	// ── Reminder dispatcher ──────────────────────────────────
	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()
	dispatcher := notify.NewDispatcher(eventStore, userStore, mailer, logger, cfg.ReminderInterval)
	go dispatcher.Run(dispatchCtx)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public except /me and /verify)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(middleware.RequireAuth(sessions)).Get("/me", authHandler.Me)
		r.With(middleware.RequireAuth(sessions)).Get("/verify", authHandler.Verify)
	})

	// Event routes (protected)
	r.Route("/api/events", func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessions))
		r.Get("/statistics", statsHandler.Statistics)
		r.Post("/", eventHandler.Create)
		r.Get("/", eventHandler.List)
		r.Get("/{id}", eventHandler.Get)
		r.Put("/{id}", eventHandler.Update)
		r.Delete("/{id}", eventHandler.Delete)
		r.Post("/{id}/attendees", eventHandler.AddAttendee)
		r.Put("/{id}/attendees/{attendeeId}", eventHandler.UpdateAttendeeStatus)
	})

	// Profile routes (protected)
	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessions))
		r.Get("/profile", userHandler.Profile)
		r.Put("/profile", userHandler.UpdateProfile)
		r.Post("/profile/image", userHandler.UploadImage)
		r.Get("/profile/image", userHandler.Image)
	})

	// AI routes (protected)
	r.Route("/api/ai", func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessions))
		r.Post("/generate-description", aiHandler.GenerateDescription)
		r.Post("/generate-checklist", aiHandler.GenerateChecklist)
		r.Post("/generate-summary", aiHandler.GenerateSummary)
		r.Get("/scheduling-suggestions", aiHandler.SchedulingSuggestions)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		logger.Infow("backend listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopDispatch()
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
