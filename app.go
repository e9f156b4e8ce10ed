// Package blog wires the services, storage and HTTP surface of the
// AI-moderated blog together.
package blog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/HCodeKeeper/ai-moderated-blog/analytics"
	"github.com/HCodeKeeper/ai-moderated-blog/api"
	"github.com/HCodeKeeper/ai-moderated-blog/authentication"
	"github.com/HCodeKeeper/ai-moderated-blog/autoreply"
	"github.com/HCodeKeeper/ai-moderated-blog/contents"
	"github.com/HCodeKeeper/ai-moderated-blog/db/sqlite3"
	"github.com/HCodeKeeper/ai-moderated-blog/discuss"
	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
	"github.com/HCodeKeeper/ai-moderated-blog/random"
	"github.com/HCodeKeeper/ai-moderated-blog/replies"
	"github.com/HCodeKeeper/ai-moderated-blog/server"
	"github.com/google/generative-ai-go/genai"
	"github.com/gorilla/sessions"
	"github.com/nasermirzaei89/env"
	"google.golang.org/api/option"
)

const (
	bloomFilterMinCapacity       = 10_000
	bloomFilterFalsePositiveRate = 0.01

	defaultWorkerBatchSize = 10

	defaultSystemInstruction = "You are the author of a blog post replying to a reader's comment. " +
		"Answer briefly, stay on the topic of the post and keep a friendly tone."
)

type App struct {
	server      *server.Server
	handler     *api.Handler
	worker      *autoreply.Worker
	db          *sql.DB
	genaiClient *genai.Client
}

func NewApp(ctx context.Context) (*App, error) {
	db, err := sqlite3.NewDB(ctx, env.GetString("DB_DSN", "file::memory:?cache=shared"))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	err = sqlite3.MigrateUp(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	userRepo := sqlite3.NewUserRepository(db)
	sessionRepo := sqlite3.NewSessionRepository(db)
	postRepo := sqlite3.NewPostRepository(db)
	commentRepo := sqlite3.NewCommentRepository(db)
	replyRepo := sqlite3.NewReplyRepository(db)
	jobRepo := sqlite3.NewJobRepository(db)
	statsRepo := sqlite3.NewCommentStatsRepository(db)

	authSvc := authentication.NewService(userRepo, sessionRepo, env.GetStringSlice("ADMIN_EMAILS", []string{}))

	err = authSvc.LoadBloomFilter(ctx, bloomFilterMinCapacity, bloomFilterFalsePositiveRate)
	if err != nil {
		return nil, fmt.Errorf("failed to load bloom filter: %w", err)
	}

	detector := moderation.NewWordListDetector()

	contentsSvc := contents.NewService(postRepo, userRepo, detector)

	scheduler := autoreply.NewScheduler(jobRepo)
	trigger := autoreply.NewTrigger(postRepo, scheduler)

	discussSvc := discuss.NewService(commentRepo, postRepo, userRepo, detector, trigger)
	repliesSvc := replies.NewService(replyRepo, commentRepo, userRepo, detector)
	analyticsSvc := analytics.NewService(statsRepo)

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(env.GetString("GEMINI_API_KEY", "")))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	generator := autoreply.NewGeminiGenerator(
		genaiClient,
		env.GetString("GEMINI_SYSTEM_INSTRUCTION", defaultSystemInstruction),
	)

	worker := autoreply.NewWorker(
		jobRepo,
		commentRepo,
		postRepo,
		generator,
		repliesSvc,
		env.GetInt("AUTO_REPLY_BATCH_SIZE", defaultWorkerBatchSize),
	)

	sessionName := env.GetString("SESSION_NAME", "blog-"+random.String(4))
	sessionKey := env.GetString("SESSION_KEY", random.String(32))
	cookieStore := sessions.NewCookieStore([]byte(sessionKey))

	handler := api.NewHandler(
		authSvc,
		contentsSvc,
		discussSvc,
		repliesSvc,
		analyticsSvc,
		cookieStore,
		sessionName,
	)

	app := &App{
		server:      newServer(),
		handler:     handler,
		worker:      worker,
		db:          db,
		genaiClient: genaiClient,
	}

	return app, nil
}

func (app *App) Run(ctx context.Context) error {
	// Handle SIGINT (CTRL+C) gracefully.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	defer func() {
		if app.genaiClient != nil {
			err := app.genaiClient.Close()
			if err != nil {
				slog.ErrorContext(ctx, "failed to close genai client", "error", err)
			}
		}

		if app.db != nil {
			err := app.db.Close()
			if err != nil {
				slog.ErrorContext(ctx, "failed to close database", "error", err)
			}
		}
	}()

	go app.worker.Run(ctx)

	err := app.server.Run(ctx, app.handler)
	if err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}

func newServer() *server.Server {
	server := &server.Server{
		Port: env.GetString("PORT", server.DefaultPort),
		Host: env.GetString("HOST", ""),
		TLS: server.ServerTLS{
			Enabled: env.GetBool("TLS_ENABLED", false),
			Mode:    env.GetString("TLS_MODE", server.DefaultTLSMode),
			AutoCert: &server.ServerTLSAutoCert{
				CacheDir: env.GetString("TLS_AUTOCERT_CACHE_DIR", "./cert-cache"),
				Domains:  env.GetStringSlice("TLS_AUTOCERT_DOMAINS", []string{}),
				Email:    env.GetString("TLS_AUTOCERT_EMAIL", ""),
			},
			CertFile: env.GetString("TLS_CERT_FILE", ""),
			KeyFile:  env.GetString("TLS_KEY_FILE", ""),
		},
	}

	return server
}

func GetLogLevelFromEnv() slog.Level {
	levelStr := env.GetString("LOG_LEVEL", "info")
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", levelStr)

		return slog.LevelInfo
	}
}
