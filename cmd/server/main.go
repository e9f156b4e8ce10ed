package main

import (
	"context"
	"log/slog"
	"os"

	blog "github.com/HCodeKeeper/ai-moderated-blog"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		slog.WarnContext(ctx, "failed to load .env file", "error", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: blog.GetLogLevelFromEnv(),
	}))
	slog.SetDefault(logger)

	app, err := blog.NewApp(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create app", "error", err)
		os.Exit(1)
	}

	err = app.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to run app", "error", err)
		os.Exit(1)
	}
}
