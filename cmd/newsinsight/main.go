package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/deusflow/newsinsight/internal/app"
	"github.com/deusflow/newsinsight/internal/config"
	"github.com/deusflow/newsinsight/internal/logger"
)

const usage = `usage: newsinsight <command> [flags]

commands:
  run    fetch, analyze and write one report (default)
  serve  start the HTTP API
`

// queryList collects repeated -q flags; each value may also be comma separated.
type queryList []string

func (q *queryList) String() string { return strings.Join(*q, ",") }

func (q *queryList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*q = append(*q, part)
		}
	}
	return nil
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cmd := "run"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	log := logger.Init(logger.Options{Debug: cfg.Debug, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "run":
		err = runBatch(ctx, cfg, log, args)
	case "serve":
		err = serve(ctx, cfg, log)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Error("newsinsight failed", "command", cmd, "error", err)
		stop()
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var queries queryList
	fs.Var(&queries, "q", "query to fetch (repeatable, comma separated)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Run(ctx, queries)
	if err != nil {
		return err
	}
	for _, fe := range res.FetchErrors {
		log.Warn("query skipped", "error", fe)
	}

	fmt.Println(res.Location)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}
