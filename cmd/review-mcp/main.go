package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/m4xw311/review-mcp/config"
	"github.com/m4xw311/review-mcp/diff"
	"github.com/m4xw311/review-mcp/errors"
	"github.com/m4xw311/review-mcp/gitexec"
	"github.com/m4xw311/review-mcp/llm"
	"github.com/m4xw311/review-mcp/logging"
	"github.com/m4xw311/review-mcp/repo"
	"github.com/m4xw311/review-mcp/review"
	"github.com/m4xw311/review-mcp/tools"
	"github.com/m4xw311/review-mcp/worktree"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

var version = "dev"

func main() {
	configFlag := flag.String("config", "", "Path to a YAML config file")
	versionFlag := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version)
		return
	}

	// A missing .env file is normal.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %+v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := newServer(ctx, cfg, &gitexec.ExecRunner{}, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		os.Exit(1)
	}

	log.Info().
		Str("version", version).
		Str("llm", cfg.LLMClient).
		Str("model", cfg.Model).
		Strs("allowed_roots", cfg.AllowedRoots).
		Msg("serving on stdio")
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("server stopped with an error")
		os.Exit(1)
	}
}

// newServer wires the review pipeline from cfg and registers its tools.
func newServer(ctx context.Context, cfg *config.Config, git gitexec.Runner, log zerolog.Logger) (*mcp.Server, error) {
	client, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "error initializing %s client", cfg.LLMClient)
	}

	svc := review.NewService(
		repo.NewResolver(repo.NewGuard(cfg.AllowedRoots), git, log),
		diff.NewExtractor(git, cfg.MaxDiffChars, log),
		worktree.NewReader(cfg.MaxContextBytes, cfg.HiddenPaths, log),
		llm.NewReviewer(client, cfg.ValidateResponse, log),
		git,
		review.Options{DefaultModel: cfg.Model, MaxFiles: cfg.MaxFiles},
		log,
	)

	server := mcp.NewServer(&mcp.Implementation{Name: "review-mcp", Version: version}, nil)
	if err := tools.Register(server, svc, log); err != nil {
		return nil, err
	}
	return server, nil
}
