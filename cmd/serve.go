package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kawa-dev/contrib-board/config"
	"github.com/kawa-dev/contrib-board/internal/cache"
	"github.com/kawa-dev/contrib-board/internal/gateway"
	"github.com/kawa-dev/contrib-board/internal/server"
	"github.com/kawa-dev/contrib-board/internal/usecase"
	"github.com/kawa-dev/contrib-board/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the dashboard over HTTP",
	Long:  `Starts the web server that renders the sortable issue table and exposes the same data as JSON under /api/issues.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.NewConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}

		level := cfg.Logging.Level
		if verbose, _ := cmd.InheritedFlags().GetBool("verbose"); verbose {
			level = "debug"
		}
		log, err := logger.New(level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		if cfg.GitHub.Token == "" {
			log.Warnw("no GitHub token configured, using unauthenticated rate limits")
		}

		githubGateway, err := gateway.NewGitHubGateway(cfg.GitHub.Token, log)
		if err != nil {
			log.Errorw("failed to create GitHub gateway", "error", err)
			os.Exit(1)
		}

		opts := []usecase.EnricherOption{usecase.WithConcurrency(cfg.Fetch.Concurrency)}
		if cfg.Approval.Strict {
			opts = append(opts, usecase.WithApprovalMatcher(usecase.MatchApproveWord))
		}
		enricher := usecase.NewEnricher(githubGateway, log, opts...)

		store := cache.New(cfg.Cache.TTL, cache.WithMaxEntries(cfg.Cache.MaxEntries))
		board := usecase.NewDashboard(enricher, store, log,
			cfg.GitHub.Owner, cfg.GitHub.RepoList(), cfg.GitHub.UsernameList())

		srv := server.New(log, board)
		go func() {
			if err := srv.Listen(cfg.ServerAddr()); err != nil {
				log.Errorw("failed to start server", "error", err)
			}
		}()
		log.Infow("serving dashboard",
			"addr", cfg.ServerAddr(),
			"repos", cfg.GitHub.RepoList(),
			"usernames", cfg.GitHub.UsernameList(),
		)

		<-ctx.Done()
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		done := make(chan struct{})
		go func() {
			_ = srv.Shutdown()
			close(done)
		}()

		select {
		case <-done:
		case <-shutdownCtx.Done():
			log.Warnw("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
