package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kawa-dev/contrib-board/config"
	"github.com/kawa-dev/contrib-board/internal/domain"
	"github.com/kawa-dev/contrib-board/internal/gateway"
	"github.com/kawa-dev/contrib-board/internal/usecase"
	"github.com/kawa-dev/contrib-board/pkg/logger"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Fetches enriched issues once and outputs as JSON",
	Long:  `Runs the enrichment pipeline for every configured repository, bypassing the cache, and prints the combined issue list with summary counts as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := config.NewConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}

		// One-shot runs stay quiet unless asked otherwise.
		level := "error"
		if verbose, _ := cmd.InheritedFlags().GetBool("verbose"); verbose {
			level = "debug"
		}
		log, err := logger.New(level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}

		sortField, _ := cmd.Flags().GetString("sort")
		descending, _ := cmd.Flags().GetBool("desc")

		githubGateway, err := gateway.NewGitHubGateway(cfg.GitHub.Token, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		opts := []usecase.EnricherOption{usecase.WithConcurrency(cfg.Fetch.Concurrency)}
		if cfg.Approval.Strict {
			opts = append(opts, usecase.WithApprovalMatcher(usecase.MatchApproveWord))
		}
		enricher := usecase.NewEnricher(githubGateway, log, opts...)

		all := make([]domain.Issue, 0)
		for _, repo := range cfg.GitHub.RepoList() {
			all = append(all, enricher.FetchEnrichedIssues(ctx, cfg.GitHub.Owner, repo, cfg.GitHub.UsernameList())...)
		}
		sorted := domain.SortIssues(all, sortField, descending)

		out := usecase.Overview{
			Issues:     sorted,
			Summary:    domain.Summarize(sorted, time.Now()),
			SortField:  sortField,
			Descending: descending,
		}
		jsonData, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(issuesCmd)
	issuesCmd.Flags().String("sort", "number", "Sort field (repo, number, title, creator, created, approved, merged)")
	issuesCmd.Flags().Bool("desc", false, "Sort descending")
}
