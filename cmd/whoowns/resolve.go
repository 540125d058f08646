package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"whoowns/internal/resolve"
)

var (
	resolveFormat    string
	resolveNoHistory bool
	resolveNoLearn   bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <artifact>...",
	Short: "Resolve owners for files and module tokens",
	Long: `Resolve accountable owners for one or more artifact tokens. A token is a
repository-relative file path or a bare module name.

Each file path is tried against the ownership manifest first, then the
learned-rule store, then git commit history. Per-owner scores accumulate
across the whole request before ranking.

With no arguments, tokens are read from stdin, one per line, so changed
files can be piped straight from git.

Examples:
  whoowns resolve src/ui/Main.x
  whoowns resolve src/api/handler.go docs/guide.md
  whoowns resolve billing --format=json
  whoowns resolve src/legacy/dial.c --no-history
  git diff --name-only main | whoowns resolve`,
	Args: cobra.ArbitraryArgs,
	Run:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "human", "Output format (json, human)")
	resolveCmd.Flags().BoolVar(&resolveNoHistory, "no-history", false, "Skip the git-history fallback source")
	resolveCmd.Flags().BoolVar(&resolveNoLearn, "no-learn", false, "Do not write discovered rules back to the store")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) {
	start := time.Now()
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg, resolveFormat)

	artifacts := args
	if len(artifacts) == 0 {
		artifacts = readArtifactsFromStdin()
	}
	if len(artifacts) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no artifact tokens given (arguments or stdin)")
		os.Exit(1)
	}

	db := mustOpenStore(repoRoot, cfg, logger)
	defer func() { _ = db.Close() }()

	engine := buildEngine(repoRoot, cfg, logger, db, !resolveNoHistory, !resolveNoLearn)
	result := engine.Resolve(context.Background(), resolve.NewRequest(artifacts))

	if resolveFormat == "json" {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	} else {
		printResultHuman(result)
	}

	logger.Debug("Resolution command completed", map[string]interface{}{
		"artifacts": len(artifacts),
		"method":    string(result.Method),
		"duration":  time.Since(start).Milliseconds(),
	})
}

func readArtifactsFromStdin() []string {
	var artifacts []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			artifacts = append(artifacts, line)
		}
	}
	return artifacts
}

func printResultHuman(result *resolve.Result) {
	if len(result.Candidates) == 0 {
		fmt.Println("No owner found")
	} else {
		fmt.Printf("Owners (%s):\n", result.Method)
		for i, c := range result.Candidates {
			fmt.Printf("  %d. %s (score %d, %d contributing rules)\n",
				i+1, c.Handle, c.AggregateScore, c.ContributingRuleCount)
		}
	}
	for _, skipped := range result.Skipped {
		fmt.Printf("Skipped invalid artifact: %s\n", skipped)
	}
}
