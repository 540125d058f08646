package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"whoowns/internal/identity"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <handle>...",
	Short: "Verify that handles exist on the hosting platform",
	Long: `Check each handle against the configured platform API. Verification is a
separate, cached workflow: resolution itself never blocks on these
remote checks.

Examples:
  whoowns verify alice bob
  whoowns verify $(whoowns resolve src/ --format=json | jq -r '.candidates[].handle')`,
	Args: cobra.MinimumNArgs(1),
	Run:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)

	verifier := identity.NewVerifier(identity.VerifierConfig{
		BaseURL:       cfg.Verification.BaseURL,
		CacheTTL:      time.Duration(cfg.Verification.CacheTtlSeconds) * time.Second,
		MaxConcurrent: cfg.Verification.MaxConcurrent,
	})

	results, err := verifier.ExistsBatch(context.Background(), args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error verifying handles: %v\n", err)
		os.Exit(1)
	}

	handles := make([]string, 0, len(results))
	for handle := range results {
		handles = append(handles, handle)
	}
	sort.Strings(handles)

	missing := 0
	for _, handle := range handles {
		if results[handle] {
			fmt.Printf("%s: ok\n", handle)
		} else {
			fmt.Printf("%s: not found\n", handle)
			missing++
		}
	}

	if missing > 0 {
		os.Exit(1)
	}
}
