package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"whoowns/internal/identity"
	"whoowns/internal/manifest"
	"whoowns/internal/storage"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync manifest rules into the rule store",
	Long: `Parse the ownership manifest and upsert every rule into the local store,
so store-only lookups see declared ownership without re-reading the
manifest. Re-running sync is idempotent: existing (pattern, owner) rows
are refreshed, never duplicated.

Examples:
  whoowns sync
  whoowns sync --repo-root /path/to/repo`,
	Args: cobra.NoArgs,
	Run:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg, "human")

	mf := loadManifestSource(repoRoot, cfg, logger)
	if mf == nil {
		fmt.Fprintln(os.Stderr, "Error: no ownership manifest found")
		os.Exit(1)
	}

	db := mustOpenStore(repoRoot, cfg, logger)
	defer func() { _ = db.Close() }()

	synced := 0
	for _, rule := range mf.Rules() {
		for _, owner := range rule.Owners {
			err := db.UpsertRule(storage.Rule{
				Pattern:         rule.Pattern,
				OwnerName:       owner,
				CanonicalHandle: identity.CanonicalizeOwner(owner),
				Strength:        manifest.DeclaredStrength,
				Scope:           storage.ScopeFile,
				Source:          storage.SourceManifest,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error syncing rule %s %s: %v\n", rule.Pattern, owner, err)
				os.Exit(1)
			}
			synced++
		}
	}

	fmt.Printf("Synced %d rules from %s\n", synced, mf.Path())
}
