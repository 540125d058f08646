package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"whoowns/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the rule store to a compressed dump",
	Long: `Write every stored rule to a zstd-compressed JSON dump, suitable for
backup or for seeding another repository's store via import.

Examples:
  whoowns export rules.dump`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import rules from a compressed dump",
	Long: `Upsert every rule from a dump produced by export. Existing
(pattern, owner) rows are refreshed; importing the same dump twice
leaves the store unchanged.

Examples:
  whoowns import rules.dump`,
	Args: cobra.ExactArgs(1),
	Run:  runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg, "human")

	db := mustOpenStore(repoRoot, cfg, logger)
	defer func() { _ = db.Close() }()

	rules, err := db.ListRules("", 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading rules: %v\n", err)
		os.Exit(1)
	}

	if err := export.Write(args[0], rules); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing dump: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d rules to %s\n", len(rules), args[0])
}

func runImport(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg, "human")

	dump, err := export.Read(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading dump: %v\n", err)
		os.Exit(1)
	}

	db := mustOpenStore(repoRoot, cfg, logger)
	defer func() { _ = db.Close() }()

	for _, rule := range dump.Rules {
		if err := db.UpsertRule(rule); err != nil {
			fmt.Fprintf(os.Stderr, "Error importing rule %s %s: %v\n",
				rule.Pattern, rule.OwnerName, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Imported %d rules from %s\n", len(dump.Rules), args[0])
}
