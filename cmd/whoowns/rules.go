package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	rulesPattern string
	rulesLimit   int
	rulesFormat  string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List learned ownership rules",
	Long: `List the ownership rules currently held in the local store, newest
first.

Examples:
  whoowns rules
  whoowns rules --pattern src/
  whoowns rules --limit 20 --format=json`,
	Args: cobra.NoArgs,
	Run:  runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesPattern, "pattern", "", "Only rules whose pattern contains this substring")
	rulesCmd.Flags().IntVar(&rulesLimit, "limit", 0, "Maximum rules to list (0 = all)")
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg, rulesFormat)

	db := mustOpenStore(repoRoot, cfg, logger)
	defer func() { _ = db.Close() }()

	rules, err := db.ListRules(rulesPattern, rulesLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing rules: %v\n", err)
		os.Exit(1)
	}

	if rulesFormat == "json" {
		out, err := json.MarshalIndent(rules, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	if len(rules) == 0 {
		fmt.Println("No rules stored")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATTERN\tOWNER\tHANDLE\tSTRENGTH\tSCOPE\tSOURCE\tVERIFIED")
	for _, r := range rules {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.Pattern, r.OwnerName, r.CanonicalHandle, r.Strength,
			r.Scope, r.Source, r.LastVerified.Format(time.DateOnly))
	}
	_ = w.Flush()
}
