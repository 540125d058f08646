package main

import (
	"github.com/spf13/cobra"

	"whoowns/internal/version"
)

var (
	// repoRootFlag is the CLI --repo-root flag value
	repoRootFlag string
)

var rootCmd = &cobra.Command{
	Use:   "whoowns",
	Short: "whoowns - ownership resolution for changed artifacts",
	Long: `whoowns answers "who is accountable for these artifacts?" by fusing three
signals under a fixed precedence chain: the ownership manifest (CODEOWNERS),
previously learned rules in the local store, and git commit history as a
last resort. Candidates are scored with integer arithmetic and ranked
deterministically.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("whoowns version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoRootFlag, "repo-root", ".",
		"Repository root to operate on")
}
