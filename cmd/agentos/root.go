package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentos",
	Short: "Goal pipeline for LLM worker teams",
	Long: `agentos turns free-form goals into executed task batches.

Goals arrive through a drop directory or the submit command. Each
processing cycle parses the goal, assesses whether it is clear enough
to act on, decomposes it into typed tasks, and dispatches each task to
a capable team worker while honoring declared dependencies.

Core capabilities:
- Parses raw goal text into a structured goal with success criteria
- Surfaces blocking clarification questions instead of guessing
- Decomposes goals into dependency-ordered task batches
- Routes tasks to workers by capability within a team roster
- Falls back across models and retries transient LLM failures
- Records per-invocation spend in a cost ledger`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	Execute()
}
