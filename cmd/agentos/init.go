package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Scaffold a project for agentos",
	Long: `Initialize a directory for use with agentos.

Creates:
  - .agentos.yaml      project configuration template
  - teams.yaml         example roster of teams and workers
  - goals/             drop directory for goal files

The directory argument is optional and defaults to the current directory.

Examples:
  agentos init               # initialize current directory
  agentos init ./myproject   # initialize a specific directory
  agentos init --force       # overwrite existing templates`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing templates")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing agentos in %s...\n\n", absPath)

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	dropDir := filepath.Join(absPath, "goals")
	if err := os.MkdirAll(dropDir, 0755); err != nil {
		return fmt.Errorf("creating goals directory: %w", err)
	}
	printStatus("✓", "Created goals/ drop directory", color.FgGreen)

	if err := writeTemplate(filepath.Join(absPath, ".agentos.yaml"), projectConfigTemplate); err != nil {
		return err
	}
	printStatus("✓", "Created .agentos.yaml template", color.FgGreen)

	if err := writeTemplate(filepath.Join(absPath, "teams.yaml"), rosterTemplate); err != nil {
		return err
	}
	printStatus("✓", "Created teams.yaml example roster", color.FgGreen)

	fmt.Printf("\n%s agentos initialization complete!\n\n", color.GreenString("✓"))
	fmt.Println("Next steps:")
	fmt.Println("  1. Edit teams.yaml with your teams and workers")
	fmt.Println("  2. Submit a goal:")
	fmt.Println("     agentos submit \"your goal here\" --team your-team")
	fmt.Println("     # or drop a YAML file into goals/")
	fmt.Println("  3. Start processing:")
	fmt.Println("     agentos run")
	return nil
}

// writeTemplate writes content unless the file exists and --force is off.
func writeTemplate(path, content string) error {
	if _, err := os.Stat(path); err == nil && !initForce {
		printStatus("✓", filepath.Base(path)+" already exists (use --force to overwrite)", color.FgYellow)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

const projectConfigTemplate = `# agentos project configuration
# Overrides defaults from ~/.config/agentos/config.yaml

# stages:
#   decompose:
#     model: claude-sonnet-4-5-20250929
#     fallback: claude-haiku-4-5-20251001
#     timeout: 2m
#     max_retries: 1
#   execute:
#     model: claude-sonnet-4-5-20250929
#     fallback: claude-haiku-4-5-20251001
#     timeout: 5m
#     max_retries: 2

# execute:
#   default_model: claude-sonnet-4-5-20250929
#   task_type_models:
#     research: claude-haiku-4-5-20251001

# store:
#   drop_dir: goals
#   poll_interval: 30s

# roster:
#   path: teams.yaml
`

const rosterTemplate = `# agentos roster: teams and the workers that serve them.
# Member order matters: the router breaks capability ties by roster position.

teams:
  - id: default
    name: Default Team
    members: [worker-1]

workers:
  - id: worker-1
    name: Generalist
    capabilities: [research, writing, coding]
    teams: [default]
    active: true
`
