package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/paulcedrick/agentos/internal/config"
	"github.com/paulcedrick/agentos/internal/costs"
	"github.com/paulcedrick/agentos/internal/invoke"
	"github.com/paulcedrick/agentos/internal/lifecycle"
	"github.com/paulcedrick/agentos/internal/llm"
	"github.com/paulcedrick/agentos/internal/pipeline"
	"github.com/paulcedrick/agentos/internal/roster"
	"github.com/paulcedrick/agentos/internal/route"
	"github.com/paulcedrick/agentos/internal/scheduler"
	"github.com/paulcedrick/agentos/internal/stage"
	"github.com/paulcedrick/agentos/internal/store"
)

var (
	runOnce     bool
	runTeam     string
	runInterval time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process goals until interrupted",
	Long: `Run the goal pipeline.

Watches the drop directory for new goal files, polls the store for
pending goals, and drives each goal through parse, clarify, decompose,
and execution. Runs until interrupted unless --once is given.

Examples:
  agentos run                      # poll forever at the configured interval
  agentos run --once               # process pending goals and exit
  agentos run --team platform      # only process goals for one team
  agentos run --interval 10s       # override the poll interval`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runOnce, "once", false, "Process one cycle and exit")
	runCmd.Flags().StringVar(&runTeam, "team", "", "Only process goals for this team")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "Poll interval (overrides config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, source, cleanup, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	interval := cfg.Store.PollInterval
	if runInterval > 0 {
		interval = runInterval
	}

	if runOnce {
		return p.RunCycle(ctx, runTeam)
	}

	log.Printf("[run] polling every %s (store=%s)", interval, source.Path())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// One immediate cycle before settling into the interval.
	if err := p.RunCycle(ctx, runTeam); err != nil {
		log.Printf("[run] cycle failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("[run] shutting down")
			return nil
		case <-ticker.C:
			if err := p.RunCycle(ctx, runTeam); err != nil {
				log.Printf("[run] cycle failed: %v", err)
			}
		}
	}
}

// buildPipeline wires the full stack from configuration. The returned
// cleanup closes the store, ledger, and watcher.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, *store.SQLiteSource, func(), error) {
	ros, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		return nil, nil, nil, err
	}

	source, err := store.Open(cfg.StorePath(store.DefaultStorePath()))
	if err != nil {
		return nil, nil, nil, err
	}

	ledger, err := costs.OpenLedger(source.Path())
	if err != nil {
		source.Close()
		return nil, nil, nil, err
	}

	watcher, err := store.NewWatcher(cfg.Store.DropDir, source)
	if err != nil {
		ledger.Close()
		source.Close()
		return nil, nil, nil, err
	}
	if n, err := watcher.Scan(ctx); err != nil {
		log.Printf("[run] initial drop-dir scan failed: %v", err)
	} else if n > 0 {
		log.Printf("[run] ingested %d dropped goal file(s)", n)
	}
	if err := watcher.Start(ctx); err != nil {
		log.Printf("[run] drop-dir watch unavailable, relying on startup scan: %v", err)
	}

	// Bedrock authenticates through AWS credentials; the direct API
	// needs a key from the environment or the config file.
	var apiKey string
	if !cfg.Anthropic.UseAWSBedrock {
		apiKey, err = config.GetAPIKey(cfg)
		if err != nil {
			watcher.Close()
			ledger.Close()
			source.Close()
			return nil, nil, nil, err
		}
	}

	client, err := llm.NewClient(llm.ClientConfig{
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		watcher.Close()
		ledger.Close()
		source.Close()
		return nil, nil, nil, err
	}

	inv, err := invoke.NewInvoker(invoke.InvokerConfig{
		Generator: llm.NewGenerator(llm.GeneratorConfig{Client: client}),
		Stages:    cfg.StageConfigs(),
		Execute:   cfg.ExecuteInvokeConfig(),
		Costs:     ledger,
	})
	if err != nil {
		watcher.Close()
		ledger.Close()
		source.Close()
		return nil, nil, nil, err
	}

	router := route.NewRouter(ros.Teams, ros.Workers)
	clarifier := stage.NewClarifier(inv)
	sched := scheduler.New(router, clarifier, stage.NewExecutor(inv), lifecycle.NewMachine(), source)
	p := pipeline.New(stage.NewParser(inv), clarifier, stage.NewDecomposer(inv), sched, source)

	cleanup := func() {
		watcher.Close()
		ledger.Close()
		source.Close()
	}
	return p, source, cleanup, nil
}
