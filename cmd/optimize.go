package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kilianp07/greenwave/config"
	coremetrics "github.com/kilianp07/greenwave/core/metrics"
	"github.com/kilianp07/greenwave/core/model"
	"github.com/kilianp07/greenwave/core/objective"
	"github.com/kilianp07/greenwave/core/search"
	"github.com/kilianp07/greenwave/infra/logger"
	inframetrics "github.com/kilianp07/greenwave/infra/metrics"
	"github.com/kilianp07/greenwave/infra/sumo"
	"github.com/kilianp07/greenwave/pkg/export"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search for a timing plan robust across all scenarios",
	RunE:  runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New("optimize")

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	startPromServer(cfg, logg)

	runner, err := sumo.NewRunner(cfg.Sumo, logger.New("sumo"))
	if err != nil {
		return fmt.Errorf("sumo runner: %w", err)
	}

	runID := uuid.NewString()
	eval := objective.NewEvaluator(runner, cfg.Search.Penalty, runID, sink, logger.New("objective"))
	agg, err := objective.NewAggregator(eval, cfg.Scenarios, objective.Aggregation(cfg.Search.Aggregation))
	if err != nil {
		return fmt.Errorf("aggregator: %w", err)
	}
	junctions := model.GridJunctions(cfg.Search.GridSize)
	driver, err := search.NewDriver(agg, cfg.Search.Space, cfg.Search.Budget, junctions, runID, sink, logg)
	if err != nil {
		return fmt.Errorf("search driver: %w", err)
	}

	res, err := driver.Run(ctx)
	if err != nil {
		return err
	}

	plan, err := res.Plan(junctions)
	if err != nil {
		return fmt.Errorf("materialize winning plan: %w", err)
	}
	if err := sumo.WriteOverlay(plan, cfg.Search.PlanOut); err != nil {
		return err
	}
	f, err := os.Create(cfg.Search.ResultOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", cfg.Search.ResultOut, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logg.Errorf("close %s: %v", cfg.Search.ResultOut, cerr)
		}
	}()
	if err := export.WriteJSON(f, res); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Search.ResultOut, err)
	}

	logg.Infof("resilient plan saved: %s (descriptor %s)", cfg.Search.PlanOut, cfg.Search.ResultOut)
	return nil
}

// startPromServer exposes the scrape endpoint when a prometheus sink is
// configured; searches run long enough for an operator to want to watch.
func startPromServer(cfg *config.Config, logg logger.Logger) {
	for _, s := range cfg.Metrics.Sinks {
		if s.Type != "prometheus" {
			continue
		}
		port := cfg.Metrics.PrometheusPort
		if port == 0 {
			port = 2112
		}
		go func() {
			if err := inframetrics.StartPromServer(port); err != nil {
				logg.Errorf("prom server: %v", err)
			}
		}()
		return
	}
}
