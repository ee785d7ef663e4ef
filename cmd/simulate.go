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
	"github.com/kilianp07/greenwave/infra/logger"
	"github.com/kilianp07/greenwave/infra/sumo"
)

var (
	simScenario string
	simPlanFile string
	simCycle    int
	simRatio    float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a single (plan, scenario) evaluation and print the cost",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "scenario name from the configuration")
	simulateCmd.Flags().StringVar(&simPlanFile, "plan-file", "", "signal-program overlay file (optional)")
	simulateCmd.Flags().IntVar(&simCycle, "cycle", 0, "cycle length in seconds to generate a plan from")
	simulateCmd.Flags().Float64Var(&simRatio, "ratio", 0, "north-south green ratio to generate a plan from")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var scenario *model.Scenario
	for i := range cfg.Scenarios {
		if cfg.Scenarios[i].Name == simScenario {
			scenario = &cfg.Scenarios[i]
			break
		}
	}
	if scenario == nil {
		return fmt.Errorf("unknown scenario %q", simScenario)
	}

	req := objective.Request{PlanName: "adhoc", PlanFile: simPlanFile, Scenario: *scenario}
	if simCycle != 0 || simRatio != 0 {
		if simPlanFile != "" {
			return fmt.Errorf("--plan-file and --cycle/--ratio are mutually exclusive")
		}
		plan, err := model.NewGridPlan("adhoc", simCycle, simRatio, model.GridJunctions(cfg.Search.GridSize))
		if err != nil {
			return err
		}
		req.Plan = &plan
	}

	runner, err := sumo.NewRunner(cfg.Sumo, logger.New("sumo"))
	if err != nil {
		return fmt.Errorf("sumo runner: %w", err)
	}
	eval := objective.NewEvaluator(runner, cfg.Search.Penalty, uuid.NewString(), coremetrics.NopSink{}, logger.New("objective"))
	ev, err := eval.Evaluate(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s / %s: cost %.2f over %d trips (penalized=%v)\n",
		ev.Plan, ev.Scenario, ev.Cost, ev.Trips, ev.Penalized)
	return nil
}
