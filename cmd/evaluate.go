package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kilianp07/greenwave/config"
	"github.com/kilianp07/greenwave/core/compare"
	coremetrics "github.com/kilianp07/greenwave/core/metrics"
	"github.com/kilianp07/greenwave/core/model"
	"github.com/kilianp07/greenwave/core/objective"
	"github.com/kilianp07/greenwave/infra/logger"
	"github.com/kilianp07/greenwave/infra/sumo"
	"github.com/kilianp07/greenwave/pkg/export"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate every configured plan against every scenario",
	RunE:  runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New("evaluate")

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	runner, err := sumo.NewRunner(cfg.Sumo, logger.New("sumo"))
	if err != nil {
		return fmt.Errorf("sumo runner: %w", err)
	}
	eval := objective.NewEvaluator(runner, cfg.Search.Penalty, uuid.NewString(), sink, logger.New("objective"))

	rows, err := compare.Run(ctx, eval, cfg.Compare.Plans, cfg.Scenarios, logg)
	if err != nil {
		return err
	}

	if err := writeTable(cfg.Compare.CSVOut, rows, export.WriteCSV); err != nil {
		return err
	}
	if err := writeTable(cfg.Compare.PivotOut, rows, export.WritePivotCSV); err != nil {
		return err
	}
	if cfg.Compare.JSONOut != "" {
		asJSON := func(w io.Writer, r []model.Evaluation) error { return export.WriteJSON(w, r) }
		if err := writeTable(cfg.Compare.JSONOut, rows, asJSON); err != nil {
			return err
		}
	}

	logg.Infof("comparison finished: %d rows in %s", len(rows), cfg.Compare.CSVOut)
	return nil
}

func writeTable(path string, rows []model.Evaluation, write func(io.Writer, []model.Evaluation) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := write(f, rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
