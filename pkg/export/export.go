// Package export serializes comparison tables and search results for
// downstream reporting.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/greenwave/core/model"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteCSV writes one row per evaluation with a fixed header.
func WriteCSV(w io.Writer, rows []model.Evaluation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"plan", "scenario", "cost", "trips", "penalized"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Plan,
			r.Scenario,
			strconv.FormatFloat(r.Cost, 'f', -1, 64),
			strconv.Itoa(r.Trips),
			strconv.FormatBool(r.Penalized),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePivotCSV writes the comparison matrix pivoted for plotting: one row
// per scenario, one column per plan, in first-appearance order.
func WritePivotCSV(w io.Writer, rows []model.Evaluation) error {
	var plans, scenarios []string
	planSeen := make(map[string]struct{})
	scenarioSeen := make(map[string]struct{})
	cells := make(map[string]float64, len(rows))
	for _, r := range rows {
		if _, ok := planSeen[r.Plan]; !ok {
			planSeen[r.Plan] = struct{}{}
			plans = append(plans, r.Plan)
		}
		if _, ok := scenarioSeen[r.Scenario]; !ok {
			scenarioSeen[r.Scenario] = struct{}{}
			scenarios = append(scenarios, r.Scenario)
		}
		cells[r.Scenario+"\x00"+r.Plan] = r.Cost
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"scenario"}, plans...)); err != nil {
		return err
	}
	for _, sc := range scenarios {
		rec := make([]string, 0, len(plans)+1)
		rec = append(rec, sc)
		for _, p := range plans {
			cost, ok := cells[sc+"\x00"+p]
			if !ok {
				return fmt.Errorf("missing cell %s/%s", p, sc)
			}
			rec = append(rec, strconv.FormatFloat(cost, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
