package sumo

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/kilianp07/greenwave/core/model"
)

type xmlPhase struct {
	XMLName  xml.Name `xml:"phase"`
	Duration string   `xml:"duration,attr"`
	State    string   `xml:"state,attr"`
}

type xmlTLLogic struct {
	XMLName   xml.Name   `xml:"tlLogic"`
	ID        string     `xml:"id,attr"`
	Type      string     `xml:"type,attr"`
	ProgramID string     `xml:"programID,attr"`
	Offset    string     `xml:"offset,attr"`
	Phases    []xmlPhase `xml:"phase"`
}

type xmlAdditional struct {
	XMLName xml.Name     `xml:"additional"`
	Logics  []xmlTLLogic `xml:"tlLogic"`
}

// WriteOverlay serializes the plan as a SUMO additional file: one static
// tlLogic block per governed junction, all sharing the plan's phase table.
func WriteOverlay(plan model.TimingPlan, path string) error {
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("overlay for invalid plan: %w", err)
	}
	phases := make([]xmlPhase, len(plan.Phases))
	for i, ph := range plan.Phases {
		phases[i] = xmlPhase{Duration: strconv.Itoa(ph.DurationSec), State: ph.State}
	}
	programID := plan.ProgramID
	if programID == "" {
		programID = "bo_plan"
	}
	doc := xmlAdditional{Logics: make([]xmlTLLogic, len(plan.Junctions))}
	for i, id := range plan.Junctions {
		doc.Logics[i] = xmlTLLogic{
			ID:        id,
			Type:      "static",
			ProgramID: programID,
			Offset:    "0",
			Phases:    phases,
		}
	}
	data, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal overlay: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write overlay: %w", err)
	}
	return nil
}
