package sumo

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/kilianp07/greenwave/core/sim"
)

type tripinfo struct {
	ID          string `xml:"id,attr"`
	Duration    string `xml:"duration,attr"`
	WaitingTime string `xml:"waitingTime,attr"`
	TimeLoss    string `xml:"timeLoss,attr"`
}

type tripinfoFile struct {
	XMLName xml.Name   `xml:"tripinfos"`
	Trips   []tripinfo `xml:"tripinfo"`
}

// ParseTripinfo extracts the chosen metric from a SUMO tripinfo output file.
// A missing or unparseable file, or a trip lacking the metric attribute,
// yields sim.ErrSummary; a well-formed file with zero trips yields
// sim.ErrNoTrips.
func ParseTripinfo(path string, metric sim.Metric) (sim.TripStats, error) {
	stats := sim.TripStats{Metric: metric}
	data, err := os.ReadFile(path)
	if err != nil {
		return stats, fmt.Errorf("%w: read %s: %v", sim.ErrSummary, path, err)
	}
	var doc tripinfoFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return stats, fmt.Errorf("%w: parse %s: %v", sim.ErrSummary, path, err)
	}
	if len(doc.Trips) == 0 {
		return stats, sim.ErrNoTrips
	}
	stats.Values = make([]float64, 0, len(doc.Trips))
	for _, trip := range doc.Trips {
		raw := trip.attr(metric)
		if raw == "" {
			return sim.TripStats{Metric: metric}, fmt.Errorf("%w: trip %s lacks %s", sim.ErrSummary, trip.ID, metric)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return sim.TripStats{Metric: metric}, fmt.Errorf("%w: trip %s %s=%q: %v", sim.ErrSummary, trip.ID, metric, raw, err)
		}
		stats.Values = append(stats.Values, v)
	}
	return stats, nil
}

func (t tripinfo) attr(metric sim.Metric) string {
	switch metric {
	case sim.MetricWaitingTime:
		return t.WaitingTime
	case sim.MetricDuration:
		return t.Duration
	case sim.MetricTimeLoss:
		return t.TimeLoss
	}
	return ""
}
