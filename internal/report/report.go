// Package report summarizes EM training epochs for the walign train command.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/go-walign/internal/ibm1"
)

// Formats accepted by Write.
const (
	FormatNone  = "none"
	FormatTable = "table"
	FormatJSON  = "json"
)

// ---------------------------------------------------------------------------
// Collection and stats
// ---------------------------------------------------------------------------

// Collector records epoch stats; its Observe method is an ibm1.Observer.
type Collector struct {
	Epochs []ibm1.EpochStats
}

// Observe appends s.
func (c *Collector) Observe(s ibm1.EpochStats) {
	c.Epochs = append(c.Epochs, s)
}

// Stats holds aggregate epoch timing.
type Stats struct {
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	Total time.Duration
}

// ComputeStats calculates min, max, mean and total over durations.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:   mn,
		Max:   mx,
		Mean:  sum / time.Duration(len(durations)),
		Total: sum,
	}
}

// ValidateFormat rejects unknown report formats.
func ValidateFormat(format string) error {
	switch format {
	case FormatNone, FormatTable, FormatJSON:
		return nil
	default:
		return fmt.Errorf("--report must be '%s', '%s' or '%s'", FormatNone, FormatTable, FormatJSON)
	}
}

// Write renders epochs in the given format. FormatNone writes nothing.
func Write(w io.Writer, format string, epochs []ibm1.EpochStats) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}

	durations := make([]time.Duration, len(epochs))
	for i, e := range epochs {
		durations[i] = e.Duration
	}
	stats := ComputeStats(durations)

	switch format {
	case FormatTable:
		return writeTable(w, epochs, stats)
	case FormatJSON:
		return writeJSON(w, epochs, stats)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

func writeTable(w io.Writer, epochs []ibm1.EpochStats, stats Stats) error {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-6s  %20s  %10s\n", "Epoch", "NLL", "MS")
	fmt.Fprintln(sb, strings.Repeat("-", 40))

	for _, e := range epochs {
		fmt.Fprintf(sb, "%-6d  %20.6f  %10.1f\n", e.Epoch, e.NLL, ms(e.Duration))
	}

	fmt.Fprintln(sb, strings.Repeat("-", 40))
	fmt.Fprintf(sb, "%-6s  %20s  %10.1f  (min)\n", "", "", ms(stats.Min))
	fmt.Fprintf(sb, "%-6s  %20s  %10.1f  (mean)\n", "", "", ms(stats.Mean))
	fmt.Fprintf(sb, "%-6s  %20s  %10.1f  (max)\n", "", "", ms(stats.Max))

	_, err := io.WriteString(w, sb.String())
	return err
}

type jsonReport struct {
	Epochs []jsonEpoch `json:"epochs"`
	Stats  jsonStats   `json:"stats"`
}

type jsonEpoch struct {
	Epoch      int     `json:"epoch"`
	NLL        float64 `json:"nll"`
	Pairs      int     `json:"pairs"`
	DurationMS float64 `json:"duration_ms"`
}

type jsonStats struct {
	MinMS   float64 `json:"min_ms"`
	MeanMS  float64 `json:"mean_ms"`
	MaxMS   float64 `json:"max_ms"`
	TotalMS float64 `json:"total_ms"`
}

func writeJSON(w io.Writer, epochs []ibm1.EpochStats, stats Stats) error {
	jr := jsonReport{
		Epochs: make([]jsonEpoch, len(epochs)),
		Stats: jsonStats{
			MinMS:   ms(stats.Min),
			MeanMS:  ms(stats.Mean),
			MaxMS:   ms(stats.Max),
			TotalMS: ms(stats.Total),
		},
	}
	for i, e := range epochs {
		jr.Epochs[i] = jsonEpoch{
			Epoch:      e.Epoch,
			NLL:        e.NLL,
			Pairs:      e.Pairs,
			DurationMS: ms(e.Duration),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jr)
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
