// Package report prints solve outcomes: a human readable block followed by
// a single machine readable CSV line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"example.com/your_project/hub-location/hub"
	"example.com/your_project/hub-location/milp"
)

const (
	rule      = "-------------"
	csvHeader = "objective,gap,time,hubs"
)

// Diagnostic writes the non-optimal status line. It writes nothing for an
// optimal status.
func Diagnostic(w io.Writer, status milp.Status) error {
	if status == milp.StatusOptimal {
		return nil
	}
	_, err := fmt.Fprintf(w, "No optimum solution found. Status: %s\n", status)
	return errors.Wrap(err, "report")
}

// Text writes the summary block. The gap is printed as a percentage.
func Text(w io.Writer, sol *hub.Solution) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Result = %.4f\n", sol.Objective)
	fmt.Fprintf(&b, "GAP = %s %%\n", percent(sol.Gap))
	fmt.Fprintf(&b, "Time = %.4f s\n", sol.Runtime.Seconds())
	fmt.Fprintf(&b, "Hubs = %s\n", hubList(sol.Hubs))
	b.WriteString(rule + "\n")
	b.WriteString(csvHeader + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(CSV(sol) + "\n")
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "report")
}

// CSV is the objective,gap,time,hubs line without trailing newline.
func CSV(sol *hub.Solution) string {
	return fmt.Sprintf("%.4f,%s,%.4f,%d", sol.Objective, percent(sol.Gap), sol.Runtime.Seconds(), len(sol.Hubs))
}

// Output is the JSON form of a solution. Gap is omitted when unknown and
// times are in seconds.
type Output struct {
	RunID      string      `json:"runId"`
	Engine     string      `json:"engine"`
	Status     milp.Status `json:"status"`
	Objective  float64     `json:"objective"`
	Gap        *float64    `json:"gap,omitempty"`
	Time       float64     `json:"time"`
	Hubs       []int       `json:"hubs"`
	Allocation []int       `json:"allocation"`
	Cost       hub.Cost    `json:"cost"`
}

// NewOutput converts sol for JSON encoding.
func NewOutput(sol *hub.Solution) Output {
	out := Output{
		RunID:      sol.RunID,
		Engine:     sol.Engine,
		Status:     sol.Status,
		Objective:  sol.Objective,
		Time:       sol.Runtime.Seconds(),
		Hubs:       sol.Hubs,
		Allocation: sol.Allocation,
		Cost:       sol.Cost,
	}
	if !math.IsNaN(sol.Gap) && !math.IsInf(sol.Gap, 0) {
		gap := sol.Gap
		out.Gap = &gap
	}
	return out
}

// JSON writes sol as an indented JSON document.
func JSON(w io.Writer, sol *hub.Solution) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(NewOutput(sol)), "report")
}

func percent(gap float64) string {
	if math.IsNaN(gap) {
		return "nan"
	}
	return fmt.Sprintf("%.4f", 100*gap)
}

func hubList(hubs []int) string {
	parts := make([]string, len(hubs))
	for i, h := range hubs {
		parts[i] = fmt.Sprint(h)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
