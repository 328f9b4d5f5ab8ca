// Command aligncheck runs the alignment engine over a payload file and prints
// the aligned view, the timeline grid or the summary.
//
//	aligncheck [-view alignment|timeline|summary] [-severity all|issues|critical|...] [-json] payload.json
//
// Use "-" to read the payload from stdin.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/alignment"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

func main() {
	view := flag.String("view", "alignment", "View to print: alignment, timeline or summary")
	severity := flag.String("severity", "all", "Severity filter for rows")
	asJSON := flag.Bool("json", false, "Print JSON instead of a table")
	slot := flag.Duration("slot", 5*time.Second, "Synthetic slot length when timestamps are unreliable")
	threshold := flag.Float64("threshold", alignment.DefaultMatchThreshold, "Minimum overlap for a matched row")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Usage: aligncheck [flags] <payload.json|->")
	}

	raw, err := readInput(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read payload: %v", err)
	}
	payload, err := transcript.DecodePayload(raw)
	if err != nil {
		log.Fatalf("Failed to decode payload: %v", err)
	}

	filter, err := alignment.ParseSeverityFilter(*severity)
	if err != nil {
		log.Fatal(err)
	}

	engine, err := alignment.NewEngine(alignment.Options{
		FallbackSlotSeconds: slot.Seconds(),
		MatchThreshold:      *threshold,
	})
	if err != nil {
		log.Fatal(err)
	}

	sides := []struct {
		name string
		segs []transcript.Segment
	}{{"original", payload.Original}, {"generated", payload.Generated}}
	for _, side := range sides {
		if r := transcript.AssessReliability(side.segs); !r.Reliable {
			fmt.Fprintf(os.Stderr, "%s timestamps unreliable at segment %d (%s), using %s slots\n", side.name, r.Index, r.Reason, *slot)
		}
	}

	var out any
	switch *view {
	case "alignment":
		res := engine.Align(payload.Original, payload.Generated, payload.Critiques)
		res.Segments = alignment.FilterAlignment(res.Segments, filter)
		if !*asJSON {
			printAlignment(os.Stdout, res)
			return
		}
		out = res
	case "timeline":
		res := engine.Timeline(payload.Original, payload.Generated, payload.Critiques)
		res.Slices = alignment.FilterTimeline(res.Slices, filter)
		res.UnplacedOriginals = alignment.FilterUnplaced(res.UnplacedOriginals, filter)
		if !*asJSON {
			printTimeline(os.Stdout, res)
			return
		}
		out = res
	case "summary":
		sum := alignment.Summarize(
			engine.Align(payload.Original, payload.Generated, payload.Critiques),
			engine.Timeline(payload.Original, payload.Generated, payload.Critiques),
		)
		if !*asJSON {
			printSummary(os.Stdout, sum)
			return
		}
		out = sum
	default:
		log.Fatalf("Unknown view %q", *view)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func span(r alignment.TimeRange) string {
	return transcript.FormatTimestamp(r.Start) + "-" + transcript.FormatTimestamp(r.End)
}

func text(s *transcript.Segment) string {
	if s == nil {
		return "-"
	}
	t := s.Text
	if r := []rune(t); len(r) > 40 {
		t = string(r[:37]) + "..."
	}
	if s.Speaker == "" {
		return t
	}
	return s.Speaker + ": " + t
}

func sev(c *transcript.Critique) string {
	return string(alignment.SeverityOf(c))
}

func printAlignment(w io.Writer, res alignment.AlignmentResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTIME\tTYPE\tOVERLAP\tSEVERITY\tORIGINAL\tGENERATED")
	for _, row := range res.Segments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
			row.Index, span(row.TimeRange), row.AlignmentType, row.OverlapScore,
			sev(row.Critique), text(row.Original), text(row.AI))
	}
	tw.Flush()
	if res.UsedFallback {
		fmt.Fprintln(w, "(synthetic timing)")
	}
}

func printTimeline(w io.Writer, res alignment.TimelineResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTIME\tORIGINAL\tGENERATED\tSEVERITY")
	for _, s := range res.Slices {
		orig, gen := cell(s.OriginalCoverage, s.IsOriginalSpanStart, s.Original), cell(s.AICoverage, s.IsAISpanStart, s.AI)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.Index, span(s.TimeRange), orig, gen, sev(s.Critique))
	}
	tw.Flush()

	for _, u := range res.UnplacedOriginals {
		fmt.Fprintf(w, "hidden original #%d %s %s: %s\n", u.Index, span(u.TimeRange), sev(u.Critique), text(&u.Segment))
	}

	st := res.Stats
	fmt.Fprintf(w, "\n%d slices: %d covered by both, %d original gaps, %d generated gaps, %d empty\n",
		st.TotalSlices, st.CoveredBothCount, st.OriginalGapCount, st.AIGapCount, st.BothGapCount)
}

func cell(c alignment.Coverage, start bool, s *transcript.Segment) string {
	switch {
	case c == alignment.CoverageGap:
		return "[gap]"
	case start:
		return text(s)
	default:
		return "  ..."
	}
}

func printSummary(w io.Writer, sum alignment.Summary) {
	a, t := sum.Alignment, sum.Timeline
	fmt.Fprintf(w, "Rows: %d (matched %d, partial %d, original-only %d, generated-only %d)\n",
		a.Rows, a.Types.Matched, a.Types.Partial, a.Types.OriginalOnly, a.Types.AIOnly)
	fmt.Fprintf(w, "Mean overlap: %.2f\n", a.MeanOverlap)
	fmt.Fprintf(w, "Severity: %s\n", severityLine(a.Severity))
	fmt.Fprintf(w, "Coverage: original %.0f%%, generated %.0f%%\n", t.OriginalCoverage*100, t.AICoverage*100)
	if sum.UsedFallback {
		fmt.Fprintln(w, "Timing: synthetic")
	}
}

func severityLine(c alignment.SeverityCounts) string {
	return fmt.Sprintf("none %d, minor %d, moderate %d, critical %d", c.Match, c.Minor, c.Moderate, c.Critical)
}
