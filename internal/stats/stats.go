// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/typeline/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes WPM, CPM, and accuracy for a session.
// Accuracy is a fraction in [0, 1].
func SessionMetrics(correct, incorrect int, durationMs int64) (wpm, cpm, accuracy float64) {
	if correct < 0 {
		correct = 0
	}
	if incorrect < 0 {
		incorrect = 0
	}
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return 0, 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	wpm = (float64(correct) / 5.0) / minutes
	cpm = float64(correct) / minutes
	return wpm, cpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample averages or stretches values to exactly width points.
func Resample(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	if len(values) >= width {
		for i := 0; i < width; i++ {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	for i := range out {
		out[i] = values[i*len(values)/width]
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// Summary aggregates history items.
type Summary struct {
	Sessions    int
	AvgWPM      float64
	BestWPM     float64
	AvgCPM      float64
	AvgAccuracy float64
}

// Summarize computes averages over history items. Accuracy is a percentage.
func Summarize(items []model.HistoryItem) Summary {
	if len(items) == 0 {
		return Summary{}
	}
	var s Summary
	var totalWPM, totalCPM, totalAcc float64
	for _, item := range items {
		totalWPM += item.WPM
		totalCPM += item.CPM
		totalAcc += item.Accuracy
		if item.WPM > s.BestWPM {
			s.BestWPM = item.WPM
		}
	}
	count := float64(len(items))
	s.Sessions = len(items)
	s.AvgWPM = totalWPM / count
	s.AvgCPM = totalCPM / count
	s.AvgAccuracy = totalAcc / count
	return s
}

// RenderSummary prints a summary for history items.
func RenderSummary(w io.Writer, items []model.HistoryItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(items)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Avg WPM: %.2f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %.2f", s.BestWPM),
		fmt.Sprintf("Avg CPM: %.2f", s.AvgCPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy sparklines smoothed over window sessions.
func RenderCurves(w io.Writer, items []model.HistoryItem, window, width int) error {
	if len(items) == 0 {
		return nil
	}
	wpms := make([]float64, len(items))
	accs := make([]float64, len(items))
	for i, item := range items {
		wpms[i] = item.WPM
		accs[i] = item.Accuracy
	}
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)
	if width > 0 && len(wpms) > width {
		wpms = Resample(wpms, width)
		accs = Resample(accs, width)
	}
	if _, err := fmt.Fprintln(w, "Learning Curves"); err != nil {
		return err
	}
	for _, series := range []struct {
		name   string
		values []float64
	}{
		{name: "WPM", values: wpms},
		{name: "Accuracy", values: accs},
	} {
		lo, hi := minMax(series.values)
		if _, err := fmt.Fprintf(w, "%-8s %s  min=%.1f max=%.1f\n", series.name, Sparkline(series.values), lo, hi); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderHistoryTable prints the most recent history items, newest first.
func RenderHistoryTable(w io.Writer, items []model.HistoryItem, limit int) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	rows := HistoryRows(items, limit)
	headers := []string{"Date", "WPM", "Accuracy", "CPM", "Category", "Headline"}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// HistoryRows formats history items newest first, up to limit rows when limit > 0.
func HistoryRows(items []model.HistoryItem, limit int) [][]string {
	rows := make([][]string, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		if limit > 0 && len(rows) >= limit {
			break
		}
		item := items[i]
		rows = append(rows, []string{
			item.CompletedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.1f", item.WPM),
			fmt.Sprintf("%.1f%%", item.Accuracy),
			fmt.Sprintf("%.0f", item.CPM),
			item.Article.Category,
			item.Article.Title,
		})
	}
	return rows
}

// CharRow is a formatted per-character aggregate.
type CharRow struct {
	Char      string
	Accuracy  float64
	LatencyMs float64
	Correct   int
	Incorrect int
}

// CharRows converts aggregates to rows sorted by lowest accuracy.
func CharRows(aggs []model.CharAggregate) []CharRow {
	rows := make([]CharRow, 0, len(aggs))
	for _, agg := range aggs {
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, CharRow{
			Char:      agg.Char,
			Accuracy:  accuracy(agg),
			LatencyMs: lat,
			Correct:   agg.Correct,
			Incorrect: agg.Incorrect,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Accuracy == rows[j].Accuracy {
			return rows[i].Char < rows[j].Char
		}
		return rows[i].Accuracy < rows[j].Accuracy
	})
	return rows
}

// RenderCharTable prints per-character aggregates.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Character"); err != nil {
		return err
	}
	headers := []string{"Char", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}
	rows := CharRows(aggs)
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Char,
			fmt.Sprintf("%.2f%%", r.Accuracy*100),
			fmt.Sprintf("%.1f", r.LatencyMs),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
