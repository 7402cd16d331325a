// Package logging renders run summaries and per-run log files.
// This file contains the reusable table formatting infrastructure for
// aligned multi-column result tables.
package logging

import (
	"fmt"
	"math"
	"strings"
)

// MissingValue is the placeholder for unavailable measurements.
const MissingValue = "-"

// LUFSMeasurementFloor is the lowest reliable loudness measurement; the
// gating in the meter makes anything below it meaningless.
const LUFSMeasurementFloor = -70.0

// Row is a single line in a result table. Values are pre-formatted strings
// so columns can mix precisions and units.
type Row struct {
	Label  string
	Values []string
}

// Table formats aligned columns: labels left-aligned, values right-aligned
// under their headers.
type Table struct {
	Headers []string
	Rows    []Row
}

// AddRow appends a row with pre-formatted values.
func (t *Table) AddRow(label string, values ...string) {
	t.Rows = append(t.Rows, Row{Label: label, Values: values})
}

// String renders the table.
func (t *Table) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	labelWidth := 0
	for _, row := range t.Rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, v := range row.Values {
			if i < len(widths) && len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, h := range t.Headers {
		sb.WriteString(fmt.Sprintf("%*s  ", widths[i], h))
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelWidth, row.Label))
		for i := range t.Headers {
			v := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				v = row.Values[i]
			}
			sb.WriteString(fmt.Sprintf("%*s  ", widths[i], v))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatLUFS formats a loudness value, clamping below the measurement floor.
func FormatLUFS(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 1) {
		return MissingValue
	}
	if value < LUFSMeasurementFloor {
		return "< -70"
	}
	return fmt.Sprintf("%.1f", value)
}

// FormatDB formats a decibel value, showing digital silence as a floor.
func FormatDB(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 1) {
		return MissingValue
	}
	if math.IsInf(value, -1) || value <= -120 {
		return "< -120"
	}
	return fmt.Sprintf("%.1f", value)
}
