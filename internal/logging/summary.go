package logging

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clearcast-audio/clearcast/internal/batch"
)

// Summary renders the end-of-run result table for a batch.
func Summary(results []batch.FileResult) string {
	table := &Table{Headers: []string{"LUFS", "dBTP", "Time", "Status"}}

	for _, res := range results {
		lufs, tp := math.NaN(), math.NaN()
		if res.Report != nil {
			tp = res.Report.TruePeakDB
			if res.Report.LoudnessMeasured {
				lufs = res.Report.IntegratedLUFS
			}
		}

		status := "ok"
		switch {
		case res.Skipped:
			status = "skipped"
		case res.Err != nil:
			status = "failed"
		}

		table.AddRow(filepath.Base(res.Input),
			FormatLUFS(lufs),
			FormatDB(tp),
			formatDuration(res.Duration),
			status)
	}

	var sb strings.Builder
	sb.WriteString(table.String())

	var done, skipped, failed int
	for _, res := range results {
		switch {
		case res.Skipped:
			skipped++
		case res.Err != nil:
			failed++
		default:
			done++
		}
	}
	sb.WriteString(fmt.Sprintf("\n%d processed, %d skipped, %d failed\n", done, skipped, failed))

	return sb.String()
}

// WriteRunLog writes a detailed run log: the summary table plus per-file
// warnings and errors.
func WriteRunLog(path string, results []batch.FileResult) error {
	var sb strings.Builder

	sb.WriteString("clearcast run log " + time.Now().Format(time.RFC3339) + "\n\n")
	sb.WriteString(Summary(results))

	for _, res := range results {
		if res.Err != nil {
			sb.WriteString(fmt.Sprintf("\n%s: error: %v\n", res.Input, res.Err))
		}
		if r := res.Report; r != nil {
			sb.WriteString("\n" + res.Input + "\n")
			inLUFS := math.NaN()
			if r.InputLoudnessMeasured {
				inLUFS = r.InputLUFS
			}
			sb.WriteString(fmt.Sprintf("  input:  %s LUFS, %s dBTP\n",
				FormatLUFS(inLUFS), FormatDB(r.InputTruePeakDB)))
			outLUFS := math.NaN()
			if r.LoudnessMeasured {
				outLUFS = r.IntegratedLUFS
			}
			sb.WriteString(fmt.Sprintf("  output: %s LUFS, %s dBTP\n",
				FormatLUFS(outLUFS), FormatDB(r.TruePeakDB)))
			if r.NoiseFloorMeasured {
				sb.WriteString(fmt.Sprintf("  noise floor: %s dB\n", FormatDB(r.NoiseFloorDB)))
			}
			for _, stage := range r.Applied {
				if stage != "normalization" {
					continue
				}
				limited := "no"
				if r.Limited {
					limited = "yes"
				}
				sb.WriteString(fmt.Sprintf("  gain: %+.1f dB, limited: %s\n", r.GainDB, limited))
			}
			for _, w := range r.Warnings {
				sb.WriteString("  warning: " + w + "\n")
			}
		}
	}

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return MissingValue
	}
	return d.Round(time.Millisecond).String()
}
