package progress

import (
	"time"

	"github.com/pterm/pterm"

	"github.com/dhcgn/eml-extract/stats"
)

// Bar manages a progress bar over the message-file queue.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	enabled bool
}

// New creates a progress bar. It stays disabled below info level, for empty
// queues, and when the run may need to stop for an interactive overwrite
// prompt.
func New(total int, logLevel string, interactive bool) *Bar {
	enabled := logLevel == "info" && total > 0 && !interactive

	bar := &Bar{total: total, enabled: enabled}
	if enabled {
		pb, _ := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Extracting attachments").
			Start()
		bar.pb = pb
	}
	return bar
}

// Step advances the bar by one file and shows its name (truncated).
func (b *Bar) Step(path string) {
	if !b.enabled || b.pb == nil {
		return
	}

	display := path
	if len(display) > 40 {
		display = "..." + display[len(display)-37:]
	}
	b.pb.UpdateTitle("Processing: " + display)
	b.pb.Increment()
}

// Stop finalizes the progress bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}
	b.pb.Stop()
}

// PrintSummary prints the final run summary.
func PrintSummary(summary stats.Summary, duration time.Duration, dryRun bool) {
	pterm.Println()
	pterm.DefaultSection.Println("Summary")
	pterm.Info.Printf("Duration: %v\n", duration)
	pterm.Info.Printf("Files processed: %d\n", summary.FilesProcessed)
	pterm.Info.Printf("Without attachments: %d\n", summary.NoAttachments)
	if dryRun {
		pterm.Info.Printf("Attachments found (dry-run, nothing written): %d\n", summary.DryRunSaved)
		return
	}
	pterm.Info.Printf("Attachments saved: %d\n", summary.Saved)
	pterm.Info.Printf("Overwritten: %d\n", summary.Overwritten)
	pterm.Info.Printf("Skipped (existing): %d\n", summary.Skipped)
}
