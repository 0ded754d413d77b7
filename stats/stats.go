package stats

import (
	"fmt"
	"sort"
)

type EventType string

const (
	EventTypeFileProcessed EventType = "file_processed"
	EventTypeNoAttachments EventType = "no_attachments"
	EventTypeSaved         EventType = "saved"
	EventTypeOverwritten   EventType = "overwritten"
	EventTypeSkipped       EventType = "skipped"
	EventTypeDryRunSaved   EventType = "dry_run_saved"
)

// Summary aggregates the outcome of one extraction run.
type Summary struct {
	FilesProcessed int
	NoAttachments  int
	Saved          int
	Overwritten    int
	Skipped        int
	DryRunSaved    int
}

func (s Summary) LogAttrs() []any {
	return []any{
		"filesProcessed", s.FilesProcessed,
		"noAttachments", s.NoAttachments,
		"saved", s.Saved,
		"overwritten", s.Overwritten,
		"skipped", s.Skipped,
		"dryRunSaved", s.DryRunSaved,
	}
}

// Collector accumulates events of a single sequential run.
type Collector struct {
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(t EventType) {
	switch t {
	case EventTypeFileProcessed:
		c.summary.FilesProcessed++
	case EventTypeNoAttachments:
		c.summary.NoAttachments++
	case EventTypeSaved:
		c.summary.Saved++
	case EventTypeOverwritten:
		c.summary.Overwritten++
	case EventTypeSkipped:
		c.summary.Skipped++
	case EventTypeDryRunSaved:
		c.summary.DryRunSaved++
	}
}

func (c *Collector) Snapshot() Summary {
	return c.summary
}

// PrettyPrintTop prints the top N most frequent items in a map.
func PrettyPrintTop(m map[string]int, limit int) {
	type pair struct {
		Key   string
		Value int
	}

	var pairs []pair
	for k, v := range m {
		pairs = append(pairs, pair{k, v})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Value > pairs[j].Value
	})

	for i := 0; i < limit && i < len(pairs); i++ {
		fmt.Printf("%d. %s (%d)\n", i+1, pairs[i].Key, pairs[i].Value)
	}
}
