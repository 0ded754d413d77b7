package runner

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dhcgn/eml-extract/audit"
	"github.com/dhcgn/eml-extract/config"
	"github.com/dhcgn/eml-extract/discover"
	"github.com/dhcgn/eml-extract/eml"
	"github.com/dhcgn/eml-extract/extract"
	"github.com/dhcgn/eml-extract/mbox"
	"github.com/dhcgn/eml-extract/model"
	"github.com/dhcgn/eml-extract/progress"
	"github.com/dhcgn/eml-extract/stats"
)

// Runner drives one sequential extraction run: resolve the file set, process
// each message in order, report a summary. The first unhandled error aborts
// the remaining queue.
type Runner struct {
	cfg       config.Config
	logger    *slog.Logger
	collector *stats.Collector
	saver     *extract.Saver
	auditLog  *audit.Log
}

func New(cfg config.Config, logger *slog.Logger) (*Runner, error) {
	collector := stats.NewCollector()

	var auditLog *audit.Log
	if cfg.AuditPath != "" && !cfg.DryRun {
		var err error
		auditLog, err = audit.Open(cfg.AuditPath)
		if err != nil {
			return nil, fmt.Errorf("audit log: %w", err)
		}
	}

	opts := extract.Options{
		Destination: cfg.Destination,
		OnConflict:  cfg.OnConflict,
		DryRun:      cfg.DryRun,
	}
	prompter := extract.NewStdinPrompter(os.Stdin, os.Stdout)
	saver, err := extract.NewSaver(opts, prompter, auditLog, collector, logger)
	if err != nil {
		if auditLog != nil {
			_ = auditLog.Close()
		}
		return nil, err
	}

	return &Runner{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		saver:     saver,
		auditLog:  auditLog,
	}, nil
}

// Close flushes the audit log, if any.
func (r *Runner) Close() error {
	if r.auditLog == nil {
		return nil
	}
	return r.auditLog.Close()
}

// Summary returns the counters accumulated so far.
func (r *Runner) Summary() stats.Summary {
	return r.collector.Snapshot()
}

// Run processes .eml files. An explicit file list takes precedence over the
// directory scan; an empty file set is a friendly notice, not an error.
func (r *Runner) Run() error {
	files := r.cfg.Files
	if len(files) == 0 {
		var err error
		files, err = discover.Find(r.cfg.Source, r.cfg.Recursive)
		if err != nil {
			return err
		}
	}

	if len(files) == 0 {
		fmt.Println("No EML files found!")
		return nil
	}

	started := time.Now()
	bar := progress.New(len(files), r.cfg.LogLevel, r.interactive())

	for _, file := range files {
		bar.Step(file)
		r.logger.Info("processing file", "file", file)

		msg, err := eml.Read(file)
		if err != nil {
			bar.Stop()
			return err
		}
		if err := r.saver.SaveAll(msg); err != nil {
			bar.Stop()
			return err
		}
	}
	bar.Stop()

	progress.PrintSummary(r.collector.Snapshot(), time.Since(started), r.cfg.DryRun)
	fmt.Println("Done.")
	return nil
}

// RunMbox processes every message inside one mbox archive with the same
// extraction semantics as Run.
func (r *Runner) RunMbox(path string) error {
	total, err := mbox.Count(path)
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Println("No messages found!")
		return nil
	}

	started := time.Now()
	bar := progress.New(total, r.cfg.LogLevel, r.interactive())

	err = mbox.Read(path, func(msg *model.Message) error {
		bar.Step(msg.Path)
		r.logger.Info("processing message", "message", msg.Path, "subject", msg.Subject)
		return r.saver.SaveAll(msg)
	})
	bar.Stop()
	if err != nil {
		return err
	}

	progress.PrintSummary(r.collector.Snapshot(), time.Since(started), r.cfg.DryRun)
	fmt.Println("Done.")
	return nil
}

func (r *Runner) interactive() bool {
	return r.cfg.OnConflict == extract.ConflictPrompt
}
