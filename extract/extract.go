package extract

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dhcgn/eml-extract/audit"
	"github.com/dhcgn/eml-extract/model"
	"github.com/dhcgn/eml-extract/stats"
)

// ConflictMode decides what happens when a target path already exists.
type ConflictMode string

const (
	ConflictPrompt    ConflictMode = "prompt"
	ConflictOverwrite ConflictMode = "overwrite"
	ConflictSkip      ConflictMode = "skip"
	ConflictFail      ConflictMode = "fail"
)

// ParseConflictMode validates a conflict mode given on the command line.
func ParseConflictMode(s string) (ConflictMode, error) {
	switch ConflictMode(s) {
	case ConflictPrompt, ConflictOverwrite, ConflictSkip, ConflictFail:
		return ConflictMode(s), nil
	default:
		return "", fmt.Errorf("invalid conflict mode %q (want prompt, overwrite, skip or fail)", s)
	}
}

// Prompter asks whether an existing file may be overwritten. The stdin
// implementation blocks the whole run until the user answers.
type Prompter interface {
	ConfirmOverwrite(name string) (bool, error)
}

type Options struct {
	Destination string
	OnConflict  ConflictMode
	DryRun      bool
}

// Saver writes the true attachments of parsed messages into the destination
// directory, one randomly named file per attachment. Sources are never
// modified.
type Saver struct {
	opts      Options
	prompter  Prompter
	auditLog  *audit.Log
	collector *stats.Collector
	logger    *slog.Logger

	targetName func(string) (string, error)
	destReady  bool
}

// NewSaver validates the options and builds a Saver. auditLog may be nil.
func NewSaver(opts Options, prompter Prompter, auditLog *audit.Log, collector *stats.Collector, logger *slog.Logger) (*Saver, error) {
	if opts.Destination == "" {
		return nil, fmt.Errorf("destination is empty")
	}
	if _, err := ParseConflictMode(string(opts.OnConflict)); err != nil {
		return nil, err
	}
	if opts.OnConflict == ConflictPrompt && prompter == nil {
		return nil, fmt.Errorf("conflict mode prompt needs a prompter")
	}
	if collector == nil {
		collector = stats.NewCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Saver{
		opts:       opts,
		prompter:   prompter,
		auditLog:   auditLog,
		collector:  collector,
		logger:     logger,
		targetName: TargetName,
	}, nil
}

// SaveAll extracts every attachment of msg, in enumeration order. The first
// failed write or declined-and-fatal conflict aborts; there is no per-file
// error aggregation.
func (s *Saver) SaveAll(msg *model.Message) error {
	s.collector.Add(stats.EventTypeFileProcessed)

	if len(msg.Attachments) == 0 {
		s.logger.Info("no attachments found", "file", msg.Path)
		s.collector.Add(stats.EventTypeNoAttachments)
		return nil
	}

	for _, att := range msg.Attachments {
		if err := s.save(msg, att); err != nil {
			return err
		}
	}
	return nil
}

func (s *Saver) save(msg *model.Message, att model.Attachment) error {
	name, err := s.targetName(att.Filename)
	if err != nil {
		return err
	}
	target := filepath.Join(s.opts.Destination, name)

	s.logger.Info("attachment found", "file", msg.Path, "name", att.Filename, "contentType", att.ContentType, "size", att.Size)

	if s.opts.DryRun {
		s.collector.Add(stats.EventTypeDryRunSaved)
		s.logger.Debug("dry-run save", "target", target)
		return nil
	}

	_, statErr := os.Stat(target)
	switch {
	case statErr == nil:
		return s.resolveConflict(msg, att, name, target)
	case errors.Is(statErr, os.ErrNotExist):
		if err := s.ensureDestination(); err != nil {
			return err
		}
		return s.write(msg, att, name, target, false)
	default:
		return fmt.Errorf("stat %q: %w", target, statErr)
	}
}

func (s *Saver) resolveConflict(msg *model.Message, att model.Attachment, name, target string) error {
	switch s.opts.OnConflict {
	case ConflictFail:
		return fmt.Errorf("target %q already exists", target)
	case ConflictSkip:
		s.skip(name)
		return nil
	case ConflictOverwrite:
		return s.write(msg, att, name, target, true)
	default: // ConflictPrompt
		overwrite, err := s.prompter.ConfirmOverwrite(name)
		if err != nil {
			return fmt.Errorf("overwrite prompt: %w", err)
		}
		if !overwrite {
			s.skip(name)
			return nil
		}
		return s.write(msg, att, name, target, true)
	}
}

func (s *Saver) skip(name string) {
	s.logger.Info("skipping existing file", "name", name)
	s.collector.Add(stats.EventTypeSkipped)
}

func (s *Saver) write(msg *model.Message, att model.Attachment, name, target string, overwrite bool) error {
	if err := os.WriteFile(target, att.Data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", target, err)
	}

	s.logger.Info("saved attachment", "file", msg.Path, "original", att.Filename, "target", target)
	if overwrite {
		s.collector.Add(stats.EventTypeOverwritten)
	} else {
		s.collector.Add(stats.EventTypeSaved)
	}

	if s.auditLog != nil {
		rec := audit.Record{
			Token:    name,
			Original: att.Filename,
			Source:   msg.Path,
			Subject:  msg.Subject,
			SavedAt:  time.Now().UTC(),
		}
		if err := s.auditLog.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

// The destination is created only once the first write is about to happen.
func (s *Saver) ensureDestination() error {
	if s.destReady {
		return nil
	}
	if err := os.MkdirAll(s.opts.Destination, 0o755); err != nil {
		return fmt.Errorf("create destination %q: %w", s.opts.Destination, err)
	}
	s.destReady = true
	return nil
}

const tokenHexLen = 20

// TargetName replaces the human-readable stem of an attachment filename with
// a fresh random hex token, keeping only the original extension. Untrusted
// names never reach the filesystem; collisions are left to the existence
// check.
func TargetName(original string) (string, error) {
	buf := make([]byte, tokenHexLen/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random token: %w", err)
	}
	return hex.EncodeToString(buf) + filepath.Ext(original), nil
}
