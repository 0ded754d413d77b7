package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-extract/discover"
	"github.com/dhcgn/eml-extract/extract"
)

// Config captures all command-line options of an extraction run.
type Config struct {
	Source      string
	Recursive   bool
	Files       []string
	Destination string
	OnConflict  extract.ConflictMode
	DryRun      bool
	AuditPath   string
	LogLevel    string
	LogDir      string
}

// RegisterFlags attaches the full flag set of the root command.
func RegisterFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.StringP("source", "s", ".", "Directory containing the .eml files (mutually exclusive with --files)")
	flags.BoolP("recursive", "r", false, "Search for .eml files recursively under the source directory")
	flags.StringArrayP("files", "f", nil, "Explicit .eml file to process (repeatable, mutually exclusive with --source)")

	return RegisterExtractionFlags(cmd)
}

// RegisterExtractionFlags attaches the flags shared by every command that
// writes attachments.
func RegisterExtractionFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.StringP("destination", "d", ".", "Directory to extract attachments to")
	flags.String("on-conflict", "prompt", "Behavior when a target file exists: prompt, overwrite, skip or fail")
	flags.Bool("dry-run", false, "Classify attachments without writing anything")
	flags.String("audit", "", "Append a JSONL provenance record per saved attachment to this file")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for an additional log file (stdout only if empty)")
	return nil
}

// LoadConfig converts the parsed Cobra flags into a Config with validation.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadExtractionConfig(cmd)
	if err != nil {
		return Config{}, err
	}

	flags := cmd.Flags()
	source, err := flags.GetString("source")
	if err != nil {
		return Config{}, err
	}
	recursive, err := flags.GetBool("recursive")
	if err != nil {
		return Config{}, err
	}
	files, err := flags.GetStringArray("files")
	if err != nil {
		return Config{}, err
	}

	// Exactly one source mode per run, checked before any I/O.
	if flags.Changed("source") && len(files) > 0 {
		return Config{}, fmt.Errorf("--source and --files are mutually exclusive")
	}

	if len(files) > 0 {
		for i, file := range files {
			validated, err := discover.ValidateMessageFile(file)
			if err != nil {
				return Config{}, err
			}
			files[i] = validated
		}
	} else {
		if source, err = discover.ValidateDirectory(source); err != nil {
			return Config{}, err
		}
		source = filepath.Clean(source)
	}

	cfg.Source = source
	cfg.Recursive = recursive
	cfg.Files = files
	return cfg, nil
}

// LoadExtractionConfig reads the shared extraction flags. Source selection
// is left empty; the mbox command supplies its archive as a positional
// argument instead.
func LoadExtractionConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	destination, err := flags.GetString("destination")
	if err != nil {
		return Config{}, err
	}
	onConflict, err := flags.GetString("on-conflict")
	if err != nil {
		return Config{}, err
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return Config{}, err
	}
	auditPath, err := flags.GetString("audit")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}

	mode, err := extract.ParseConflictMode(onConflict)
	if err != nil {
		return Config{}, err
	}

	// The destination may be absent (it is created on the first write), but
	// an existing non-directory is rejected up front.
	if info, err := os.Stat(destination); err == nil && !info.IsDir() {
		return Config{}, fmt.Errorf("%q is not a valid directory", destination)
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("invalid --log-level: %s", logLevel)
	}

	return Config{
		Destination: filepath.Clean(destination),
		OnConflict:  mode,
		DryRun:      dryRun,
		AuditPath:   auditPath,
		LogLevel:    logLevel,
		LogDir:      logDir,
	}, nil
}
