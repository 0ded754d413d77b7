package runner

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/dhcgn/eml-extract/audit"
	"github.com/dhcgn/eml-extract/config"
	"github.com/dhcgn/eml-extract/extract"
)

const attachmentEML = `From: Alice <alice@example.org>
To: Bob <bob@example.org>
Subject: Quarterly report
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="boundary42"

--boundary42
Content-Type: text/plain; charset=utf-8

Please find the report attached.

--boundary42
Content-Type: application/pdf
Content-Disposition: attachment; filename="report.pdf"
Content-Transfer-Encoding: base64

JVBERi0xLjQgZmFrZSByZXBvcnQgcGF5bG9hZA==

--boundary42--
`

const plainEML = `From: Alice <alice@example.org>
To: Bob <bob@example.org>
Subject: Just text
MIME-Version: 1.0
Content-Type: text/plain; charset=utf-8

Nothing attached here.
`

var tokenPDF = regexp.MustCompile(`^[0-9a-f]{20}\.pdf$`)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func testConfig(source, dest string) config.Config {
	return config.Config{
		Source:      source,
		Destination: dest,
		OnConflict:  extract.ConflictSkip,
		LogLevel:    "error",
	}
}

func runOnce(t *testing.T, cfg config.Config) *Runner {
	t.Helper()
	r, err := New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := r.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return r
}

func TestRun_ExtractsFromDirectoryScan(t *testing.T) {
	source := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")
	writeFixture(t, source, "report.eml", attachmentEML)
	writeFixture(t, source, "plain.eml", plainEML)
	writeFixture(t, source, "ignored.txt", "not a message")

	r := runOnce(t, testConfig(source, dest))

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d extracted files, want 1", len(entries))
	}
	if !tokenPDF.MatchString(entries[0].Name()) {
		t.Errorf("extracted name = %q, want random hex token with .pdf", entries[0].Name())
	}

	data, err := os.ReadFile(filepath.Join(dest, entries[0].Name()))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if want := "%PDF-1.4 fake report payload"; string(data) != want {
		t.Errorf("payload = %q, want %q", data, want)
	}

	summary := r.Summary()
	if summary.FilesProcessed != 2 {
		t.Errorf("FilesProcessed = %d, want 2", summary.FilesProcessed)
	}
	if summary.Saved != 1 {
		t.Errorf("Saved = %d, want 1", summary.Saved)
	}
	if summary.NoAttachments != 1 {
		t.Errorf("NoAttachments = %d, want 1", summary.NoAttachments)
	}
}

func TestRun_ExplicitFilesTakePrecedence(t *testing.T) {
	source := t.TempDir()
	other := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")
	writeFixture(t, source, "unwanted.eml", attachmentEML)
	wanted := writeFixture(t, other, "wanted.eml", attachmentEML)

	cfg := testConfig(source, dest)
	cfg.Files = []string{wanted}
	r := runOnce(t, cfg)

	if got := r.Summary().FilesProcessed; got != 1 {
		t.Errorf("FilesProcessed = %d, want 1 (only the explicit file)", got)
	}
}

func TestRun_EmptyScanIsNotAnError(t *testing.T) {
	source := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")

	r := runOnce(t, testConfig(source, dest))

	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("destination %q was created for an empty run", dest)
	}
	if got := r.Summary().FilesProcessed; got != 0 {
		t.Errorf("FilesProcessed = %d, want 0", got)
	}
}

func TestRun_RecursiveScan(t *testing.T) {
	source := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")
	sub := filepath.Join(source, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFixture(t, sub, "deep.eml", attachmentEML)

	cfg := testConfig(source, dest)
	r := runOnce(t, cfg)
	if got := r.Summary().FilesProcessed; got != 0 {
		t.Errorf("non-recursive run processed %d files, want 0", got)
	}

	cfg.Recursive = true
	r = runOnce(t, cfg)
	if got := r.Summary().FilesProcessed; got != 1 {
		t.Errorf("recursive run processed %d files, want 1", got)
	}
}

func TestRun_MalformedFileAbortsBatch(t *testing.T) {
	source := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")
	writeFixture(t, source, "broken.eml", "")

	r, err := New(testConfig(source, dest), discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close()

	if err := r.Run(); err == nil {
		t.Error("Run() on malformed message: expected error")
	}
}

func TestRun_DryRun(t *testing.T) {
	source := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")
	writeFixture(t, source, "report.eml", attachmentEML)

	cfg := testConfig(source, dest)
	cfg.DryRun = true
	r := runOnce(t, cfg)

	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("dry-run created the destination %q", dest)
	}
	if got := r.Summary().DryRunSaved; got != 1 {
		t.Errorf("DryRunSaved = %d, want 1", got)
	}
}

func TestRun_AuditLog(t *testing.T) {
	source := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	writeFixture(t, source, "report.eml", attachmentEML)

	cfg := testConfig(source, dest)
	cfg.AuditPath = auditPath
	runOnce(t, cfg)

	file, err := os.Open(auditPath)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer file.Close()

	var records []audit.Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec audit.Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("parse audit line: %v", err)
		}
		records = append(records, rec)
	}

	if len(records) != 1 {
		t.Fatalf("got %d audit records, want 1", len(records))
	}
	if records[0].Original != "report.pdf" {
		t.Errorf("Original = %q, want %q", records[0].Original, "report.pdf")
	}
	if !tokenPDF.MatchString(records[0].Token) {
		t.Errorf("Token = %q, want random hex token with .pdf", records[0].Token)
	}
}

func TestRunMbox(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	mboxPath := writeFixture(t, t.TempDir(), "sample.mbox",
		"From alice@example.org Thu Jan  1 10:00:00 2026\n"+attachmentEML+"\n"+
			"From bob@example.org Thu Jan  1 11:00:00 2026\n"+plainEML)

	r, err := New(testConfig("", dest), discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close()

	if err := r.RunMbox(mboxPath); err != nil {
		t.Fatalf("RunMbox() error = %v", err)
	}

	summary := r.Summary()
	if summary.FilesProcessed != 2 {
		t.Errorf("FilesProcessed = %d, want 2", summary.FilesProcessed)
	}
	if summary.Saved != 1 {
		t.Errorf("Saved = %d, want 1", summary.Saved)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d extracted files, want 1", len(entries))
	}
}
