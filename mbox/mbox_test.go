package mbox

import (
	"testing"

	"github.com/dhcgn/eml-extract/model"
)

const sampleMbox = "test_data/sample.mbox"

func TestCount(t *testing.T) {
	count, err := Count(sampleMbox)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestRead(t *testing.T) {
	var messages []*model.Message
	err := Read(sampleMbox, func(msg *model.Message) error {
		messages = append(messages, msg)
		return nil
	})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}

	first := messages[0]
	if first.Subject != "Spreadsheet inside" {
		t.Errorf("Subject = %q, want %q", first.Subject, "Spreadsheet inside")
	}
	if len(first.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(first.Attachments))
	}
	if first.Attachments[0].Filename != "cells.xls" {
		t.Errorf("Filename = %q, want %q", first.Attachments[0].Filename, "cells.xls")
	}
	if want := "spreadsheet cells"; string(first.Attachments[0].Data) != want {
		t.Errorf("Data = %q, want %q", first.Attachments[0].Data, want)
	}

	if len(messages[1].Attachments) != 0 {
		t.Errorf("second message has %d attachments, want 0", len(messages[1].Attachments))
	}
}

func TestRead_CallbackErrorStopsIteration(t *testing.T) {
	calls := 0
	err := Read(sampleMbox, func(msg *model.Message) error {
		calls++
		return errStop
	})
	if err != errStop {
		t.Errorf("Read() error = %v, want errStop", err)
	}
	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
}

func TestRead_MissingFile(t *testing.T) {
	if err := Read("test_data/missing.mbox", func(*model.Message) error { return nil }); err == nil {
		t.Error("Read() on missing file: expected error")
	}
}

var errStop = errTest("stop")

type errTest string

func (e errTest) Error() string { return string(e) }
