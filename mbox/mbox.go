package mbox

import (
	"errors"
	"fmt"
	"io"
	"os"

	mboxlib "github.com/emersion/go-mbox"

	"github.com/dhcgn/eml-extract/eml"
	"github.com/dhcgn/eml-extract/model"
)

// Read iterates the messages of an mbox archive in order, parses each one
// and hands it to the callback. The first parse or callback error stops the
// iteration.
func Read(path string, fn func(*model.Message) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	reader := mboxlib.NewReader(file)
	for idx := 0; ; idx++ {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("message %d: %w", idx, err)
		}

		msg, err := eml.Parse(fmt.Sprintf("%s#%d", path, idx), msgReader)
		if err != nil {
			return err
		}

		if err := fn(msg); err != nil {
			return err
		}
	}
}

// Count returns the total number of messages in an mbox archive.
func Count(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	reader := mboxlib.NewReader(file)
	count := 0
	for {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return 0, err
		}

		if _, err := io.Copy(io.Discard, msgReader); err != nil {
			// Keep counting even if this message cannot be read.
			count++
			continue
		}
		count++
	}
}
