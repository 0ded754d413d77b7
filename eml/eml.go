package eml

import (
	"errors"
	"fmt"
	"io"
	"os"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/dhcgn/eml-extract/model"
)

// Read opens and fully parses one .eml file. The file is closed before Read
// returns; no state is retained between files.
func Read(path string) (*model.Message, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer file.Close()

	return Parse(path, file)
}

// Parse reads one RFC 5322 message from r and collects its true attachments:
// parts with attachment disposition and a non-empty filename. Inline parts
// and attachment parts without a filename are skipped silently. The transfer
// encoding of each retained part is decoded.
func Parse(name string, r io.Reader) (*model.Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", name, err)
	}

	msg := &model.Message{Path: name}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", name, err)
		}

		header, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		filename, err := header.Filename()
		if err != nil || filename == "" {
			continue
		}

		data, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, fmt.Errorf("decode attachment %q of %q: %w", filename, name, err)
		}
		contentType, _, _ := header.ContentType()

		msg.Attachments = append(msg.Attachments, model.Attachment{
			Filename:    filename,
			ContentType: contentType,
			Size:        int64(len(data)),
			Data:        data,
		})
	}

	return msg, nil
}
