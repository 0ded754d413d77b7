package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Ext is the message file extension this tool operates on.
const Ext = ".eml"

// ValidateDirectory returns path unchanged if it exists and is a directory.
func ValidateDirectory(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%q is not a valid directory", path)
	}
	return path, nil
}

// ValidateMessageFile returns path unchanged if it exists, is a regular file
// and carries the .eml extension.
func ValidateMessageFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || filepath.Ext(path) != Ext {
		return "", fmt.Errorf("%q is not a valid EML file", path)
	}
	return path, nil
}

// Find returns the .eml files under root. Non-recursive mode lists direct
// children only; recursive mode walks the whole subtree. Ordering is whatever
// the filesystem yields. An empty result is not an error.
func Find(root string, recursive bool) ([]string, error) {
	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("read dir %q: %w", root, err)
		}
		var files []string
		for _, entry := range entries {
			if entry.Type().IsRegular() && filepath.Ext(entry.Name()) == Ext {
				files = append(files, filepath.Join(root, entry.Name()))
			}
		}
		return files, nil
	}

	var files []string
	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && filepath.Ext(path) == Ext {
			files = append(files, path)
		}
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}
	return files, nil
}
