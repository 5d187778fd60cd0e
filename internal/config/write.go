package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joeycumines/treetick/internal/storage"
)

const lockTimeout = 5 * time.Second

// SetKeyInFile sets key to value in section ("" for global) of the file at
// path, creating the file, and the section, as needed. Other lines,
// comments included, are kept as they are. A new key goes after the last
// line of its section.
//
// Concurrent writers are serialised by a lock file next to path.
func SetKeyInFile(path, section, key, value string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	lock, err := storage.AcquireLock(ctx, path+".lock", 10*time.Millisecond)
	if err != nil {
		return fmt.Errorf("locking config file: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}
	var lines []string
	if len(data) > 0 {
		lines = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}

	entry := key
	if value != "" {
		entry += " " + value
	}

	// The global section always exists, even when empty.
	current, found, insert := "", section == "", 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			current = strings.TrimSpace(strings.Trim(trimmed, "[]"))
			if current == section {
				found, insert = true, i+1
			}
			continue
		}
		if current != section || trimmed == "" {
			continue
		}
		insert = i + 1
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if name, _, _ := strings.Cut(trimmed, " "); name == key {
			lines[i] = entry
			return writeLines(path, lines)
		}
	}

	if !found {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "["+section+"]", entry)
	} else {
		lines = slices.Insert(lines, insert, entry)
	}
	return writeLines(path, lines)
}

func writeLines(path string, lines []string) error {
	if err := storage.AtomicWriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
