package utils

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// ArchiveEntry is one named file destined for the combined download.
type ArchiveEntry struct {
	Name string
	Data []byte
}

// BuildZip packs entries into a flat, uncompressed ZIP. A name that occurs
// more than once keeps the position of its first occurrence and the bytes of
// its last; such names are returned as overwritten, in order of first
// collision.
func BuildZip(entries []ArchiveEntry) ([]byte, []string, error) {
	order := make([]string, 0, len(entries))
	latest := make(map[string][]byte, len(entries))
	var overwritten []string
	seen := make(map[string]bool)

	for _, e := range entries {
		if _, ok := latest[e.Name]; ok {
			if !seen[e.Name] {
				overwritten = append(overwritten, e.Name)
				seen[e.Name] = true
			}
		} else {
			order = append(order, e.Name)
		}
		latest[e.Name] = e.Data
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := time.Now()

	for _, name := range order {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Store,
			Modified: modified,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		if _, err := w.Write(latest[name]); err != nil {
			return nil, nil, fmt.Errorf("failed to write %s to archive: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), overwritten, nil
}
