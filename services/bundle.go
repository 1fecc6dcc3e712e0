package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
)

// BundleFile is one artifact destined for a delivery bundle.
type BundleFile struct {
	Name string
	Data []byte
}

// BuildBundle packs the given artifacts into a zip archive. Files are
// written in name order so the same inputs always produce the same
// archive layout. An empty file set is an error: a quotation delivery
// always carries at least one document.
func BuildBundle(files []BundleFile) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("bundle requires at least one file")
	}

	ordered := make([]BundleFile, len(files))
	copy(ordered, files)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range ordered {
		if f.Name == "" {
			w.Close()
			return nil, fmt.Errorf("bundle file with empty name")
		}
		entry, err := w.Create(f.Name)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("create bundle entry %s: %w", f.Name, err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			w.Close()
			return nil, fmt.Errorf("write bundle entry %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize bundle: %w", err)
	}
	return buf.Bytes(), nil
}
