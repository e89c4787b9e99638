package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestEntry represents one image in the output manifest.
type ManifestEntry struct {
	Input     string `json:"input"`
	Output    string `json:"output,omitempty"`
	Preview   string `json:"preview,omitempty"`
	Triangles int    `json:"triangles,omitempty"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// WriteManifest writes the results of a run as indented JSON. Paths are
// stored relative to the manifest's directory when possible.
func WriteManifest(path string, results []Result) error {
	base := filepath.Dir(path)
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Input:     relTo(base, r.Input),
			Output:    relTo(base, r.Output),
			Preview:   relTo(base, r.Preview),
			Triangles: r.Triangles,
			OK:        r.Success,
			Error:     r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return fmt.Errorf("batch: create dir %s: %w", base, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write manifest %s: %w", path, err)
	}
	return nil
}

func relTo(base, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
