package service

import (
	"fmt"
	"os"
	"path/filepath"
)

// Archive cruft that some exporters and operating systems leave behind.
// Neither carries site content.
const (
	macosxDir   = "__MACOSX"
	dsStoreFile = ".DS_Store"
)

// NormalizeSiteDir cleans a freshly extracted or reconstructed directory
// tree so it matches what a correctly-flat export would look like: archiver
// artifacts are removed and redundant single-root wrapper directories are
// collapsed, however deeply nested. It never deletes content files and never
// hoists when the top level is ambiguous (multiple entries, or a file
// alongside directories).
func NormalizeSiteDir(dir string) error {
	stripArtifacts(dir)

	for {
		entries, err := listVisible(dir)
		if err != nil {
			return fmt.Errorf("failed to inspect site dir: %w", err)
		}

		if len(entries) != 1 || !entries[0].IsDir() {
			return nil
		}

		wrapper := filepath.Join(dir, entries[0].Name())
		children, err := listVisible(wrapper)
		if err != nil {
			return fmt.Errorf("failed to inspect wrapper dir: %w", err)
		}

		for _, child := range children {
			from := filepath.Join(wrapper, child.Name())
			to := filepath.Join(dir, child.Name())
			if err := os.Rename(from, to); err != nil {
				return fmt.Errorf("failed to hoist %s: %w", child.Name(), err)
			}
		}

		if err := os.RemoveAll(wrapper); err != nil {
			return fmt.Errorf("failed to remove wrapper dir: %w", err)
		}

		// the hoisted level may carry its own artifacts
		stripArtifacts(dir)
	}
}

// stripArtifacts removes known non-content artifacts at the top level
func stripArtifacts(dir string) {
	os.RemoveAll(filepath.Join(dir, macosxDir))
	os.Remove(filepath.Join(dir, dsStoreFile))
}

// listVisible lists a directory, filtering out artifact entries
func listVisible(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	visible := entries[:0]
	for _, entry := range entries {
		if entry.Name() == macosxDir || entry.Name() == dsStoreFile {
			continue
		}
		visible = append(visible, entry)
	}
	return visible, nil
}
