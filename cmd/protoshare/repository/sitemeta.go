package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/protoshare/protoshare/cmd/protoshare/models"
)

// MetaFileName is the per-site metadata sidecar inside each site directory
const MetaFileName = "meta.json"

// slugPattern restricts which directory names are treated as site slugs
var slugPattern = regexp.MustCompile(`^[\w-]+$`)

// ValidSlug reports whether s is an acceptable site identifier
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// WriteSiteMeta writes the metadata sidecar into the site directory
func WriteSiteMeta(siteDir string, site models.Site) error {
	payload, err := json.MarshalIndent(site, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode site meta: %w", err)
	}

	metaPath := filepath.Join(siteDir, MetaFileName)
	if err := os.WriteFile(metaPath, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write site meta: %w", err)
	}

	return nil
}

// ReadSiteMeta reads the metadata sidecar from a site directory.
// A missing sidecar returns (nil, nil); an unreadable or corrupt one
// returns an error so the caller can log and fall back to derived values.
func ReadSiteMeta(siteDir string) (*models.Site, error) {
	metaPath := filepath.Join(siteDir, MetaFileName)

	raw, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read site meta: %w", err)
	}

	var site models.Site
	if err := json.Unmarshal(raw, &site); err != nil {
		return nil, fmt.Errorf("failed to parse site meta: %w", err)
	}

	return &site, nil
}

// ListSiteDirs returns the slugs of all live site directories.
// The filesystem is the authoritative source of which sites still exist.
func ListSiteDirs(sitesDir string) ([]string, error) {
	entries, err := os.ReadDir(sitesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites dir: %w", err)
	}

	var slugs []string
	for _, entry := range entries {
		if entry.IsDir() && ValidSlug(entry.Name()) {
			slugs = append(slugs, entry.Name())
		}
	}
	return slugs, nil
}
