package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/protoshare/protoshare/common/logger"
)

// HistoryFileName is the name of the top-level history file inside the data root
const HistoryFileName = "history.json"

// Paths holds the resolved on-disk layout under the data root.
// The data root is read once at startup and never changes for the
// process lifetime.
type Paths struct {
	DataDir    string
	UploadsDir string
	SitesDir   string

	log *logger.Logger
}

// New resolves the layout under dataDir and creates any missing directories
func New(dataDir string, log *logger.Logger) (*Paths, error) {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir %q: %w", dataDir, err)
	}

	p := &Paths{
		DataDir:    abs,
		UploadsDir: filepath.Join(abs, "uploads"),
		SitesDir:   filepath.Join(abs, "sites"),
		log:        log,
	}

	for _, dir := range []string{p.DataDir, p.UploadsDir, p.SitesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return p, nil
}

// HistoryFile returns the path of the persisted history store
func (p *Paths) HistoryFile() string {
	return filepath.Join(p.DataDir, HistoryFileName)
}

// SiteDir returns the directory owned by the given slug
func (p *Paths) SiteDir(slug string) string {
	return filepath.Join(p.SitesDir, slug)
}

// MigrateLegacyLayout relocates pre-data-root directories (./data, ./uploads,
// ./sites relative to rootDir) into the configured data root. It is run once
// at startup, before any request is served. Every step is best-effort:
// failures are logged and the remaining items are still attempted, and
// existing destinations are never overwritten, so re-running is harmless.
func (p *Paths) MigrateLegacyLayout(rootDir string) {
	legacyData := filepath.Join(rootDir, "data")
	legacyUploads := filepath.Join(rootDir, "uploads")
	legacySites := filepath.Join(rootDir, "sites")

	if resolved, err := filepath.Abs(legacyData); err == nil && resolved == p.DataDir {
		legacyData = "" // data root already points at the legacy location
	}

	if legacyData != "" {
		p.migrateDir(legacyData, p.DataDir)
	}
	p.migrateDir(legacyUploads, p.UploadsDir)
	p.migrateDir(legacySites, p.SitesDir)
}

// migrateDir moves every item from fromDir into toDir, skipping items that
// already exist at the destination, then removes fromDir if it ended up empty
func (p *Paths) migrateDir(fromDir, toDir string) {
	entries, err := os.ReadDir(fromDir)
	if err != nil {
		return // nothing to migrate
	}
	if len(entries) == 0 {
		os.Remove(fromDir)
		return
	}

	movedAny := false
	for _, entry := range entries {
		fromPath := filepath.Join(fromDir, entry.Name())
		toPath := filepath.Join(toDir, entry.Name())
		if _, err := os.Stat(toPath); err == nil {
			continue
		}
		if err := moveOrCopy(fromPath, toPath); err != nil {
			p.log.Warn("failed to migrate legacy item", "from", fromPath, "to", toPath, "error", err)
			continue
		}
		movedAny = true
	}

	if leftovers, err := os.ReadDir(fromDir); err == nil && len(leftovers) == 0 {
		os.Remove(fromDir)
	}

	if movedAny {
		p.log.Info("migrated legacy directory", "from", fromDir, "to", toDir)
	}
}

// moveOrCopy renames a file or tree, falling back to copy-and-remove when
// rename fails (typically a cross-device move)
func moveOrCopy(fromPath, toPath string) error {
	if err := os.Rename(fromPath, toPath); err == nil {
		return nil
	}
	if err := copyTree(fromPath, toPath); err != nil {
		return err
	}
	return os.RemoveAll(fromPath)
}

func copyTree(fromPath, toPath string) error {
	info, err := os.Stat(fromPath)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return copyFile(fromPath, toPath, info.Mode())
	}

	if err := os.MkdirAll(toPath, info.Mode().Perm()); err != nil {
		return err
	}
	entries, err := os.ReadDir(fromPath)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := copyTree(filepath.Join(fromPath, entry.Name()), filepath.Join(toPath, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(fromPath, toPath string, mode os.FileMode) error {
	data, err := os.ReadFile(fromPath)
	if err != nil {
		return err
	}
	return os.WriteFile(toPath, data, mode.Perm())
}
