package service

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// entryCandidates are common prototype-export entry filenames, in priority
// order. Axure-style exports use start.html variants rather than index.html.
var entryCandidates = []string{"start.html", "start_with_pages.html", "start_c_1.html"}

var htmlFilePattern = regexp.MustCompile(`(?i)\.html?$`)

// IsHTMLFile reports whether the filename looks like an HTML document
func IsHTMLFile(name string) bool {
	return htmlFilePattern.MatchString(name)
}

// IsZipFile reports whether the filename looks like a zip archive
func IsZipFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// EntryResolution describes what index.html is (or became) for a site
type EntryResolution struct {
	// EntryFile is the canonical entry point relative to the site root;
	// always set
	EntryFile string

	// PrimaryHTML is set only when a recognized candidate or a
	// pre-existing index.html was found, never for the listing fallback
	PrimaryHTML string
}

// ResolveEntryPoint inspects a normalized site directory and makes sure its
// root ends up with a working index.html. In order: a recognized candidate
// gets a redirecting index.html generated for it; an existing index.html is
// accepted as-is; otherwise a listing page over the root's HTML files is
// synthesized. The resolver does not care how the tree was produced.
func ResolveEntryPoint(siteDir string) (EntryResolution, error) {
	entries, err := listVisible(siteDir)
	if err != nil {
		return EntryResolution{}, fmt.Errorf("failed to inspect site dir: %w", err)
	}

	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names[entry.Name()] = true
		}
	}

	for _, candidate := range entryCandidates {
		if names[candidate] {
			if err := writeRedirectIndex(siteDir, "./"+candidate); err != nil {
				return EntryResolution{}, err
			}
			return EntryResolution{EntryFile: candidate, PrimaryHTML: candidate}, nil
		}
	}

	if names["index.html"] {
		return EntryResolution{EntryFile: "index.html", PrimaryHTML: "index.html"}, nil
	}

	if err := writeListingIndex(siteDir); err != nil {
		return EntryResolution{}, err
	}
	return EntryResolution{EntryFile: "index.html"}, nil
}

// EnsureIndex synthesizes the listing fallback when, after construction,
// the site root still has no index.html
func EnsureIndex(siteDir string) error {
	if _, err := os.Stat(filepath.Join(siteDir, "index.html")); err == nil {
		return nil
	}
	return writeListingIndex(siteDir)
}

// writeRedirectIndex generates a minimal index.html that immediately
// redirects to target, via both a meta-refresh tag and a script-based
// location replace for compatibility
func writeRedirectIndex(siteDir, target string) error {
	html := fmt.Sprintf(`<!doctype html><html><head><meta charset="utf-8"/><meta http-equiv="refresh" content="0; url=%s"><script>location.replace('%s');</script><title>Redirecting...</title></head><body>Redirecting to <a href="%s">%s</a> ...</body></html>`,
		target, target, target, target)

	if err := os.WriteFile(filepath.Join(siteDir, "index.html"), []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write redirect index: %w", err)
	}
	return nil
}

// writeListingIndex synthesizes a simple page enumerating every HTML file
// at the site root as a clickable link
func writeListingIndex(siteDir string) error {
	entries, err := listVisible(siteDir)
	if err != nil {
		return fmt.Errorf("failed to inspect site dir: %w", err)
	}

	var links strings.Builder
	for _, entry := range entries {
		if entry.IsDir() || !IsHTMLFile(entry.Name()) {
			continue
		}
		fmt.Fprintf(&links, `<li><a href="./%s">%s</a></li>`, entry.Name(), entry.Name())
	}
	if links.Len() == 0 {
		links.WriteString("<li>(no HTML files found)</li>")
	}

	html := fmt.Sprintf(`<!doctype html><html><head><meta charset="utf-8"/><title>Site</title><style>body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial,sans-serif;padding:24px}</style></head><body><h1>Available entries</h1><ul>%s</ul></body></html>`,
		links.String())

	if err := os.WriteFile(filepath.Join(siteDir, "index.html"), []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write listing index: %w", err)
	}
	return nil
}
