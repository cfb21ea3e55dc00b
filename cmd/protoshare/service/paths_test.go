package service

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRelativePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain relative path", "a/b.html", "a/b.html"},
		{"backslash separators", `a\img\c.png`, "a/img/c.png"},
		{"mixed separators", `a\b/c.txt`, "a/b/c.txt"},
		{"parent traversal removed", "../../etc/passwd", "etc/passwd"},
		{"embedded traversal removed", "a/../../b.html", "a/b.html"},
		{"drive prefix stripped", `C:\Users\x\site\index.html`, "Users/x/site/index.html"},
		{"lowercase drive prefix", "d:/export/start.html", "export/start.html"},
		{"dot segments removed", "./a/./b", "a/b"},
		{"empty segments removed", "a//b///c", "a/b/c"},
		{"whitespace segments removed", "a/   /b", "a/b"},
		{"leading slash removed", "/a/b", "a/b"},
		{"empty input", "", ""},
		{"only traversal", "../..", ""},
		{"only dots and slashes", "././.", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeRelativePath(tt.input))
		})
	}
}

// Whatever the input, the sanitized result joined to a destination root must
// never resolve outside that root.
func TestSanitizeRelativePath_NeverEscapesRoot(t *testing.T) {
	root := filepath.Clean("/srv/sites/abc123")
	hostile := []string{
		"../../../../etc/passwd",
		`..\..\windows\system32`,
		"a/../../../../b",
		`C:\..\..\x`,
		"....//....//x",
		"/absolute/path",
	}

	for _, input := range hostile {
		clean := SanitizeRelativePath(input)
		if clean == "" {
			continue // caller skips the entry
		}
		joined := filepath.Clean(filepath.Join(root, filepath.FromSlash(clean)))
		assert.True(t, strings.HasPrefix(joined, root+string(filepath.Separator)),
			"input %q escaped root: %s", input, joined)
	}
}
