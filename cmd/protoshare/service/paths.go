package service

import (
	"regexp"
	"strings"
)

var drivePrefix = regexp.MustCompile(`^[A-Za-z]:`)

// SanitizeRelativePath converts a possibly hostile or platform-specific
// relative path into a safe forward-slash-joined relative path. Drive
// prefixes are stripped and ".", "..", empty and whitespace-only segments
// are removed, so the result can never escape a destination root it is
// joined with. An input that normalizes to nothing yields "", which callers
// must treat as "skip this entry".
func SanitizeRelativePath(relPath string) string {
	if relPath == "" {
		return ""
	}

	withoutDrive := drivePrefix.ReplaceAllString(relPath, "")
	segments := strings.Split(strings.ReplaceAll(withoutDrive, `\`, "/"), "/")

	kept := segments[:0]
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		kept = append(kept, segment)
	}

	return strings.Join(kept, "/")
}
