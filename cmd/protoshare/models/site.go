package models

import "time"

// FileType classifies the upload that produced a site
type FileType string

const (
	FileTypeHTML    FileType = "html"
	FileTypeZip     FileType = "zip"
	FileTypeFolder  FileType = "folder"
	FileTypeUnknown FileType = "unknown"
)

// Site is the metadata record of one published prototype.
// It is written as a meta.json sidecar inside the site directory and
// upserted into the history store.
type Site struct {
	// Opaque URL-safe identifier, unique and immutable once assigned
	Slug string `json:"slug"`

	// Public URL, derived from the slug (/sites/{slug}/)
	URL string `json:"url"`

	// Original uploaded filename or detected folder root name
	OriginalName string `json:"originalName"`

	// Temporary stored filename of a single-file upload (informational)
	StoredName string `json:"storedName,omitempty"`

	// Classification of the upload that produced the site
	FileType FileType `json:"fileType"`

	// Filename relative to the site root that serves as the entry point.
	// Always set; the site root always contains a working index.html.
	EntryFile string `json:"entryFile"`

	// Set only when a recognized entry candidate (or a pre-existing
	// index.html) was found, never for the synthesized listing fallback
	PrimaryHTML string `json:"primaryHtml,omitempty"`

	// Set once at creation, never mutated afterwards
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`

	// Total byte count of contributing files at upload time
	Size *int64 `json:"size,omitempty"`
}

// SiteURL derives the public URL for a slug
func SiteURL(slug string) string {
	return "/sites/" + slug + "/"
}

// Normalize fills derivable defaults in place. Records without a slug
// cannot be normalized and are reported as invalid.
func (s *Site) Normalize() bool {
	if s.Slug == "" {
		return false
	}
	if s.URL == "" {
		s.URL = SiteURL(s.Slug)
	}
	if s.OriginalName == "" {
		s.OriginalName = s.Slug
	}
	if s.FileType == "" {
		s.FileType = FileTypeUnknown
	}
	if s.EntryFile == "" {
		if s.PrimaryHTML != "" {
			s.EntryFile = s.PrimaryHTML
		} else {
			s.EntryFile = "index.html"
		}
	}
	return true
}

// UploadedFile pairs one received file with its temporary storage location
type UploadedFile struct {
	// Original client-side name; may embed path separators for
	// flattened folder selections
	OriginalName string

	// Stored name under the uploads dir
	StoredName string

	// Absolute path of the temporary file
	TempPath string

	// Byte count as received
	Size int64
}
