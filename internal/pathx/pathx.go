// Package pathx implements the legacy-to-archive path transformation rules:
// character sanitation, archival-copy prefix stripping and thumbnail
// detection. All functions are pure.
package pathx

import (
	"regexp"
	"strings"
)

// Characters forbidden in target file names; the folder part forbids an
// extended set on top of these.
const (
	fileForbidden   = `:*?"<>|;#`
	folderForbidden = fileForbidden + `'(),[]&+`
)

// OriginalPrefix marks an archival copy kept next to the accessible rendition
// in original-versioned datasets.
const OriginalPrefix = "original/"

var thumbnailRe = regexp.MustCompile(`(?i)(^|/)thumbnails/[^/]*_small\.(png|jpg|tiff)$`)

// Transform maps a legacy path to its sanitized archive target path.
// Forbidden characters are replaced by underscores, with the extended set
// applied to the folder part only. The transform is idempotent: applying it
// to an already sanitized path is a no-op.
func Transform(legacyPath string) string {
	folder, file := splitLast(legacyPath)
	return sanitize(folder, folderForbidden) + sanitize(file, fileForbidden)
}

// Transformed reports whether sanitizing legacyPath changes it.
func Transformed(legacyPath string) bool {
	return Transform(legacyPath) != legacyPath
}

// StripOriginal removes the archival-copy prefix when present. The boolean
// reports whether anything was stripped; callers record it as
// RemovedOriginalDirectory.
func StripOriginal(path string) (string, bool) {
	if strings.HasPrefix(path, OriginalPrefix) {
		return strings.TrimPrefix(path, OriginalPrefix), true
	}
	return path, false
}

// IsThumbnail reports whether the pre-transform path denotes a generated
// thumbnail (a *_small image inside a thumbnails folder).
func IsThumbnail(path string) bool {
	return thumbnailRe.MatchString(path)
}

// splitLast splits path into the folder part up to and including the last
// slash, and the file part after it.
func splitLast(path string) (folder, file string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i+1], path[i+1:]
}

func sanitize(s, forbidden string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbidden, r) {
			return '_'
		}
		return r
	}, s)
}
